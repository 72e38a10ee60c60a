package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal/meeting"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateMeetings(ctx context.Context, meetings []*meeting.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(meetings, 200).Error
}

func (r *Repository) Count(ctx context.Context, filter meeting.ListFilter) (int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&meeting.Meeting{}), filter).Count(&total).Error
	return total, err
}

func (r *Repository) List(ctx context.Context, filter meeting.ListFilter, limit, offset int) ([]*meeting.Meeting, error) {
	var meetings []*meeting.Meeting
	err := r.applyFilter(r.db.WithContext(ctx).Model(&meeting.Meeting{}), filter).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error
	return meetings, err
}

// ListAll fetches every matching row; the KPI report scores a whole week at
// once, which is bounded by the upload row limit.
func (r *Repository) ListAll(ctx context.Context, filter meeting.ListFilter) ([]*meeting.Meeting, error) {
	var meetings []*meeting.Meeting
	err := r.applyFilter(r.db.WithContext(ctx).Model(&meeting.Meeting{}), filter).
		Order("id ASC").
		Find(&meetings).Error
	return meetings, err
}

func (r *Repository) DistinctMonths(ctx context.Context) ([]string, error) {
	var months []string
	err := r.db.WithContext(ctx).Model(&meeting.Meeting{}).
		Distinct("month").
		Order("month ASC").
		Pluck("month", &months).Error
	return months, err
}

func (r *Repository) DistinctWeeks(ctx context.Context, month string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&meeting.Meeting{})
	if month != "" {
		q = q.Where("month = ?", month)
	}
	var weeks []string
	err := q.Distinct("week").Order("week ASC").Pluck("week", &weeks).Error
	return weeks, err
}

func (r *Repository) applyFilter(q *gorm.DB, filter meeting.ListFilter) *gorm.DB {
	if filter.RepName != "" {
		q = q.Where("rep_name = ?", filter.RepName)
	}
	if filter.Month != "" {
		q = q.Where("month = ?", filter.Month)
	}
	if filter.Week != "" {
		q = q.Where("week = ?", filter.Week)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	return q
}
