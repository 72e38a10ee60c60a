package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal/audit"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, log *audit.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *Repository) Count(ctx context.Context, filter audit.ListFilter) (int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&audit.AuditLog{}), filter).Count(&total).Error
	return total, err
}

func (r *Repository) List(ctx context.Context, filter audit.ListFilter, limit, offset int) ([]*audit.AuditLog, error) {
	var logs []*audit.AuditLog
	err := r.applyFilter(r.db.WithContext(ctx).Model(&audit.AuditLog{}), filter).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*audit.AuditLog, error) {
	var log audit.AuditLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *Repository) applyFilter(q *gorm.DB, filter audit.ListFilter) *gorm.DB {
	if filter.ActorType != "" {
		q = q.Where("actor_type = ?", filter.ActorType)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		q = q.Where("entity = ?", filter.Entity)
	}
	return q
}
