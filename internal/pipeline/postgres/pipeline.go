package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal/pipeline"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) ListStages(ctx context.Context) ([]pipeline.Stage, error) {
	var stages []pipeline.Stage
	err := r.db.WithContext(ctx).Order("position ASC").Find(&stages).Error
	return stages, err
}

func (r *Repository) GetStageByID(ctx context.Context, id int64) (*pipeline.Stage, error) {
	var stage pipeline.Stage
	if err := r.db.WithContext(ctx).First(&stage, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stage, nil
}

func (r *Repository) CreateDeal(ctx context.Context, deal *pipeline.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *Repository) CreateDeals(ctx context.Context, deals []*pipeline.Deal) error {
	if len(deals) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(deals, 200).Error
}

func (r *Repository) GetDealByID(ctx context.Context, id int64) (*pipeline.Deal, error) {
	var deal pipeline.Deal
	err := r.db.WithContext(ctx).
		Preload("Stage").
		Preload("SalesOwner").
		Preload("PreSalesOwner").
		First(&deal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deal, nil
}

func (r *Repository) UpdateDeal(ctx context.Context, deal *pipeline.Deal) error {
	deal.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Omit("Stage", "SalesOwner", "PreSalesOwner").Save(deal).Error
}

// ReplacePreSales swaps the pre-sales assignment set in one transaction.
func (r *Repository) ReplacePreSales(ctx context.Context, dealID int64, userIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM deal_presales WHERE deal_id = ?`, dealID).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			if err := tx.Exec(`INSERT INTO deal_presales (deal_id, user_id) VALUES (?, ?)`, dealID, userID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) DistinctQuarters(ctx context.Context, year int) ([]int, error) {
	q := r.db.WithContext(ctx).Model(&pipeline.Deal{}).Where("quarter > 0")
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var quarters []int
	err := q.Distinct("quarter").Order("quarter ASC").Pluck("quarter", &quarters).Error
	return quarters, err
}

func (r *Repository) CountDeals(ctx context.Context, filter pipeline.ListFilter) (int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&pipeline.Deal{}), filter).Count(&total).Error
	return total, err
}

func (r *Repository) ListDeals(ctx context.Context, filter pipeline.ListFilter, limit, offset int) ([]*pipeline.Deal, error) {
	var deals []*pipeline.Deal
	err := r.applyFilter(r.db.WithContext(ctx).Model(&pipeline.Deal{}), filter).
		Preload("Stage").
		Preload("SalesOwner").
		Preload("PreSalesOwner").
		Order("deals.deal_value DESC, deals.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&deals).Error
	return deals, err
}

// StageTotals aggregates the in-scope deals per stage. Stages with no deals
// are absent here; normalization fills them in.
func (r *Repository) StageTotals(ctx context.Context, filter pipeline.ListFilter) ([]pipeline.StageTotal, error) {
	var totals []pipeline.StageTotal
	err := r.applyFilter(r.db.WithContext(ctx).Model(&pipeline.Deal{}), filter).
		Select("deals.stage_id AS stage_id, COUNT(deals.id) AS deal_count, COALESCE(SUM(deals.deal_value), 0) AS total_value").
		Group("deals.stage_id").
		Scan(&totals).Error
	return totals, err
}

// applyFilter narrows deals by period, ownership and stage. The pre-sales
// filter goes through a subquery so join fan-out never duplicates rows.
func (r *Repository) applyFilter(q *gorm.DB, filter pipeline.ListFilter) *gorm.DB {
	if filter.Year > 0 {
		q = q.Where("deals.year = ?", filter.Year)
	}
	if filter.Quarter > 0 {
		q = q.Where("deals.quarter = ?", filter.Quarter)
	}
	if filter.SalesOwnerID > 0 {
		q = q.Where("deals.sales_owner_id = ?", filter.SalesOwnerID)
	}
	if filter.StageID > 0 {
		q = q.Where("deals.stage_id = ?", filter.StageID)
	}
	if len(filter.PreSalesOwnerIDs) > 0 {
		q = q.Where("deals.id IN (SELECT deal_id FROM deal_presales WHERE user_id IN ?)", filter.PreSalesOwnerIDs)
	}
	return q
}
