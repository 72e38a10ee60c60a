package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal/admin"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*admin.Admin, error) {
	var a admin.Admin
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	var a admin.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Create(ctx context.Context, a *admin.Admin) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&admin.Admin{}).Count(&total).Error
	return total, err
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*admin.Admin, error) {
	var admins []*admin.Admin
	err := r.db.WithContext(ctx).Model(&admin.Admin{}).
		Order("email ASC").
		Limit(limit).
		Offset(offset).
		Find(&admins).Error
	return admins, err
}

func (r *Repository) CreateInvite(ctx context.Context, invite *admin.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *Repository) GetInviteByToken(ctx context.Context, token string) (*admin.Invite, error) {
	var invite admin.Invite
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

func (r *Repository) GetPendingInviteByEmail(ctx context.Context, email string) (*admin.Invite, error) {
	var invite admin.Invite
	err := r.db.WithContext(ctx).
		Where("email = ? AND accepted_at IS NULL", email).
		Order("created_at DESC").
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

func (r *Repository) MarkInviteAccepted(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&admin.Invite{}).
		Where("id = ?", id).
		Update("accepted_at", time.Now()).Error
}
