package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal/auth"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetAdminCredential(ctx context.Context, email string) (*auth.AdminCredential, error) {
	var cred auth.AdminCredential
	query := `SELECT id, email, role, password_hash FROM admins WHERE email = ? AND status = 'ACTIVE'`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&cred.ID, &cred.Email, &cred.Role, &cred.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *Repository) GetUserCredential(ctx context.Context, email string) (*auth.UserCredential, error) {
	var cred auth.UserCredential
	query := `SELECT id, email, first_name, last_name, department, status, password_hash FROM users WHERE email = ?`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&cred.ID, &cred.Email, &cred.FirstName, &cred.LastName, &cred.Department, &cred.Status, &cred.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cred, nil
}

func (r *Repository) CreatePasswordReset(ctx context.Context, reset *auth.PasswordReset) error {
	query := `INSERT INTO password_resets (actor_type, actor_id, token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`
	return r.db.WithContext(ctx).Exec(query, string(reset.ActorType), reset.ActorID, reset.Token, reset.ExpiresAt, time.Now()).Error
}

func (r *Repository) GetPasswordReset(ctx context.Context, token string) (*auth.PasswordReset, error) {
	var reset auth.PasswordReset
	var actorType string
	var usedAt sql.NullTime

	query := `SELECT id, actor_type, actor_id, token, expires_at, used_at FROM password_resets WHERE token = ?`
	row := r.db.WithContext(ctx).Raw(query, token).Row()
	if err := row.Scan(&reset.ID, &actorType, &reset.ActorID, &reset.Token, &reset.ExpiresAt, &usedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	reset.ActorType = auth.ActorType(actorType)
	if usedAt.Valid {
		reset.UsedAt = &usedAt.Time
	}
	return &reset, nil
}

func (r *Repository) ConsumePasswordReset(ctx context.Context, id int64) error {
	query := `UPDATE password_resets SET used_at = ? WHERE id = ?`
	return r.db.WithContext(ctx).Exec(query, time.Now(), id).Error
}

func (r *Repository) UpdateAdminPassword(ctx context.Context, adminID int64, passwordHash string) error {
	query := `UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`
	return r.db.WithContext(ctx).Exec(query, passwordHash, time.Now(), adminID).Error
}

func (r *Repository) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	return r.db.WithContext(ctx).Exec(query, passwordHash, time.Now(), userID).Error
}
