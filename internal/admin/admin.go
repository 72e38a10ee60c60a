package admin

import (
	"time"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Admin is a dashboard operator. Role is either ADMIN or SUPER_ADMIN; only
// the latter can mint invites.
type Admin struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Role         string    `json:"role" gorm:"not null"`
	Status       string    `json:"status" gorm:"default:'ACTIVE'"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Admin) TableName() string {
	return "admins"
}

// Invite is a pending admin invitation. The token is single-use and expires;
// accepting it creates the admin account.
type Invite struct {
	ID         int64      `json:"id" gorm:"primaryKey"`
	Email      string     `json:"email" gorm:"not null"`
	Role       string     `json:"role" gorm:"not null"`
	Token      string     `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt  time.Time  `json:"expiresAt" gorm:"column:expires_at;not null"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty" gorm:"column:accepted_at"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"column:created_at"`
}

func (Invite) TableName() string {
	return "admin_invites"
}

func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *Invite) Accepted() bool {
	return i.AcceptedAt != nil
}
