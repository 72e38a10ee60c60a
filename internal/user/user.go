package user

import (
	"time"
)

const (
	DepartmentSales    = "SALES"
	DepartmentPreSales = "PRE_SALES"

	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// User is a staff member: a sales rep or a pre-sales engineer. YearlyTarget
// only carries meaning for SALES users and feeds the pipeline summary.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"firstName" gorm:"column:first_name;not null"`
	LastName     string    `json:"lastName" gorm:"column:last_name;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Department   string    `json:"department" gorm:"not null"`
	YearlyTarget float64   `json:"yearlyTarget" gorm:"column:yearly_target;default:0"`
	Status       string    `json:"status" gorm:"default:'ACTIVE'"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ListFilter narrows the staff listing.
type ListFilter struct {
	Department string
	Status     string
}
