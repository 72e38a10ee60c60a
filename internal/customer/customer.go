package customer

import (
	"time"
)

// Customer is a client organization deals are sold into.
type Customer struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`

	Contacts []Contact `json:"contacts,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Customer) TableName() string {
	return "customers"
}

// Contact is a named person at a customer. Role is a free-text job title.
type Contact struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	CustomerID int64     `json:"customerId" gorm:"column:customer_id;not null"`
	Name       string    `json:"name" gorm:"not null"`
	Role       string    `json:"role"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Contact) TableName() string {
	return "customer_contacts"
}

// ListItem is the listing row: the customer plus rollups over its deals.
type ListItem struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	DealCount     int64     `json:"dealCount"`
	TotalDealSize float64   `json:"totalDealSize"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ListFilter narrows the customer listing.
type ListFilter struct {
	Search string
}
