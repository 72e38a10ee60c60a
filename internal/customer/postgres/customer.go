package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/salesopshq/salesops/internal/customer"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetWithContacts(ctx context.Context, id int64) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.WithContext(ctx).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB {
			return db.Order("customer_contacts.id ASC")
		}).
		First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.db.WithContext(ctx).Model(&customer.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "updated_at": time.Now()}).Error
}

func (r *Repository) Count(ctx context.Context, filter customer.ListFilter) (int64, error) {
	var total int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&customer.Customer{}), filter).Count(&total).Error
	return total, err
}

// List joins the deal rollups in. LOWER() on both sides keeps the search
// case-insensitive on postgres and sqlite alike.
func (r *Repository) List(ctx context.Context, filter customer.ListFilter, limit, offset int) ([]customer.ListItem, error) {
	var items []customer.ListItem
	err := r.applyFilter(r.db.WithContext(ctx).Model(&customer.Customer{}), filter).
		Select("customers.id, customers.name, customers.created_at, COUNT(deals.id) AS deal_count, COALESCE(SUM(deals.deal_value), 0) AS total_deal_size").
		Joins("LEFT JOIN deals ON deals.customer_id = customers.id").
		Group("customers.id, customers.name, customers.created_at").
		Order("customers.name ASC").
		Limit(limit).
		Offset(offset).
		Scan(&items).Error
	return items, err
}

func (r *Repository) AddContacts(ctx context.Context, contacts []customer.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&contacts).Error
}

func (r *Repository) GetContact(ctx context.Context, customerID, contactID int64) (*customer.Contact, error) {
	var contact customer.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", contactID, customerID).
		First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}

func (r *Repository) UpdateContact(ctx context.Context, contact *customer.Contact) error {
	contact.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *Repository) applyFilter(q *gorm.DB, filter customer.ListFilter) *gorm.DB {
	if filter.Search != "" {
		q = q.Where("LOWER(customers.name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	return q
}
