package customer

import (
	"context"
	"fmt"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
)

type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id int64) (*Customer, error)
	GetWithContacts(ctx context.Context, id int64) (*Customer, error)
	UpdateName(ctx context.Context, id int64, name string) error
	Count(ctx context.Context, filter ListFilter) (int64, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]ListItem, error)

	AddContacts(ctx context.Context, contacts []Contact) error
	GetContact(ctx context.Context, customerID, contactID int64) (*Contact, error)
	UpdateContact(ctx context.Context, contact *Contact) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string)
}

type Service struct {
	repo  Repository
	audit AuditRecorder
}

func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{
		repo:  repo,
		audit: audit,
	}
}

// List returns customers with their deal rollups. The rollups are computed
// in the query, not cached, so they are always consistent with the deals.
func (s *Service) List(ctx context.Context, filter ListFilter, page transport.Pagination) ([]ListItem, int64, transport.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, page, err
	}

	page = page.Clamp(page.TotalPages(total))
	items, err := s.repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, page, err
	}
	return items, total, page, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Customer, error) {
	customer, err := s.repo.GetWithContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, internal.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, dto CreateCustomerDTO) (*Customer, error) {
	customer := &Customer{Name: dto.Name}
	for _, c := range dto.Contacts {
		customer.Contacts = append(customer.Contacts, Contact{
			Name:  c.Name,
			Role:  c.Role,
			Email: c.Email,
			Phone: c.Phone,
		})
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "CREATE", "customer", customer.ID, fmt.Sprintf("created customer %s", customer.Name))
	return customer, nil
}

func (s *Service) UpdateName(ctx context.Context, actor auth.Actor, id int64, dto UpdateCustomerDTO) (*Customer, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrCustomerNotFound
	}

	if err := s.repo.UpdateName(ctx, id, dto.Name); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "UPDATE", "customer", id, fmt.Sprintf("renamed customer %s to %s", existing.Name, dto.Name))
	return s.repo.GetWithContacts(ctx, id)
}

func (s *Service) AddContacts(ctx context.Context, actor auth.Actor, customerID int64, dto AddContactsDTO) (*Customer, error) {
	existing, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, internal.ErrCustomerNotFound
	}

	contacts := make([]Contact, 0, len(dto.Contacts))
	for _, c := range dto.Contacts {
		contacts = append(contacts, Contact{
			CustomerID: customerID,
			Name:       c.Name,
			Role:       c.Role,
			Email:      c.Email,
			Phone:      c.Phone,
		})
	}

	if err := s.repo.AddContacts(ctx, contacts); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "ADD_CONTACTS", "customer", customerID,
		fmt.Sprintf("added %d contact(s) to %s", len(contacts), existing.Name))
	return s.repo.GetWithContacts(ctx, customerID)
}

func (s *Service) UpdateContact(ctx context.Context, actor auth.Actor, customerID, contactID int64, dto UpdateContactDTO) (*Contact, error) {
	contact, err := s.repo.GetContact(ctx, customerID, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, internal.ErrContactNotFound
	}

	if dto.Name != nil {
		contact.Name = *dto.Name
	}
	if dto.Role != nil {
		contact.Role = *dto.Role
	}
	if dto.Email != nil {
		contact.Email = *dto.Email
	}
	if dto.Phone != nil {
		contact.Phone = *dto.Phone
	}

	if err := s.repo.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "UPDATE_CONTACT", "customer", customerID, fmt.Sprintf("updated contact %s", contact.Name))
	return contact, nil
}
