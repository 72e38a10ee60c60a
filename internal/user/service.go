package user

import (
	"context"
	"fmt"
	"strings"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Count(ctx context.Context, filter ListFilter) (int64, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*User, error)
}

// AuditRecorder receives the mutation trail for staff records.
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

func (s *Service) Create(ctx context.Context, actor auth.Actor, dto CreateUserDTO) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, strings.ToLower(dto.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := auth.HashPasswordWithCost(dto.Password, 0)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        strings.ToLower(dto.Email),
		Department:   dto.Department,
		YearlyTarget: dto.YearlyTarget,
		Status:       StatusActive,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "CREATE", "user", user.ID, fmt.Sprintf("created user %s", user.FullName()))
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, internal.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, dto UpdateUserDTO) (*User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		user.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		user.LastName = *dto.LastName
	}
	if dto.Department != nil {
		user.Department = *dto.Department
	}
	if dto.YearlyTarget != nil {
		user.YearlyTarget = *dto.YearlyTarget
	}
	if dto.Status != nil {
		user.Status = *dto.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "UPDATE", "user", user.ID, fmt.Sprintf("updated user %s", user.FullName()))
	return user, nil
}

// Deactivate flips the user to INACTIVE instead of deleting the row: deals
// and meetings keep their owner references, and the login path rejects
// inactive credentials.
func (s *Service) Deactivate(ctx context.Context, actor auth.Actor, id int64) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Status == StatusInactive {
		return nil
	}

	user.Status = StatusInactive
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, "DEACTIVATE", "user", user.ID, fmt.Sprintf("deactivated user %s", user.FullName()))
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, page transport.Pagination) ([]*User, int64, transport.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, page, err
	}

	page = page.Clamp(page.TotalPages(total))
	users, err := s.repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, page, err
	}
	return users, total, page, nil
}
