package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
)

const DefaultInviteTTL = 72 * time.Hour

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	Create(ctx context.Context, admin *Admin) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*Admin, error)

	CreateInvite(ctx context.Context, invite *Invite) error
	GetInviteByToken(ctx context.Context, token string) (*Invite, error)
	GetPendingInviteByEmail(ctx context.Context, email string) (*Invite, error)
	MarkInviteAccepted(ctx context.Context, id int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string)
}

type Service struct {
	repo       Repository
	audit      AuditRecorder
	bcryptCost int
	inviteTTL  time.Duration
}

func NewService(repo Repository, audit AuditRecorder, bcryptCost int, inviteTTL time.Duration) *Service {
	if inviteTTL <= 0 {
		inviteTTL = DefaultInviteTTL
	}
	return &Service{
		repo:       repo,
		audit:      audit,
		bcryptCost: bcryptCost,
		inviteTTL:  inviteTTL,
	}
}

func (s *Service) List(ctx context.Context, page transport.Pagination) ([]*Admin, int64, transport.Pagination, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, page, err
	}

	page = page.Clamp(page.TotalPages(total))
	admins, err := s.repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, page, err
	}
	return admins, total, page, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Admin, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, internal.ErrAdminNotFound
	}
	return admin, nil
}

// Invite creates a single-use invitation token for a new admin account.
// An email that already belongs to an admin, or that has an unexpired
// pending invite, is a conflict.
func (s *Service) Invite(ctx context.Context, actor auth.Actor, dto InviteDTO) (*Invite, error) {
	email := strings.ToLower(dto.Email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	pending, err := s.repo.GetPendingInviteByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if pending != nil && !pending.Expired(time.Now()) {
		return nil, internal.ErrInviteConflict
	}

	token, err := auth.GenerateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	role := dto.Role
	if role == "" {
		role = auth.RoleAdmin
	}

	invite := &Invite{
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: time.Now().Add(s.inviteTTL),
	}
	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, "INVITE", "admin", invite.ID, fmt.Sprintf("invited %s as %s", email, role))
	return invite, nil
}

// AcceptInvite redeems the token and creates the admin account. The token is
// burned on success so it cannot be replayed.
func (s *Service) AcceptInvite(ctx context.Context, dto AcceptInviteDTO) (*Admin, error) {
	invite, err := s.repo.GetInviteByToken(ctx, dto.Token)
	if err != nil {
		return nil, err
	}
	if invite == nil || invite.Accepted() || invite.Expired(time.Now()) {
		return nil, internal.ErrInviteExpired
	}

	existing, err := s.repo.GetByEmail(ctx, invite.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := auth.HashPasswordWithCost(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &Admin{
		Email:        invite.Email,
		Role:         invite.Role,
		Status:       StatusActive,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}

	if err := s.repo.MarkInviteAccepted(ctx, invite.ID); err != nil {
		return nil, err
	}

	accepted := auth.Actor{Type: auth.ActorTypeAdmin, ID: admin.ID, Email: admin.Email, AdminRole: admin.Role}
	s.audit.Record(ctx, accepted, "ACCEPT_INVITE", "admin", admin.ID, fmt.Sprintf("%s accepted admin invite", admin.Email))
	return admin, nil
}
