package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
)

type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	Count(ctx context.Context, filter ListFilter) (int64, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuditLog, error)
	GetByID(ctx context.Context, id int64) (*AuditLog, error)
}

// Service writes and reads the audit trail. Record is best-effort: a failed
// write is logged and swallowed so the triggering operation still succeeds.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record satisfies the recorder interface the other modules depend on.
func (s *Service) Record(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string) {
	s.RecordWithMeta(ctx, actor, action, entity, entityID, description, nil)
}

// RecordWithMeta attaches arbitrary metadata to the entry, used by the CSV
// imports to record row counts.
func (s *Service) RecordWithMeta(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string, metadata map[string]interface{}) {
	entry := &AuditLog{
		ActorType:   string(actor.Type),
		ActorID:     actor.ID,
		Action:      action,
		Entity:      entity,
		Description: description,
	}

	if entityID > 0 {
		entry.EntityID = &entityID
	}

	if snapshot, err := json.Marshal(actor); err == nil {
		entry.ActorJSON = string(snapshot)
	}
	if len(metadata) > 0 {
		if meta, err := json.Marshal(metadata); err == nil {
			entry.MetaJSON = string(meta)
		}
	}

	if ip := internal.IPFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := internal.UserAgentFromContext(ctx); ua != "" {
		entry.UserAgent = &ua
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to write audit log",
			"error", err,
			"action", action,
			"entity", entity,
			"actor_id", actor.ID)
	}
}

// List counts first so the requested page can be clamped into range before
// the rows are fetched.
func (s *Service) List(ctx context.Context, filter ListFilter, page transport.Pagination) ([]*AuditLog, int64, transport.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, page, err
	}

	page = page.Clamp(page.TotalPages(total))
	logs, err := s.repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, page, err
	}
	return logs, total, page, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*AuditLog, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, internal.ErrAuditLogNotFound
	}
	return entry, nil
}
