package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
	"github.com/salesopshq/salesops/internal/user"
)

type Repository interface {
	ListStages(ctx context.Context) ([]Stage, error)
	GetStageByID(ctx context.Context, id int64) (*Stage, error)

	CreateDeal(ctx context.Context, deal *Deal) error
	CreateDeals(ctx context.Context, deals []*Deal) error
	GetDealByID(ctx context.Context, id int64) (*Deal, error)
	UpdateDeal(ctx context.Context, deal *Deal) error
	ReplacePreSales(ctx context.Context, dealID int64, userIDs []int64) error

	DistinctQuarters(ctx context.Context, year int) ([]int, error)
	CountDeals(ctx context.Context, filter ListFilter) (int64, error)
	ListDeals(ctx context.Context, filter ListFilter, limit, offset int) ([]*Deal, error)
	StageTotals(ctx context.Context, filter ListFilter) ([]StageTotal, error)
}

// UserGetter resolves staff records; the summary needs the sales owner's
// yearly target.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string)
	RecordWithMeta(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string, metadata map[string]interface{})
}

type Service struct {
	repo  Repository
	users UserGetter
	audit AuditRecorder
}

func NewService(repo Repository, users UserGetter, audit AuditRecorder) *Service {
	return &Service{
		repo:  repo,
		users: users,
		audit: audit,
	}
}

func (s *Service) Stages(ctx context.Context) ([]Stage, error) {
	return s.repo.ListStages(ctx)
}

// Quarters returns the quarters that actually hold deals, optionally within
// one year.
func (s *Service) Quarters(ctx context.Context, year int) ([]int, error) {
	return s.repo.DistinctQuarters(ctx, year)
}

// scopeForActor pins staff users to their own deals: a sales rep only sees
// deals they own, a pre-sales engineer only deals they are assigned to.
// Admins pass the filter through untouched.
func scopeForActor(actor auth.Actor, filter ListFilter) ListFilter {
	if !actor.IsUser() {
		return filter
	}
	if actor.Department == user.DepartmentPreSales {
		filter.PreSalesOwnerIDs = []int64{actor.ID}
		return filter
	}
	filter.SalesOwnerID = actor.ID
	return filter
}

// List assembles the pipeline view: the deal page, the funnel totals and
// the summary are independent queries over the same filter, so they run
// concurrently.
func (s *Service) List(ctx context.Context, actor auth.Actor, filter ListFilter, page transport.Pagination) (*ListResponse, error) {
	filter = scopeForActor(actor, filter)

	var (
		deals  []*Deal
		total  int64
		totals []StageTotal
		target *float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = s.repo.CountDeals(gctx, filter)
		if err != nil {
			return err
		}
		page = page.Clamp(page.TotalPages(total))
		deals, err = s.repo.ListDeals(gctx, filter, page.Limit, page.Offset())
		return err
	})

	g.Go(func() error {
		stages, err := s.repo.ListStages(gctx)
		if err != nil {
			return err
		}
		raw, err := s.repo.StageTotals(gctx, filter)
		if err != nil {
			return err
		}
		totals = NormalizeStageTotals(stages, raw)
		return nil
	})

	if filter.SalesOwnerID > 0 {
		ownerID := filter.SalesOwnerID
		g.Go(func() error {
			owner, err := s.users.GetByID(gctx, ownerID)
			if err != nil {
				return err
			}
			if owner != nil && owner.YearlyTarget > 0 {
				target = &owner.YearlyTarget
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if deals == nil {
		deals = []*Deal{}
	}

	return &ListResponse{
		PaginatedResponse: transport.NewPaginatedResponse(page, total, deals),
		StageTotals:       totals,
		Summary:           BuildSummary(totals, target),
	}, nil
}

func (s *Service) GetDeal(ctx context.Context, actor auth.Actor, id int64) (*Deal, error) {
	deal, err := s.repo.GetDealByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, internal.ErrDealNotFound
	}
	if actor.IsUser() && !dealVisibleTo(actor, deal) {
		return nil, internal.ErrDealNotFound
	}
	return deal, nil
}

func dealVisibleTo(actor auth.Actor, deal *Deal) bool {
	if deal.SalesOwnerID == actor.ID && actor.Department != user.DepartmentPreSales {
		return true
	}
	for _, ps := range deal.PreSalesOwner {
		if ps.ID == actor.ID {
			return true
		}
	}
	return false
}

func (s *Service) CreateDeal(ctx context.Context, actor auth.Actor, dto CreateDealDTO) (*Deal, error) {
	closeDate, err := dto.CloseDate()
	if err != nil {
		return nil, internal.NewValidationError("expectedCloseDate must be YYYY-MM-DD", internal.ErrCodeInvalidFilter)
	}

	stage, err := s.repo.GetStageByID(ctx, dto.StageID)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, internal.ErrStageNotFound
	}

	// Staff create deals for themselves only.
	if actor.IsUser() {
		dto.SalesOwnerID = actor.ID
	}

	year, quarter := PeriodOf(closeDate)
	deal := &Deal{
		ExternalDealID:   uuid.New().String(),
		OrganizationName: dto.OrganizationName,
		DealName:         dto.DealName,
		DealValue:        dto.DealValue,
		ExpectedCloseDate: &closeDate,
		StageID:          stage.ID,
		NextAction:       dto.NextAction,
		RedFlag:          dto.RedFlag,
		SalesOwnerID:     dto.SalesOwnerID,
		CustomerID:       dto.CustomerID,
		Year:             year,
		Quarter:          quarter,
	}

	if err := s.repo.CreateDeal(ctx, deal); err != nil {
		return nil, err
	}

	if len(dto.PreSalesOwnerIDs) > 0 {
		if err := s.repo.ReplacePreSales(ctx, deal.ID, dto.PreSalesOwnerIDs); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, actor, "CREATE", "deal", deal.ID, fmt.Sprintf("created deal %s (%s)", deal.DealName, deal.OrganizationName))
	return s.repo.GetDealByID(ctx, deal.ID)
}

func (s *Service) UpdateDeal(ctx context.Context, actor auth.Actor, id int64, dto UpdateDealDTO) (*Deal, error) {
	deal, err := s.GetDeal(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if dto.OrganizationName != nil {
		deal.OrganizationName = *dto.OrganizationName
	}
	if dto.DealName != nil {
		deal.DealName = *dto.DealName
	}
	if dto.DealValue != nil {
		deal.DealValue = *dto.DealValue
	}
	if dto.ExpectedCloseDate != nil {
		closeDate, err := parseWireDate(*dto.ExpectedCloseDate)
		if err != nil {
			return nil, internal.NewValidationError("expectedCloseDate must be YYYY-MM-DD", internal.ErrCodeInvalidFilter)
		}
		deal.ExpectedCloseDate = &closeDate
		deal.Year, deal.Quarter = PeriodOf(closeDate)
	}
	if dto.StageID != nil {
		stage, err := s.repo.GetStageByID(ctx, *dto.StageID)
		if err != nil {
			return nil, err
		}
		if stage == nil {
			return nil, internal.ErrStageNotFound
		}
		deal.StageID = stage.ID
	}
	if dto.NextAction != nil {
		deal.NextAction = *dto.NextAction
	}
	if dto.RedFlag != nil {
		deal.RedFlag = *dto.RedFlag
	}
	if dto.SalesOwnerID != nil && !actor.IsUser() {
		deal.SalesOwnerID = *dto.SalesOwnerID
	}
	if dto.CustomerID != nil {
		deal.CustomerID = dto.CustomerID
	}

	// Associations are saved separately; zero them so gorm does not try to
	// upsert the preloaded rows.
	deal.Stage = nil
	deal.SalesOwner = nil
	deal.PreSalesOwner = nil

	if err := s.repo.UpdateDeal(ctx, deal); err != nil {
		return nil, err
	}

	if dto.PreSalesOwnerIDs != nil {
		if err := s.repo.ReplacePreSales(ctx, deal.ID, *dto.PreSalesOwnerIDs); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, actor, "UPDATE", "deal", deal.ID, fmt.Sprintf("updated deal %s", deal.DealName))
	return s.repo.GetDealByID(ctx, deal.ID)
}
