package pipeline

import (
	"time"

	"github.com/salesopshq/salesops/internal/transport"
)

type CreateDealDTO struct {
	OrganizationName  string  `json:"organizationName" validate:"required"`
	DealName          string  `json:"dealName" validate:"required"`
	DealValue         float64 `json:"dealValue" validate:"required,gt=0"`
	ExpectedCloseDate string  `json:"expectedCloseDate" validate:"required"`
	StageID           int64   `json:"stageId" validate:"required"`
	NextAction        string  `json:"nextAction,omitempty"`
	RedFlag           bool    `json:"redFlag,omitempty"`
	SalesOwnerID      int64   `json:"salesOwnerId" validate:"required"`
	PreSalesOwnerIDs  []int64 `json:"preSalesOwnerIds,omitempty"`
	CustomerID        *int64  `json:"customerId,omitempty"`
}

// CloseDate parses the wire date, which is plain YYYY-MM-DD.
func (d CreateDealDTO) CloseDate() (time.Time, error) {
	return time.Parse("2006-01-02", d.ExpectedCloseDate)
}

type UpdateDealDTO struct {
	OrganizationName  *string  `json:"organizationName,omitempty" validate:"omitempty,min=1"`
	DealName          *string  `json:"dealName,omitempty" validate:"omitempty,min=1"`
	DealValue         *float64 `json:"dealValue,omitempty" validate:"omitempty,gt=0"`
	ExpectedCloseDate *string  `json:"expectedCloseDate,omitempty"`
	StageID           *int64   `json:"stageId,omitempty"`
	NextAction        *string  `json:"nextAction,omitempty"`
	RedFlag           *bool    `json:"redFlag,omitempty"`
	SalesOwnerID      *int64   `json:"salesOwnerId,omitempty"`
	PreSalesOwnerIDs  *[]int64 `json:"preSalesOwnerIds,omitempty"`
	CustomerID        *int64   `json:"customerId,omitempty"`
}

// ListResponse is the deal listing envelope: the usual paginated items plus
// the funnel totals and the headline summary, computed over the same filter.
type ListResponse struct {
	transport.PaginatedResponse
	StageTotals []StageTotal `json:"stageTotals"`
	Summary     Summary      `json:"summary"`
}

// UploadResult reports a CSV import.
type UploadResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
