package pipeline

import (
	"time"

	"github.com/salesopshq/salesops/internal/user"
)

// Stage codes in funnel order. The five stages and their win probabilities
// are fixed; the table is seeded by migration and never mutated through the
// API.
const (
	StageProspecting       = "PROSPECTING"
	StageNeedsDefined      = "NEEDS_DEFINED"
	StageProposalSubmitted = "PROPOSAL_SUBMITTED"
	StageNegotiationDone   = "NEGOTIATION_DONE"
	StageCloseWon          = "CLOSE_WON"
)

type Stage struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Code        string `json:"code" gorm:"uniqueIndex;not null"`
	Label       string `json:"label" gorm:"not null"`
	Probability int    `json:"probability" gorm:"not null"`
	Position    int    `json:"position" gorm:"not null"`
}

func (Stage) TableName() string {
	return "deal_stages"
}

// Deal is an opportunity in the pipeline. Year and Quarter are derived from
// ExpectedCloseDate at write time so the period filters stay cheap.
type Deal struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	ExternalDealID    string     `json:"externalDealId" gorm:"column:external_deal_id;uniqueIndex;not null"`
	OrganizationName  string     `json:"organizationName" gorm:"column:organization_name;not null"`
	DealName          string     `json:"dealName" gorm:"column:deal_name;not null"`
	DealValue         float64    `json:"dealValue" gorm:"column:deal_value;not null"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty" gorm:"column:expected_close_date"`
	StageID           int64      `json:"stageId" gorm:"column:stage_id;not null"`
	NextAction        string     `json:"nextAction" gorm:"column:next_action"`
	RedFlag           bool       `json:"redFlag" gorm:"column:red_flag;default:false"`
	SalesOwnerID      int64      `json:"salesOwnerId" gorm:"column:sales_owner_id;not null"`
	CustomerID        *int64     `json:"customerId,omitempty" gorm:"column:customer_id"`
	Year              int        `json:"year" gorm:"not null"`
	Quarter           int        `json:"quarter" gorm:"not null"`
	CreatedAt         time.Time  `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" gorm:"column:updated_at"`

	Stage         *Stage      `json:"stage,omitempty" gorm:"foreignKey:StageID"`
	SalesOwner    *user.User  `json:"salesOwner,omitempty" gorm:"foreignKey:SalesOwnerID"`
	PreSalesOwner []user.User `json:"preSalesOwners" gorm:"many2many:deal_presales;"`
}

func (Deal) TableName() string {
	return "deals"
}

// PeriodOf derives the reporting year and quarter from a close date.
func PeriodOf(t time.Time) (year, quarter int) {
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// ListFilter narrows the deal listing. PreSalesOwnerIDs matches deals having
// ANY of the given pre-sales owners.
type ListFilter struct {
	Year             int
	Quarter          int
	SalesOwnerID     int64
	PreSalesOwnerIDs []int64
	StageID          int64
}

// StageTotal is one funnel slice: the aggregate of all in-scope deals in a
// stage. IsEmpty marks zero-filled slices so the funnel chart can render
// them distinctly.
type StageTotal struct {
	StageID     int64   `json:"stageId"`
	Code        string  `json:"code"`
	Label       string  `json:"label"`
	Probability int     `json:"probability"`
	DealCount   int64   `json:"dealCount"`
	TotalValue  float64 `json:"totalValue"`
	IsEmpty     bool    `json:"isEmpty"`
}

// Summary is the headline metrics block for the in-scope deals.
// QuarterlyTarget and PercentToTarget are only set when a single sales owner
// is in scope.
type Summary struct {
	TotalDeals          int64    `json:"totalDeals"`
	TotalPipelineAmount float64  `json:"totalPipelineAmount"`
	ClosedWon           float64  `json:"closedWon"`
	AvgDealSize         float64  `json:"avgDealSize"`
	WeightedForecast    float64  `json:"weightedForecast"`
	QuarterlyTarget     *float64 `json:"quarterlyTarget"`
	PercentToTarget     *float64 `json:"percentToTarget"`
}

// NormalizeStageTotals maps raw per-stage aggregates onto the full funnel:
// every stage appears exactly once, in funnel order, zero-filled with
// IsEmpty when it had no deals.
func NormalizeStageTotals(stages []Stage, raw []StageTotal) []StageTotal {
	byStage := make(map[int64]StageTotal, len(raw))
	for _, t := range raw {
		byStage[t.StageID] = t
	}

	normalized := make([]StageTotal, 0, len(stages))
	for _, stage := range stages {
		if t, ok := byStage[stage.ID]; ok && t.DealCount > 0 {
			t.Code = stage.Code
			t.Label = stage.Label
			t.Probability = stage.Probability
			t.IsEmpty = false
			normalized = append(normalized, t)
			continue
		}
		normalized = append(normalized, StageTotal{
			StageID:     stage.ID,
			Code:        stage.Code,
			Label:       stage.Label,
			Probability: stage.Probability,
			IsEmpty:     true,
		})
	}
	return normalized
}

// BuildSummary computes the headline metrics from the normalized stage
// totals. yearlyTarget is nil when no single sales owner is in scope.
func BuildSummary(totals []StageTotal, yearlyTarget *float64) Summary {
	var summary Summary
	for _, t := range totals {
		summary.TotalDeals += t.DealCount
		summary.TotalPipelineAmount += t.TotalValue
		summary.WeightedForecast += t.TotalValue * float64(t.Probability) / 100
		if t.Code == StageCloseWon {
			summary.ClosedWon += t.TotalValue
		}
	}

	if summary.TotalDeals > 0 {
		summary.AvgDealSize = summary.TotalPipelineAmount / float64(summary.TotalDeals)
	}

	if yearlyTarget != nil && *yearlyTarget > 0 {
		quarterly := *yearlyTarget / 4
		percent := summary.ClosedWon / quarterly * 100
		summary.QuarterlyTarget = &quarterly
		summary.PercentToTarget = &percent
	}

	return summary
}
