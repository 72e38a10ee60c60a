package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
)

// CSV column headers, matched case-insensitively. Extra columns are ignored.
const (
	colOrganization = "organizationname"
	colDealName     = "dealname"
	colDealValue    = "dealvalue"
	colCloseDate    = "expectedclosedate"
	colStage        = "stage"
	colNextAction   = "nextaction"
	colRedFlag      = "redflag"
)

func parseWireDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// ImportCSV bulk-loads deals from an uploaded CSV. Rows that fail to parse
// are skipped and reported; the valid rows are inserted in one batch. Year
// and sales owner come from the request, not the file.
func (s *Service) ImportCSV(ctx context.Context, actor auth.Actor, r io.Reader, year int, salesOwnerID int64, maxRows int) (*UploadResult, error) {
	if year <= 0 {
		return nil, internal.NewValidationError("year is required", internal.ErrCodeInvalidFilter)
	}
	if actor.IsUser() {
		salesOwnerID = actor.ID
	}
	if salesOwnerID <= 0 {
		return nil, internal.NewValidationError("salesOwnerId is required", internal.ErrCodeInvalidFilter)
	}

	owner, err := s.users.GetByID(ctx, salesOwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, internal.ErrUserNotFound
	}

	stages, err := s.repo.ListStages(ctx)
	if err != nil {
		return nil, err
	}
	stageByName := make(map[string]Stage, len(stages)*2)
	for _, st := range stages {
		stageByName[strings.ToLower(st.Code)] = st
		stageByName[strings.ToLower(st.Label)] = st
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, internal.NewValidationError("empty or unreadable CSV file", internal.ErrCodeInvalidUpload)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colOrganization, colDealName, colDealValue, colStage} {
		if _, ok := cols[required]; !ok {
			return nil, internal.NewValidationError(fmt.Sprintf("missing required column %q", required), internal.ErrCodeInvalidUpload)
		}
	}

	result := &UploadResult{}
	var deals []*Deal
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if maxRows > 0 && len(deals) >= maxRows {
			return nil, internal.NewValidationError(fmt.Sprintf("file exceeds the %d row limit", maxRows), internal.ErrCodeInvalidUpload)
		}

		deal, err := rowToDeal(record, cols, stageByName, year, salesOwnerID)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		deals = append(deals, deal)
	}

	if len(deals) == 0 {
		return nil, internal.NewValidationError("no importable rows in CSV file", internal.ErrCodeInvalidUpload)
	}

	if err := s.repo.CreateDeals(ctx, deals); err != nil {
		return nil, err
	}
	result.Imported = len(deals)

	s.audit.RecordWithMeta(ctx, actor, "IMPORT", "deal", 0,
		fmt.Sprintf("imported %d deal(s) for %s", result.Imported, owner.FullName()),
		map[string]interface{}{
			"imported":     result.Imported,
			"skipped":      result.Skipped,
			"year":         year,
			"salesOwnerId": salesOwnerID,
		})

	return result, nil
}

func rowToDeal(record []string, cols map[string]int, stageByName map[string]Stage, year int, salesOwnerID int64) (*Deal, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	org := field(colOrganization)
	name := field(colDealName)
	if org == "" || name == "" {
		return nil, fmt.Errorf("organizationName and dealName are required")
	}

	value, err := strconv.ParseFloat(field(colDealValue), 64)
	if err != nil || value <= 0 {
		return nil, fmt.Errorf("invalid dealValue %q", field(colDealValue))
	}

	stage, ok := stageByName[strings.ToLower(field(colStage))]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", field(colStage))
	}

	deal := &Deal{
		ExternalDealID:   uuid.New().String(),
		OrganizationName: org,
		DealName:         name,
		DealValue:        value,
		StageID:          stage.ID,
		NextAction:       field(colNextAction),
		SalesOwnerID:     salesOwnerID,
		Year:             year,
	}

	if raw := field(colCloseDate); raw != "" {
		closeDate, err := parseWireDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid expectedCloseDate %q", raw)
		}
		deal.ExpectedCloseDate = &closeDate
		_, deal.Quarter = PeriodOf(closeDate)
	}

	if raw := field(colRedFlag); raw != "" {
		flag, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid redFlag %q", raw)
		}
		deal.RedFlag = flag
	}

	return deal, nil
}
