package meeting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
)

type Repository interface {
	CreateMeetings(ctx context.Context, meetings []*Meeting) error
	Count(ctx context.Context, filter ListFilter) (int64, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Meeting, error)
	ListAll(ctx context.Context, filter ListFilter) ([]*Meeting, error)
	DistinctMonths(ctx context.Context) ([]string, error)
	DistinctWeeks(ctx context.Context, month string) ([]string, error)
}

type AuditRecorder interface {
	RecordWithMeta(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string, metadata map[string]interface{})
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

// CSV column headers, matched case-insensitively.
const (
	colCustomerName = "customername"
	colContact      = "primarycontact"
	colPurpose      = "meetingpurpose"
	colOutcome      = "meetingoutcome"
)

// ImportCSV bulk-loads meetings. Rep, month and week are request parameters
// so every row in the sheet lands in the same reporting bucket. Blank
// contact and outcome cells are imported as-is; the KPI report is where
// they surface as findings.
func (s *Service) ImportCSV(ctx context.Context, actor auth.Actor, r io.Reader, repName, month, week string, maxRows int) (*UploadResult, error) {
	repName = strings.TrimSpace(repName)
	if repName == "" || month == "" || week == "" {
		return nil, internal.NewValidationError("repName, month and week are required", internal.ErrCodeInvalidFilter)
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
	if _, ok := cols[colCustomerName]; !ok {
		return nil, internal.NewValidationError(`missing required column "customerName"`, internal.ErrCodeInvalidUpload)
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	result := &UploadResult{}
	var meetings []*Meeting
	year := time.Now().Year()
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
		if maxRows > 0 && len(meetings) >= maxRows {
			return nil, internal.NewValidationError(fmt.Sprintf("file exceeds the %d row limit", maxRows), internal.ErrCodeInvalidUpload)
		}

		customerName := field(record, colCustomerName)
		if customerName == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: customerName is required", line))
			continue
		}

		meetings = append(meetings, &Meeting{
			RepName:        repName,
			CustomerName:   customerName,
			PrimaryContact: field(record, colContact),
			MeetingPurpose: field(record, colPurpose),
			MeetingOutcome: field(record, colOutcome),
			Month:          month,
			Week:           week,
			Year:           year,
		})
	}

	if len(meetings) == 0 {
		return nil, internal.NewValidationError("no importable rows in CSV file", internal.ErrCodeInvalidUpload)
	}

	if err := s.repo.CreateMeetings(ctx, meetings); err != nil {
		return nil, err
	}
	result.Imported = len(meetings)

	s.audit.RecordWithMeta(ctx, actor, "IMPORT", "meeting", 0,
		fmt.Sprintf("imported %d meeting(s) for %s (%s %s)", result.Imported, repName, month, week),
		map[string]interface{}{
			"imported": result.Imported,
			"skipped":  result.Skipped,
			"repName":  repName,
			"month":    month,
			"week":     week,
		})

	return result, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, page transport.Pagination) ([]*Meeting, int64, transport.Pagination, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, page, err
	}

	page = page.Clamp(page.TotalPages(total))
	meetings, err := s.repo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, page, err
	}
	return meetings, total, page, nil
}

// KPI scores one rep's week of meetings.
func (s *Service) KPI(ctx context.Context, repName, month, week string) (*KPIReport, error) {
	if repName == "" || month == "" || week == "" {
		return nil, internal.NewValidationError("repName, month and week are required", internal.ErrCodeInvalidFilter)
	}

	meetings, err := s.repo.ListAll(ctx, ListFilter{RepName: repName, Month: month, Week: week})
	if err != nil {
		return nil, err
	}

	report := BuildKPIReport(repName, month, week, meetings)
	return &report, nil
}

// Months returns the months that actually have uploaded meetings.
func (s *Service) Months(ctx context.Context) ([]string, error) {
	return s.repo.DistinctMonths(ctx)
}

// Weeks returns the weeks with uploaded meetings, optionally within a month.
func (s *Service) Weeks(ctx context.Context, month string) ([]string, error) {
	return s.repo.DistinctWeeks(ctx, month)
}
