package meeting

import (
	"fmt"
	"math"
	"strings"
)

// KPI statuses, for a single meeting and for the weekly aggregate alike.
const (
	StatusGood = "GOOD"
	StatusFair = "FAIR"
	StatusFail = "FAIL"
)

// Weekly score thresholds.
const (
	goodThreshold = 70
	fairThreshold = 45
)

// KPIReport is the weekly data-quality snapshot for one rep. The score is
// the percentage of achievable meeting points: a clean meeting is worth 1,
// a meeting with a weak contact 0.5, a meeting without an outcome 0.
type KPIReport struct {
	RepName         string           `json:"repName"`
	Month           string           `json:"month"`
	Week            string           `json:"week"`
	TotalMeetings   int              `json:"totalMeetings"`
	Score           int              `json:"score"`
	Status          string           `json:"status"`
	Counts          KPICounts        `json:"counts"`
	WeeklyFindings  []string         `json:"weeklyFindings"`
	MeetingFindings []MeetingFinding `json:"meetingFindings"`
}

type KPICounts struct {
	MissingOutcomeCount int `json:"missingOutcomeCount"`
	MissingContactCount int `json:"missingContactCount"`
	RoleOnlyCount       int `json:"roleOnlyCount"`
}

// MeetingFinding flags one defective meeting row.
type MeetingFinding struct {
	MeetingID    int64  `json:"meetingId"`
	CustomerName string `json:"customerName"`
	Issue        string `json:"issue"`
	Severity     string `json:"severity"`
}

// roleWords are job-title tokens. A contact made up entirely of these is a
// role without a person behind it, which counts as a weak contact.
var roleWords = map[string]struct{}{
	"ceo": {}, "cto": {}, "cfo": {}, "cio": {}, "coo": {},
	"vp": {}, "svp": {}, "evp": {}, "president": {}, "chief": {},
	"manager": {}, "director": {}, "head": {}, "lead": {}, "owner": {},
	"engineer": {}, "architect": {}, "analyst": {}, "officer": {},
	"procurement": {}, "purchasing": {}, "it": {}, "sales": {},
	"marketing": {}, "finance": {}, "operations": {}, "technical": {},
	"senior": {}, "junior": {}, "assistant": {}, "deputy": {},
	"of": {}, "the": {}, "and": {}, "&": {}, "-": {},
}

// IsRoleOnlyContact reports whether the contact string names a role rather
// than a person, e.g. "IT Manager" or "Head of Procurement".
func IsRoleOnlyContact(contact string) bool {
	fields := strings.Fields(strings.ToLower(contact))
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		f = strings.Trim(f, ".,()")
		if f == "" {
			continue
		}
		if _, ok := roleWords[f]; !ok {
			return false
		}
	}
	return true
}

// scoreMeeting returns the points for one meeting and the finding, if any.
// A missing outcome fails the meeting outright; a missing or role-only
// contact halves it.
func scoreMeeting(m *Meeting) (points float64, finding *MeetingFinding) {
	if strings.TrimSpace(m.MeetingOutcome) == "" {
		return 0, &MeetingFinding{
			MeetingID:    m.ID,
			CustomerName: m.CustomerName,
			Issue:        "meeting outcome is missing",
			Severity:     StatusFail,
		}
	}

	contact := strings.TrimSpace(m.PrimaryContact)
	if contact == "" {
		return 0.5, &MeetingFinding{
			MeetingID:    m.ID,
			CustomerName: m.CustomerName,
			Issue:        "primary contact is missing",
			Severity:     StatusFair,
		}
	}
	if IsRoleOnlyContact(contact) {
		return 0.5, &MeetingFinding{
			MeetingID:    m.ID,
			CustomerName: m.CustomerName,
			Issue:        fmt.Sprintf("primary contact %q is a role, not a person", contact),
			Severity:     StatusFair,
		}
	}

	return 1, nil
}

// BuildKPIReport scores a rep's meetings for one week.
func BuildKPIReport(repName, month, week string, meetings []*Meeting) KPIReport {
	report := KPIReport{
		RepName:         repName,
		Month:           month,
		Week:            week,
		TotalMeetings:   len(meetings),
		WeeklyFindings:  []string{},
		MeetingFindings: []MeetingFinding{},
	}

	if len(meetings) == 0 {
		report.Status = StatusFail
		report.WeeklyFindings = append(report.WeeklyFindings, "no meetings uploaded for this week")
		return report
	}

	var sum float64
	for _, m := range meetings {
		points, finding := scoreMeeting(m)
		sum += points
		if finding == nil {
			continue
		}
		report.MeetingFindings = append(report.MeetingFindings, *finding)
		switch {
		case finding.Severity == StatusFail:
			report.Counts.MissingOutcomeCount++
		case strings.Contains(finding.Issue, "missing"):
			report.Counts.MissingContactCount++
		default:
			report.Counts.RoleOnlyCount++
		}
	}

	report.Score = int(math.Round(100 * sum / float64(len(meetings))))
	switch {
	case report.Score >= goodThreshold:
		report.Status = StatusGood
	case report.Score >= fairThreshold:
		report.Status = StatusFair
	default:
		report.Status = StatusFail
	}

	if n := report.Counts.MissingOutcomeCount; n > 0 {
		report.WeeklyFindings = append(report.WeeklyFindings, fmt.Sprintf("%d meeting(s) missing an outcome", n))
	}
	if n := report.Counts.MissingContactCount; n > 0 {
		report.WeeklyFindings = append(report.WeeklyFindings, fmt.Sprintf("%d meeting(s) missing a primary contact", n))
	}
	if n := report.Counts.RoleOnlyCount; n > 0 {
		report.WeeklyFindings = append(report.WeeklyFindings, fmt.Sprintf("%d meeting(s) with a role-only contact", n))
	}

	return report
}
