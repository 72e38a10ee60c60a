package calendar

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/salesopshq/salesops/internal/transport"
	"github.com/salesopshq/salesops/pkg/logger"
)

// MeetingPeriods reports which reporting periods actually hold uploaded
// meetings; the /filters endpoints only offer periods with data.
type MeetingPeriods interface {
	Months(ctx context.Context) ([]string, error)
	Weeks(ctx context.Context, month string) ([]string, error)
}

// DealPeriods reports the quarters that hold deals.
type DealPeriods interface {
	Quarters(ctx context.Context, year int) ([]int, error)
}

type Handler struct {
	*transport.BaseHandler
	meetings MeetingPeriods
	deals    DealPeriods
}

func NewHandler(meetings MeetingPeriods, deals DealPeriods) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		meetings:    meetings,
		deals:       deals,
	}
}

// CalendarMonths lists all twelve months, regardless of data.
func (h *Handler) CalendarMonths(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": Months()})
}

// CalendarWeeks lists the week labels of one month.
func (h *Handler) CalendarWeeks(w http.ResponseWriter, r *http.Request) {
	monthName := r.URL.Query().Get("month")
	if monthName == "" {
		h.WriteError(w, http.StatusBadRequest, "month is required")
		return
	}

	month, err := MonthByName(monthName)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	year := time.Now().Year()
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		year = y
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": WeeksOf(month, year)})
}

// FilterMonths lists only months that have uploaded meetings.
func (h *Handler) FilterMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.meetings.Months(r.Context())
	if err != nil {
		h.Logger.Error("failed to list filter months", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	if months == nil {
		months = []string{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": months})
}

// FilterWeeks lists only weeks that have uploaded meetings.
func (h *Handler) FilterWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.meetings.Weeks(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		h.Logger.Error("failed to list filter weeks", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	if weeks == nil {
		weeks = []string{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": weeks})
}

// FilterQuarters lists only quarters that hold deals, labelled Q1..Q4.
func (h *Handler) FilterQuarters(w http.ResponseWriter, r *http.Request) {
	year := 0
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		year = y
	}

	quarters, err := h.deals.Quarters(r.Context(), year)
	if err != nil {
		h.Logger.Error("failed to list filter quarters", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	labels := make([]string, 0, len(quarters))
	for _, q := range quarters {
		if q >= 1 && q <= 4 {
			labels = append(labels, "Q"+strconv.Itoa(q))
		}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": labels})
}
