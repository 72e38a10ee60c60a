package meeting

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
	"github.com/salesopshq/salesops/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service

	maxUploadBytes int64
	maxUploadRows  int
}

func NewHandler(svc *Service, maxUploadMB int64, maxUploadRows int) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        svc,
		maxUploadBytes: maxUploadMB << 20,
		maxUploadRows:  maxUploadRows,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := transport.ParsePagination(r)
	q := r.URL.Query()
	filter := ListFilter{
		RepName: q.Get("repName"),
		Month:   q.Get("month"),
		Week:    q.Get("week"),
	}
	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		filter.Year = year
	}

	meetings, total, page, err := h.Service.List(r.Context(), filter, page)
	if err != nil {
		h.Logger.Error("failed to list meetings", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewPaginatedResponse(page, total, meetings))
}

// Upload ingests a CSV of meetings for one rep and week.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid or oversized upload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	q := r.URL.Query()
	result, err := h.Service.ImportCSV(r.Context(), *actor, file, q.Get("repName"), q.Get("month"), q.Get("week"), h.maxUploadRows)
	if err != nil {
		h.Logger.Error("meeting import failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

// KPI serves the weekly data-quality snapshot for one rep.
func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	repName := chi.URLParam(r, "repName")
	q := r.URL.Query()

	report, err := h.Service.KPI(r.Context(), repName, q.Get("month"), q.Get("week"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
