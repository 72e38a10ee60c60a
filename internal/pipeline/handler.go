package pipeline

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

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

func parseListFilter(r *http.Request) ListFilter {
	q := r.URL.Query()
	filter := ListFilter{}

	if year, err := strconv.Atoi(q.Get("year")); err == nil {
		filter.Year = year
	}
	if quarter, err := strconv.Atoi(q.Get("quarter")); err == nil {
		filter.Quarter = quarter
	}
	if ownerID, err := strconv.ParseInt(q.Get("salesOwnerId"), 10, 64); err == nil {
		filter.SalesOwnerID = ownerID
	}
	if stageID, err := strconv.ParseInt(q.Get("stageId"), 10, 64); err == nil {
		filter.StageID = stageID
	}
	if raw := q.Get("preSalesOwnerIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				filter.PreSalesOwnerIDs = append(filter.PreSalesOwnerIDs, id)
			}
		}
	}

	return filter
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page := transport.ParsePagination(r)
	resp, err := h.Service.List(r.Context(), *actor, parseListFilter(r), page)
	if err != nil {
		h.Logger.Error("failed to list pipeline", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	stages, err := h.Service.Stages(r.Context())
	if err != nil {
		h.Logger.Error("failed to list deal stages", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": stages})
}

func (h *Handler) GetDeal(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid deal id")
		return
	}

	deal, err := h.Service.GetDeal(r.Context(), *actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, deal)
}

func (h *Handler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDealDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	deal, err := h.Service.CreateDeal(r.Context(), *actor, dto)
	if err != nil {
		h.Logger.Error("failed to create deal", "error", err, "deal_name", dto.DealName)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, deal)
}

func (h *Handler) UpdateDeal(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid deal id")
		return
	}

	var dto UpdateDealDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	deal, err := h.Service.UpdateDeal(r.Context(), *actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, deal)
}

// Upload ingests a CSV of deals. The file rides in the "file" multipart
// field; year and salesOwnerId come from query parameters.
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

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	salesOwnerID, _ := strconv.ParseInt(r.URL.Query().Get("salesOwnerId"), 10, 64)

	result, err := h.Service.ImportCSV(r.Context(), *actor, file, year, salesOwnerID, h.maxUploadRows)
	if err != nil {
		h.Logger.Error("deal import failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}
