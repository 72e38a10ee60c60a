package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/salesopshq/salesops/internal/transport"
	"github.com/salesopshq/salesops/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := transport.ParsePagination(r)
	filter := ListFilter{
		ActorType: r.URL.Query().Get("actorType"),
		Action:    r.URL.Query().Get("action"),
		Entity:    r.URL.Query().Get("entity"),
	}

	logs, total, page, err := h.Service.List(r.Context(), filter, page)
	if err != nil {
		h.Logger.Error("failed to list audit logs", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewPaginatedResponse(page, total, ToViewSlice(logs)))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid audit log id")
		return
	}

	entry, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry.ToView())
}
