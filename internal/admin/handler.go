package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/salesopshq/salesops/internal/auth"
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

	admins, total, page, err := h.Service.List(r.Context(), page)
	if err != nil {
		h.Logger.Error("failed to list admins", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewPaginatedResponse(page, total, admins))
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto InviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	invite, err := h.Service.Invite(r.Context(), *actor, dto)
	if err != nil {
		h.Logger.Error("failed to create admin invite", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, InviteResponse{
		Email:     invite.Email,
		Role:      invite.Role,
		Token:     invite.Token,
		ExpiresAt: invite.ExpiresAt.Format(time.RFC3339),
	})
}

// AcceptInvite is a public endpoint: the invitee has no session yet.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var dto AcceptInviteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	admin, err := h.Service.AcceptInvite(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, admin)
}
