package customer

import (
	"encoding/json"
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
		Search: r.URL.Query().Get("search"),
	}

	items, total, page, err := h.Service.List(r.Context(), filter, page)
	if err != nil {
		h.Logger.Error("failed to list customers", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, transport.NewPaginatedResponse(page, total, items))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, customer)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.Service.Create(r.Context(), *actor, dto)
	if err != nil {
		h.Logger.Error("failed to create customer", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, customer)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var dto UpdateCustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.Service.UpdateName(r.Context(), *actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, customer)
}

func (h *Handler) AddContacts(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var dto AddContactsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := h.Service.AddContacts(r.Context(), *actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, customer)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	customerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	contactID, err := strconv.ParseInt(chi.URLParam(r, "contactId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var dto UpdateContactDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := transport.ValidateDTO(dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.Service.UpdateContact(r.Context(), *actor, customerID, contactID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, contact)
}
