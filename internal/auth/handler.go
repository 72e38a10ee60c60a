package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err, "email", dto.Email)

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		case ErrActorInactive:
			h.WriteError(w, http.StatusUnauthorized, "account is inactive")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// Logout clears the session behind the presented token. Repeated calls are
// fine: clearing a session that is already gone is a no-op, so the client
// can always converge on a logged-out state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	claims, err := h.Service.tokenGenerator.ValidateToken(token)
	if err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := h.Service.Logout(r.Context(), claims.RegisteredClaims.ID); err != nil {
		h.Logger.Error("logout failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the actor resolved by the auth middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"actor": actor,
		"role":  actor.Role(),
	})
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var dto RequestPasswordResetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.Service.RequestPasswordReset(r.Context(), dto); err != nil {
		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("password reset request failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Accepted regardless of whether the email matched an account.
	h.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ResetPassword(r.Context(), dto); err != nil {
		switch err {
		case ErrResetInvalid:
			h.WriteError(w, http.StatusBadRequest, "reset token is invalid or expired")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.Logger.Error("password reset failed", "error", err)
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware is the authenticated-route guard: it validates the bearer
// token, loads the session, and injects the actor into the context. A token
// whose session record is gone is treated the same as an invalid token.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		actor, sessionID, err := h.Service.ResolveSession(r.Context(), token)
		if err != nil {
			switch err {
			case ErrTokenExpired:
				h.WriteError(w, http.StatusUnauthorized, "token expired")
			case ErrSessionRevoked:
				h.WriteError(w, http.StatusUnauthorized, "session revoked")
			default:
				h.WriteError(w, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		ctx := ContextWithActor(r.Context(), actor)
		ctx = ContextWithSessionID(ctx, sessionID)
		ctx = logger.With(ctx, "actor_type", string(actor.Type), "actor_id", actor.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
