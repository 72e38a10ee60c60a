package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/salesopshq/salesops/internal/admin"
	"github.com/salesopshq/salesops/internal/audit"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/calendar"
	"github.com/salesopshq/salesops/internal/customer"
	"github.com/salesopshq/salesops/internal/meeting"
	"github.com/salesopshq/salesops/internal/pipeline"
	"github.com/salesopshq/salesops/internal/transport/middleware"
	"github.com/salesopshq/salesops/internal/transport/swagger"
	"github.com/salesopshq/salesops/internal/user"
)

// Handlers bundles every route handler the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Admin    *admin.Handler
	Customer *customer.Handler
	Pipeline *pipeline.Handler
	Meeting  *meeting.Handler
	Calendar *calendar.Handler
	Audit    *audit.Handler
}

// RegisterAllRoutes wires the full route tree: public auth and invite
// endpoints, the authenticated group behind the session middleware, and the
// admin group behind the role guard.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redis Pinger, h Handlers, guard *auth.RoleGuard, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redis)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestMeta)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			// Logout stays outside the session middleware so a token whose
			// session is already gone still gets its idempotent 204.
			sr.Post("/logout", h.Auth.Logout)
			sr.Post("/request-password-reset", h.Auth.RequestPasswordReset)
			sr.Post("/reset-password", h.Auth.ResetPassword)
		})

		r.Post("/admins/accept-invite", h.Admin.AcceptInvite)

		// Authenticated routes
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.List)
				ur.Get("/{id}", h.User.Get)

				ur.Group(func(ar chi.Router) {
					ar.Use(guard.RequireAdmin())
					ar.Post("/", h.User.Create)
					ar.Patch("/{id}", h.User.Update)
					ar.Delete("/{id}", h.User.Deactivate)
				})
			})

			pr.Route("/customers", func(cr chi.Router) {
				cr.Get("/", h.Customer.List)
				cr.Post("/", h.Customer.Create)
				cr.Get("/{id}", h.Customer.Get)
				cr.Patch("/{id}", h.Customer.Update)
				cr.Post("/{id}/contacts", h.Customer.AddContacts)
				cr.Patch("/{id}/contacts/{contactId}", h.Customer.UpdateContact)
			})

			pr.Route("/pipeline", func(plr chi.Router) {
				plr.Get("/", h.Pipeline.List)
				plr.Get("/stages", h.Pipeline.Stages)
				plr.Post("/deals", h.Pipeline.CreateDeal)
				plr.Get("/deals/{id}", h.Pipeline.GetDeal)
				plr.Patch("/deals/{id}", h.Pipeline.UpdateDeal)
			})

			pr.Post("/upload/deals", h.Pipeline.Upload)
			pr.Post("/upload/meetings", h.Meeting.Upload)

			pr.Get("/meetings", h.Meeting.List)
			pr.Get("/kpi/{repName}", h.Meeting.KPI)

			pr.Get("/calendar/months", h.Calendar.CalendarMonths)
			pr.Get("/calendar/weeks", h.Calendar.CalendarWeeks)
			pr.Get("/filters/months", h.Calendar.FilterMonths)
			pr.Get("/filters/weeks", h.Calendar.FilterWeeks)
			pr.Get("/filters/quarters", h.Calendar.FilterQuarters)

			// Admin-only routes
			pr.Group(func(ar chi.Router) {
				ar.Use(guard.RequireAdmin())
				ar.Get("/admins", h.Admin.List)
				ar.Get("/audit-logs", h.Audit.List)
				ar.Get("/audit-logs/{id}", h.Audit.Get)
			})

			pr.Group(func(sr chi.Router) {
				sr.Use(guard.RequireSuperAdmin())
				sr.Post("/admins/invite", h.Admin.Invite)
			})
		})
	})
}
