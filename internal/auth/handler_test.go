package auth

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

// countingSessionStore records every store touch so the guard tests can
// assert the session was left alone.
type countingSessionStore struct {
	*memorySessionStore
	saves  int
	loads  int
	clears int
}

func (s *countingSessionStore) Save(ctx context.Context, session *Session) error {
	s.saves++
	return s.memorySessionStore.Save(ctx, session)
}

func (s *countingSessionStore) Load(ctx context.Context, id string) (*Session, error) {
	s.loads++
	return s.memorySessionStore.Load(ctx, id)
}

func (s *countingSessionStore) Clear(ctx context.Context, id string) error {
	s.clears++
	return s.memorySessionStore.Clear(ctx, id)
}

var _ = ginkgo.Describe("Auth HTTP surface", func() {
	var (
		handler  *Handler
		service  *Service
		sessions *countingSessionStore
		tokenGen *JWTTokenGenerator
	)

	login := func(email string) string {
		resp, err := service.Login(context.Background(), LoginDTO{Email: email, Password: "correct_password"})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return resp.AccessToken
	}

	ginkgo.BeforeEach(func() {
		sessions = &countingSessionStore{memorySessionStore: newMemorySessionStore()}
		tokenGen = NewJWTTokenGenerator("test-access-secret-at-least-32-chars", 15*time.Minute)
		service = NewService(newMockCredentialRepository(), sessions, tokenGen, noopAudit{}, bcrypt.MinCost, time.Hour)
		handler = NewHandler(service)
	})

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("should return 401 without a token and never run the handler", func() {
			handlerRan := false
			protected := handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerRan = true
			}))

			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(handlerRan).To(gomega.BeFalse())
		})

		ginkgo.It("should inject the actor for a valid session", func() {
			token := login("admin@example.com")

			var seen *Actor
			protected := handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = ActorFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen).ToNot(gomega.BeNil())
			gomega.Expect(seen.Email).To(gomega.Equal("admin@example.com"))
		})

		ginkgo.It("should return 401 for a valid token whose session was cleared", func() {
			token := login("admin@example.com")

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sessions.Clear(context.Background(), claims.RegisteredClaims.ID)).To(gomega.Succeed())

			handlerRan := false
			protected := handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerRan = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("session revoked"))
			gomega.Expect(handlerRan).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("RoleGuard", func() {
		var guard *RoleGuard

		ginkgo.BeforeEach(func() {
			guard = NewRoleGuard(slog.Default())
		})

		serveAs := func(actor *Actor, mw func(http.Handler) http.Handler) *httptest.ResponseRecorder {
			protected := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admins", nil)
			if actor != nil {
				req = req.WithContext(ContextWithActor(req.Context(), actor))
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			return rec
		}

		ginkgo.It("should return 403 for an ADMIN on a super-admin route and leave the session alone", func() {
			token := login("admin@example.com")
			actor, _, err := service.ResolveSession(context.Background(), token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			touchesBefore := sessions.loads + sessions.clears + sessions.saves
			rec := serveAs(actor, guard.RequireSuperAdmin())

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(sessions.loads + sessions.clears + sessions.saves).To(gomega.Equal(touchesBefore))

			// the session still resolves afterwards
			_, _, err = service.ResolveSession(context.Background(), token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should return 403 for a staff user on an admin route", func() {
			actor := &Actor{Type: ActorTypeUser, ID: 10, Email: "ben@example.com"}
			rec := serveAs(actor, guard.RequireAdmin())
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should return 401 with no actor in context", func() {
			rec := serveAs(nil, guard.RequireAdmin())
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should pass any authenticated actor with an empty allow-list", func() {
			actor := &Actor{Type: ActorTypeUser, ID: 10, Email: "ben@example.com"}
			rec := serveAs(actor, guard.RequireRoles())
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should pass a super admin on a super-admin route", func() {
			actor := &Actor{Type: ActorTypeAdmin, ID: 2, Email: "root@example.com", AdminRole: RoleSuperAdmin}
			rec := serveAs(actor, guard.RequireSuperAdmin())
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})
	})

	ginkgo.Describe("Logout endpoint", func() {
		ginkgo.It("should return 204 on repeated calls with the same token", func() {
			token := login("admin@example.com")

			doLogout := func() int {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", bytes.NewReader(nil))
				req.Header.Set("Authorization", "Bearer "+token)
				rec := httptest.NewRecorder()
				handler.Logout(rec, req)
				return rec.Code
			}

			gomega.Expect(doLogout()).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(sessions.sessions).To(gomega.BeEmpty())
			gomega.Expect(doLogout()).To(gomega.Equal(http.StatusNoContent))
		})

		ginkgo.It("should write a LOGOUT audit entry from the bearer token alone", func() {
			recorder := &recordingAudit{}
			service = NewService(newMockCredentialRepository(), sessions, tokenGen, recorder, bcrypt.MinCost, time.Hour)
			handler = NewHandler(service)

			token := login("admin@example.com")

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", bytes.NewReader(nil))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.Logout(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(recorder.actions).To(gomega.ContainElement("LOGOUT"))
		})
	})
})
