package auth

import (
	"context"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock CredentialRepository backed by fixed fixtures
type mockCredentialRepository struct {
	admins      map[string]*AdminCredential
	users       map[string]*UserCredential
	resets      map[string]*PasswordReset
	returnError error
}

func newMockCredentialRepository() *mockCredentialRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockCredentialRepository{
		admins: map[string]*AdminCredential{
			"admin@example.com": {ID: 1, Email: "admin@example.com", Role: RoleAdmin, PasswordHash: string(hash)},
			"root@example.com":  {ID: 2, Email: "root@example.com", Role: RoleSuperAdmin, PasswordHash: string(hash)},
		},
		users: map[string]*UserCredential{
			"ben@example.com": {ID: 10, Email: "ben@example.com", FirstName: "Ben", LastName: "Carter", Department: "SALES", Status: "ACTIVE", PasswordHash: string(hash)},
			"ines@example.com": {ID: 11, Email: "ines@example.com", FirstName: "Ines", LastName: "Duarte", Department: "PRE_SALES", Status: "INACTIVE", PasswordHash: string(hash)},
		},
		resets: map[string]*PasswordReset{},
	}
}

func (m *mockCredentialRepository) GetAdminCredential(_ context.Context, email string) (*AdminCredential, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.admins[email], nil
}

func (m *mockCredentialRepository) GetUserCredential(_ context.Context, email string) (*UserCredential, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.users[email], nil
}

func (m *mockCredentialRepository) CreatePasswordReset(_ context.Context, reset *PasswordReset) error {
	reset.ID = int64(len(m.resets) + 1)
	m.resets[reset.Token] = reset
	return nil
}

func (m *mockCredentialRepository) GetPasswordReset(_ context.Context, token string) (*PasswordReset, error) {
	return m.resets[token], nil
}

func (m *mockCredentialRepository) ConsumePasswordReset(_ context.Context, id int64) error {
	now := time.Now()
	for _, reset := range m.resets {
		if reset.ID == id {
			reset.UsedAt = &now
		}
	}
	return nil
}

func (m *mockCredentialRepository) UpdateAdminPassword(_ context.Context, adminID int64, hash string) error {
	for _, a := range m.admins {
		if a.ID == adminID {
			a.PasswordHash = hash
		}
	}
	return nil
}

func (m *mockCredentialRepository) UpdateUserPassword(_ context.Context, userID int64, hash string) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = hash
		}
	}
	return nil
}

// In-memory SessionStore
type memorySessionStore struct {
	sessions map[string]*Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]*Session{}}
}

func (s *memorySessionStore) Save(_ context.Context, session *Session) error {
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *memorySessionStore) Load(_ context.Context, id string) (*Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *memorySessionStore) Clear(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, Actor, string, string, int64, string) {}

type recordingAudit struct {
	actions []string
	actors  []Actor
}

func (r *recordingAudit) Record(_ context.Context, actor Actor, action, _ string, _ int64, _ string) {
	r.actions = append(r.actions, action)
	r.actors = append(r.actors, actor)
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockCredentialRepository
		sessions *memorySessionStore
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockCredentialRepository()
		sessions = newMemorySessionStore()
		tokenGen = NewJWTTokenGenerator("test-access-secret-at-least-32-chars", 15*time.Minute)
		service = NewService(mockRepo, sessions, tokenGen, noopAudit{}, bcrypt.MinCost, time.Hour)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should persist the token and actor as one session record", func() {
				resp, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(sessions.sessions).To(gomega.HaveLen(1))

				claims, err := tokenGen.ValidateToken(resp.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				stored, err := sessions.Load(ctx, claims.RegisteredClaims.ID)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(stored.Token).To(gomega.Equal(resp.AccessToken))
				gomega.Expect(stored.Actor).To(gomega.Equal(resp.Actor))
			})

			ginkgo.It("should resolve an admin with role projections", func() {
				resp, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.Actor.Type).To(gomega.Equal(ActorTypeAdmin))
				gomega.Expect(resp.Actor.IsAdmin()).To(gomega.BeTrue())
				gomega.Expect(resp.Actor.IsSuperAdmin()).To(gomega.BeFalse())
				gomega.Expect(resp.Actor.Role()).To(gomega.Equal(RoleAdmin))
			})

			ginkgo.It("should resolve a staff user with the fixed role tag", func() {
				resp, err := service.Login(ctx, LoginDTO{Email: "ben@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(resp.Actor.Type).To(gomega.Equal(ActorTypeUser))
				gomega.Expect(resp.Actor.IsAdmin()).To(gomega.BeFalse())
				gomega.Expect(resp.Actor.Role()).To(gomega.Equal(StaffRole))
				gomega.Expect(resp.Actor.FirstName).To(gomega.Equal("Ben"))
				gomega.Expect(resp.Actor.Department).To(gomega.Equal("SALES"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error and save no session for unknown email", func() {
				resp, err := service.Login(ctx, LoginDTO{Email: "nobody@example.com", Password: "whatever"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(resp).To(gomega.BeNil())
				gomega.Expect(sessions.sessions).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for a wrong password", func() {
				resp, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "wrong_password"})

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(resp).To(gomega.BeNil())
				gomega.Expect(sessions.sessions).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject an inactive staff user", func() {
				_, err := service.Login(ctx, LoginDTO{Email: "ines@example.com", Password: "correct_password"})

				gomega.Expect(err).To(gomega.Equal(ErrActorInactive))
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty email", func() {
				_, err := service.Login(ctx, LoginDTO{Email: "", Password: "password"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
			})

			ginkgo.It("should enforce the email format tag", func() {
				_, err := service.Login(ctx, LoginDTO{Email: "not-an-email", Password: "password"})

				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email must be a valid email"))
			})

			ginkgo.It("should enforce the password length tag on reset", func() {
				err := service.ResetPassword(ctx, ResetPasswordDTO{Token: "some-token", Password: "short"})

				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password must be at least 8"))
			})
		})
	})

	ginkgo.Describe("ResolveSession", func() {
		ginkgo.It("should yield the identical actor saved at login", func() {
			resp, err := service.Login(ctx, LoginDTO{Email: "root@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			actor, sessionID, err := service.ResolveSession(ctx, resp.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sessionID).ToNot(gomega.BeEmpty())
			gomega.Expect(*actor).To(gomega.Equal(resp.Actor))
			gomega.Expect(actor.IsSuperAdmin()).To(gomega.BeTrue())
		})

		ginkgo.It("should treat a valid token with a cleared session as revoked", func() {
			resp, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateToken(resp.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(sessions.Clear(ctx, claims.RegisteredClaims.ID)).To(gomega.Succeed())

			_, _, err = service.ResolveSession(ctx, resp.AccessToken)
			gomega.Expect(err).To(gomega.Equal(ErrSessionRevoked))
		})

		ginkgo.It("should reject a garbage token", func() {
			_, _, err := service.ResolveSession(ctx, "not-a-jwt")
			gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should clear the session and stay a no-op on repeat", func() {
			resp, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateToken(resp.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(service.Logout(ctx, claims.RegisteredClaims.ID)).To(gomega.Succeed())
			gomega.Expect(sessions.sessions).To(gomega.BeEmpty())

			// second logout against the same, now-missing session
			gomega.Expect(service.Logout(ctx, claims.RegisteredClaims.ID)).To(gomega.Succeed())
		})

		ginkgo.It("should record the logout against the session's actor without one in the context", func() {
			recorder := &recordingAudit{}
			service = NewService(mockRepo, sessions, tokenGen, recorder, bcrypt.MinCost, time.Hour)

			resp, err := service.Login(ctx, LoginDTO{Email: "admin@example.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateToken(resp.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// plain background context, as on the unauthenticated logout route
			gomega.Expect(service.Logout(context.Background(), claims.RegisteredClaims.ID)).To(gomega.Succeed())

			gomega.Expect(recorder.actions).To(gomega.Equal([]string{"LOGIN", "LOGOUT"}))
			gomega.Expect(recorder.actors[1].Email).To(gomega.Equal("admin@example.com"))

			// a repeat finds no session and leaves no second entry
			gomega.Expect(service.Logout(context.Background(), claims.RegisteredClaims.ID)).To(gomega.Succeed())
			gomega.Expect(recorder.actions).To(gomega.HaveLen(2))
		})
	})

	ginkgo.Describe("Password reset", func() {
		ginkgo.It("should not reveal whether an email exists", func() {
			token, err := service.RequestPasswordReset(ctx, RequestPasswordResetDTO{Email: "nobody@example.com"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).To(gomega.BeEmpty())
		})

		ginkgo.It("should rotate the password once and burn the token", func() {
			token, err := service.RequestPasswordReset(ctx, RequestPasswordResetDTO{Email: "ben@example.com"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			err = service.ResetPassword(ctx, ResetPasswordDTO{Token: token, Password: "new_password_123"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Login(ctx, LoginDTO{Email: "ben@example.com", Password: "new_password_123"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// token is single-use
			err = service.ResetPassword(ctx, ResetPasswordDTO{Token: token, Password: "another_password"})
			gomega.Expect(err).To(gomega.Equal(ErrResetInvalid))
		})

		ginkgo.It("should reject an expired token", func() {
			token, err := service.RequestPasswordReset(ctx, RequestPasswordResetDTO{Email: "ben@example.com"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			mockRepo.resets[token].ExpiresAt = time.Now().Add(-time.Minute)

			err = service.ResetPassword(ctx, ResetPasswordDTO{Token: token, Password: "new_password_123"})
			gomega.Expect(err).To(gomega.Equal(ErrResetInvalid))
		})
	})
})
