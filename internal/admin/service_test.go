package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	internal "github.com/salesopshq/salesops/internal"
	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/transport"
)

func TestAdmin(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Admin Module Suite")
}

type mockAdminRepository struct {
	admins  map[int64]*Admin
	invites map[int64]*Invite
	nextID  int64
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{
		admins:  make(map[int64]*Admin),
		invites: make(map[int64]*Invite),
		nextID:  1,
	}
}

func (m *mockAdminRepository) GetByID(ctx context.Context, id int64) (*Admin, error) {
	return m.admins[id], nil
}

func (m *mockAdminRepository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAdminRepository) Create(ctx context.Context, admin *Admin) error {
	admin.ID = m.nextID
	m.nextID++
	m.admins[admin.ID] = admin
	return nil
}

func (m *mockAdminRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

func (m *mockAdminRepository) List(ctx context.Context, limit, offset int) ([]*Admin, error) {
	var out []*Admin
	for _, a := range m.admins {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAdminRepository) CreateInvite(ctx context.Context, invite *Invite) error {
	invite.ID = m.nextID
	m.nextID++
	m.invites[invite.ID] = invite
	return nil
}

func (m *mockAdminRepository) GetInviteByToken(ctx context.Context, token string) (*Invite, error) {
	for _, i := range m.invites {
		if i.Token == token {
			return i, nil
		}
	}
	return nil, nil
}

func (m *mockAdminRepository) GetPendingInviteByEmail(ctx context.Context, email string) (*Invite, error) {
	var latest *Invite
	for _, i := range m.invites {
		if i.Email == email && !i.Accepted() {
			if latest == nil || i.ID > latest.ID {
				latest = i
			}
		}
	}
	return latest, nil
}

func (m *mockAdminRepository) MarkInviteAccepted(ctx context.Context, id int64) error {
	if invite, ok := m.invites[id]; ok {
		now := time.Now()
		invite.AcceptedAt = &now
	}
	return nil
}

type recordedAudit struct {
	actions []string
}

func (r *recordedAudit) Record(ctx context.Context, actor auth.Actor, action, entity string, entityID int64, description string) {
	r.actions = append(r.actions, action)
}

var _ = ginkgo.Describe("Admin Service", func() {
	var (
		ctx     context.Context
		repo    *mockAdminRepository
		audit   *recordedAudit
		service *Service
		inviter auth.Actor
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		repo = newMockAdminRepository()
		audit = &recordedAudit{}
		service = NewService(repo, audit, bcrypt.MinCost, 72*time.Hour)
		inviter = auth.Actor{Type: auth.ActorTypeAdmin, ID: 1, Email: "root@salesops.local", AdminRole: auth.RoleSuperAdmin}
	})

	ginkgo.Describe("Invite", func() {
		ginkgo.It("should mint a pending invite with a token and expiry", func() {
			invite, err := service.Invite(ctx, inviter, InviteDTO{Email: "New.Admin@Example.com", Role: auth.RoleAdmin})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(invite.Email).To(gomega.Equal("new.admin@example.com"))
			gomega.Expect(invite.Token).ToNot(gomega.BeEmpty())
			gomega.Expect(invite.ExpiresAt).To(gomega.BeTemporally(">", time.Now().Add(71*time.Hour)))
			gomega.Expect(audit.actions).To(gomega.ContainElement("INVITE"))
		})

		ginkgo.It("should default the role to ADMIN", func() {
			invite, err := service.Invite(ctx, inviter, InviteDTO{Email: "new@example.com"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(invite.Role).To(gomega.Equal(auth.RoleAdmin))
		})

		ginkgo.It("should conflict when the email already belongs to an admin", func() {
			gomega.Expect(repo.Create(ctx, &Admin{Email: "taken@example.com", Role: auth.RoleAdmin, Status: StatusActive})).To(gomega.Succeed())

			_, err := service.Invite(ctx, inviter, InviteDTO{Email: "taken@example.com"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrEmailTaken))
		})

		ginkgo.It("should conflict while an unexpired invite is pending", func() {
			_, err := service.Invite(ctx, inviter, InviteDTO{Email: "new@example.com"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.Invite(ctx, inviter, InviteDTO{Email: "new@example.com"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInviteConflict))
		})

		ginkgo.It("should allow a fresh invite once the pending one expired", func() {
			first, err := service.Invite(ctx, inviter, InviteDTO{Email: "new@example.com"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			first.ExpiresAt = time.Now().Add(-time.Minute)

			second, err := service.Invite(ctx, inviter, InviteDTO{Email: "new@example.com"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second.Token).ToNot(gomega.Equal(first.Token))
		})
	})

	ginkgo.Describe("AcceptInvite", func() {
		var invite *Invite

		ginkgo.BeforeEach(func() {
			var err error
			invite, err = service.Invite(ctx, inviter, InviteDTO{Email: "new@example.com", Role: auth.RoleSuperAdmin})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should create an active admin with the invited role", func() {
			admin, err := service.AcceptInvite(ctx, AcceptInviteDTO{Token: invite.Token, Password: "long_enough_password"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(admin.Email).To(gomega.Equal("new@example.com"))
			gomega.Expect(admin.Role).To(gomega.Equal(auth.RoleSuperAdmin))
			gomega.Expect(admin.Status).To(gomega.Equal(StatusActive))
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("long_enough_password"))).To(gomega.Succeed())
			gomega.Expect(audit.actions).To(gomega.ContainElement("ACCEPT_INVITE"))
		})

		ginkgo.It("should burn the token on success", func() {
			_, err := service.AcceptInvite(ctx, AcceptInviteDTO{Token: invite.Token, Password: "long_enough_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.AcceptInvite(ctx, AcceptInviteDTO{Token: invite.Token, Password: "another_password"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInviteExpired))
		})

		ginkgo.It("should reject an expired invite", func() {
			invite.ExpiresAt = time.Now().Add(-time.Minute)

			_, err := service.AcceptInvite(ctx, AcceptInviteDTO{Token: invite.Token, Password: "long_enough_password"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInviteExpired))
		})

		ginkgo.It("should reject an unknown token", func() {
			_, err := service.AcceptInvite(ctx, AcceptInviteDTO{Token: strings.Repeat("f", 64), Password: "long_enough_password"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInviteExpired))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("should report the total alongside the page", func() {
			for _, email := range []string{"a@example.com", "b@example.com"} {
				gomega.Expect(repo.Create(ctx, &Admin{Email: email, Role: auth.RoleAdmin, Status: StatusActive})).To(gomega.Succeed())
			}

			admins, total, page, err := service.List(ctx, transport.Pagination{Page: 1, Limit: 15})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(admins).To(gomega.HaveLen(2))
			gomega.Expect(total).To(gomega.Equal(int64(2)))
			gomega.Expect(page.Page).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("should surface a not-found error", func() {
			_, err := service.GetByID(ctx, 999)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrAdminNotFound))
		})
	})
})
