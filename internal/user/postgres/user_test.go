package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salesopshq/salesops/internal/user"
	userPostgres "github.com/salesopshq/salesops/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

// SQLiteUser is a SQLite-compatible model for testing
type SQLiteUser struct {
	ID           int64     `gorm:"primaryKey"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Department   string    `gorm:"not null"`
	YearlyTarget float64   `gorm:"column:yearly_target;default:0"`
	Status       string    `gorm:"default:'ACTIVE'"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		ctx  context.Context
		repo *userPostgres.Repository
	)

	newUser := func(first, last, email, department, status string) *user.User {
		return &user.User{
			FirstName:    first,
			LastName:     last,
			Email:        email,
			Department:   department,
			Status:       status,
			PasswordHash: "x",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{})
		Expect(err).NotTo(HaveOccurred())

		repo = userPostgres.NewRepository(db)
	})

	Describe("Create", func() {
		It("should create a user and assign an ID", func() {
			u := newUser("Ben", "Carter", "ben@example.com", user.DepartmentSales, user.StatusActive)
			err := repo.Create(ctx, u)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.CreatedAt).NotTo(BeZero())
		})

		It("should reject a duplicate email", func() {
			Expect(repo.Create(ctx, newUser("Ben", "Carter", "ben@example.com", user.DepartmentSales, user.StatusActive))).NotTo(HaveOccurred())

			err := repo.Create(ctx, newUser("Benny", "Carton", "ben@example.com", user.DepartmentSales, user.StatusActive))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetByID and GetByEmail", func() {
		BeforeEach(func() {
			Expect(repo.Create(ctx, newUser("Faith", "Okafor", "faith@example.com", user.DepartmentSales, user.StatusActive))).NotTo(HaveOccurred())
		})

		It("should retrieve a user by email", func() {
			found, err := repo.GetByEmail(ctx, "faith@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.FullName()).To(Equal("Faith Okafor"))
		})

		It("should return nil for an unknown email", func() {
			found, err := repo.GetByEmail(ctx, "nobody@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("should return nil for an unknown ID", func() {
			found, err := repo.GetByID(ctx, 999)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("Count and List", func() {
		BeforeEach(func() {
			seed := []*user.User{
				newUser("Ben", "Carter", "ben@example.com", user.DepartmentSales, user.StatusActive),
				newUser("Faith", "Okafor", "faith@example.com", user.DepartmentSales, user.StatusInactive),
				newUser("Diego", "Ramos", "diego@example.com", user.DepartmentPreSales, user.StatusActive),
				newUser("Mei", "Tan", "mei@example.com", user.DepartmentPreSales, user.StatusActive),
			}
			for _, u := range seed {
				Expect(repo.Create(ctx, u)).NotTo(HaveOccurred())
			}
		})

		It("should count everything without a filter", func() {
			total, err := repo.Count(ctx, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(4)))
		})

		It("should filter by department", func() {
			total, err := repo.Count(ctx, user.ListFilter{Department: user.DepartmentPreSales})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
		})

		It("should filter by status", func() {
			users, err := repo.List(ctx, user.ListFilter{Status: user.StatusInactive}, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal("faith@example.com"))
		})

		It("should combine both filters", func() {
			total, err := repo.Count(ctx, user.ListFilter{Department: user.DepartmentSales, Status: user.StatusActive})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})

		It("should order by first name then last name", func() {
			users, err := repo.List(ctx, user.ListFilter{}, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(4))
			Expect(users[0].FirstName).To(Equal("Ben"))
			Expect(users[1].FirstName).To(Equal("Diego"))
			Expect(users[2].FirstName).To(Equal("Faith"))
			Expect(users[3].FirstName).To(Equal("Mei"))
		})

		It("should honor limit and offset", func() {
			users, err := repo.List(ctx, user.ListFilter{}, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
			Expect(users[0].FirstName).To(Equal("Faith"))
		})
	})

	Describe("Update", func() {
		It("should persist field changes and bump updated_at", func() {
			u := newUser("Ben", "Carter", "ben@example.com", user.DepartmentSales, user.StatusActive)
			Expect(repo.Create(ctx, u)).NotTo(HaveOccurred())

			originalUpdatedAt := u.UpdatedAt
			time.Sleep(10 * time.Millisecond)

			u.Status = user.StatusInactive
			u.YearlyTarget = 900000
			Expect(repo.Update(ctx, u)).NotTo(HaveOccurred())

			found, err := repo.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(user.StatusInactive))
			Expect(found.YearlyTarget).To(Equal(900000.0))
			Expect(found.UpdatedAt).To(BeTemporally(">", originalUpdatedAt))
		})
	})
})
