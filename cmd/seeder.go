package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"audit_logs", "deal_presales", "deals", "meetings", "customer_contacts", "customers", "admin_invites", "password_resets", "users", "admins"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		admins := []struct {
			Email string
			Role  string
		}{
			{"root@salesops.local", "SUPER_ADMIN"},
			{"ops@salesops.local", "ADMIN"},
		}

		for _, a := range admins {
			var exists int
			if err := db.Raw("SELECT 1 FROM admins WHERE email = ?", a.Email).Row().Scan(&exists); err == nil {
				fmt.Println("admin already exists:", a.Email)
				continue
			}
			if err := db.Exec("INSERT INTO admins (email, role, status, password_hash, created_at, updated_at) VALUES (?, ?, 'ACTIVE', ?, now(), now())", a.Email, a.Role, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert admin %s: %v", a.Email, err)
			}
			fmt.Println("Seeded admin:", a.Email)
		}

		users := []struct {
			FirstName    string
			LastName     string
			Email        string
			Department   string
			YearlyTarget float64
		}{
			{"Ben", "Carter", "ben@salesops.local", "SALES", 1200000},
			{"Faith", "Okafor", "faith@salesops.local", "SALES", 1000000},
			{"John", "Mwangi", "john@salesops.local", "SALES", 900000},
			{"Sarah", "Lim", "sarah@salesops.local", "SALES", 1100000},
			{"Diego", "Ramos", "diego@salesops.local", "PRE_SALES", 0},
			{"Mei", "Tan", "mei@salesops.local", "PRE_SALES", 0},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Email)
				continue
			}
			if err := db.Exec("INSERT INTO users (first_name, last_name, email, department, yearly_target, status, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 'ACTIVE', ?, now(), now())",
				u.FirstName, u.LastName, u.Email, u.Department, u.YearlyTarget, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		fmt.Println("Seeding complete; default password is:", password)
	},
}
