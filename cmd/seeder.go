package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/settings"
	settingsPostgres "github.com/frahmantamala/timesheet-management/internal/settings/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		employeeEmail := "fadhil@mail.com"
		employeeName := "Fadhil"
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", employeeEmail).Row()
		employeeExists := false
		if err := row.Scan(&exists); err == nil {
			fmt.Println("employee user already exists; will ensure permissions")
			employeeExists = true
		}

		if !employeeExists {
			if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", employeeEmail, employeeName, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert employee user: %v", err)
			}
			fmt.Println("Seeded employee user:", employeeEmail)
		}

		adminEmail := "padil@mail.com"
		adminName := "Padil Admin"
		row = db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		adminExists := false
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists; will ensure permissions")
			adminExists = true
		}

		if !adminExists {
			if err := db.Exec("INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", adminEmail, adminName, string(hash)).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("Seeded admin user:", adminEmail)
		}

		permissions := []struct {
			Name string
			Desc string
		}{
			{"admin", "full administrator"},
			{"approve_timesheets", "Can approve submitted timesheets"},
			{"reject_timesheets", "Can reject submitted timesheets"},
			{"manage_settings", "Can edit the timesheet policy"},
			{"view_reports", "Can view pay period summaries"},
		}

		for _, p := range permissions {
			var pid int64
			row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())", p.Name, p.Desc).Error; err != nil {
					log.Fatalf("failed to insert permission %s: %v", p.Name, err)
				}
			}
		}

		var adminUserID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", adminEmail).Row().Scan(&adminUserID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}

		for _, p := range permissions {
			var pid int64
			if err := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
				log.Fatalf("permission not found after insert %s: %v", p.Name, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM user_permissions WHERE user_id = ? AND permission_id = ?", adminUserID, pid).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, granted_by, created_at) VALUES (?, ?, NULL, now())", adminUserID, pid).Error; err != nil {
				log.Fatalf("failed to grant permission %s to admin user: %v", p.Name, err)
			}
		}

		fmt.Println("Granted all permissions to admin user:", adminEmail)

		seedDefaultPolicy(db, cfg)
	},
}

// seedDefaultPolicy inserts the policy row from static configuration if no
// row exists yet. After this the database copy is authoritative.
func seedDefaultPolicy(db *gorm.DB, cfg *internal.Config) {
	policy, err := settings.PolicyFromConfig(cfg.Timesheet)
	if err != nil {
		log.Fatalf("invalid timesheet config: %v", err)
	}

	var exists int
	if err := db.Raw("SELECT 1 FROM timesheet_settings LIMIT 1").Row().Scan(&exists); err == nil {
		fmt.Println("timesheet policy already seeded")
		return
	}

	repo := settingsPostgres.NewSettingsRepository(db)
	if err := repo.Save(context.Background(), policy); err != nil {
		log.Fatalf("failed to seed timesheet policy: %v", err)
	}

	fmt.Println("Seeded default timesheet policy")
}
