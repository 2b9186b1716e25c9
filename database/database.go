package database

import (
	"fmt"
	"log"
	"os"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/billing"
	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	// piece ids inside the jsonb columns are generated client-side, but the
	// extension also backs gen_random_uuid() defaults in raw SQL helpers
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("❌ Failed to enable pgcrypto extension:", err)
	}

	if err := DB.AutoMigrate(
		// identity
		&users.User{},
		&users.VerificationToken{},

		// tenant
		&agencies.Agency{},
		&invitations.Invitation{},

		// workload
		&projects.Project{},
		&notifications.Notification{},

		// finance
		&finance.Invoice{},
		&finance.Expense{},

		// billing
		&billing.Subscription{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
