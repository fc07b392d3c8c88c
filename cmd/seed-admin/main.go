// seed-admin creates or updates the bootstrap owner account (username: warungkuAdmin)
// together with a first warung, so a fresh deployment is immediately usable.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
	"gorm.io/gorm"
)

const (
	adminUsername = "warungkuAdmin"
	adminPassword = "W@rungkuAdmin1"
	adminName     = "WarungKu Admin"
	adminEmail    = "admin@warungku.local"
	warungName    = "Warung Utama"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	now := time.Now()

	var user models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		user = models.User{
			Username:        adminUsername,
			Name:            adminName,
			Email:           adminEmail,
			Password:        string(hashed),
			IsActive:        utils.NewTrue(),
			EmailVerifiedAt: &now,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q\n", adminUsername)
	} else {
		if err := db.WithContext(ctx).Model(&user).Updates(map[string]any{
			"password":          string(hashed),
			"name":              adminName,
			"is_active":         utils.NewTrue(),
			"email_verified_at": &now,
		}).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated admin user: username=%q\n", adminUsername)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Warung{}).Where("owner_id = ?", user.ID).Count(&count).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to count warungs: %v\n", err)
		os.Exit(1)
	}
	if count > 0 {
		fmt.Println("Admin already owns a warung; skipping seed warung")
		return
	}

	warung := models.Warung{
		OwnerId:  user.ID,
		Name:     warungName,
		Timezone: utils.DefaultTimezone,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&warung).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to create seed warung: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created warung %q (id=%d) for admin\n", warungName, warung.ID)
}
