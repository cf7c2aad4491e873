package main

import (
	"log"

	"github.com/hassan-nahid/digital-wallet-backend/internal/config"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	config.LoadEnv()

	adminEmail := config.MustEnv("ADMIN_EMAIL")
	adminPassword := config.MustEnv("ADMIN_PASSWORD")
	adminPhone := config.MustEnv("ADMIN_PHONE")

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err != nil {
				log.Printf("⚠️ Failed to get SQL DB instance: %v", err)
			} else if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	var existingAdmin models.User
	result := repositories.DB.Where("email = ?", adminEmail).First(&existingAdmin)
	if result.Error == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	adminUser := models.User{
		Name:     config.GetEnv("ADMIN_NAME", "System Admin"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Phone:    adminPhone,
		Address:  config.GetEnv("ADMIN_ADDRESS", "Head Office"),
		NID:      int64(config.GetIntEnv("ADMIN_NID", 1)),
		Role:     models.RoleAdmin,
		IsActive: models.StatusActive,
	}

	// The admin holds a wallet like everyone else; fee revenue and withdrawn
	// treasury funds settle into it.
	err = repositories.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&adminUser).Error; err != nil {
			return err
		}
		wallet := models.Wallet{
			UserID:   adminUser.ID,
			Balance:  models.DefaultOpeningBalance,
			Currency: models.DefaultCurrency,
		}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Println("✅ Admin account created successfully!")
}
