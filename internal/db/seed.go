package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jarinsubahh/buet-exchange/internal/config"
	"github.com/jarinsubahh/buet-exchange/internal/db/models"
	"github.com/jarinsubahh/buet-exchange/internal/utils"
)

// SeedAdmin ensures the configured administrator account exists. Called on
// every startup; an existing account is left untouched.
func SeedAdmin(database *gorm.DB, cfg *config.Configuration, logger *zap.Logger) error {
	if cfg.Security.AdminPassword == "" {
		logger.Warn("No admin password configured, skipping admin seed")
		return nil
	}

	var existing models.User
	err := database.Where("email = ?", cfg.Security.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("admin lookup: %w", err)
	}

	hash, err := utils.EncryptPassword(cfg.Security.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Email:        cfg.Security.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.Security.AdminName,
		Role:         models.RoleAdmin,
		ActiveStatus: true,
	}
	if err := database.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("Seeded admin account", zap.String("email", cfg.Security.AdminEmail))
	return nil
}

// SeedListings populates an empty listings table with demo rows so the
// browse screen has content in a fresh environment.
func SeedListings(database *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := database.Model(&models.Listing{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Listings already present, skipping seed")
		return nil
	}

	price := func(v int) *int { return &v }
	now := time.Now()

	listings := []models.Listing{
		{
			ID:          uuid.New().String(),
			Title:       "Engineering Mathematics by Erwin Kreyszig",
			Description: "10th edition, excellent condition. Used for Level 1 math courses. Minimal highlighting.",
			Kind:        models.KindSell,
			Category:    models.CategoryBook,
			Department:  "CSE",
			Price:       price(500),
			Contact:     "+880 1712345678",
			OwnerName:   "Fahim Rahman",
			OwnerDept:   "CSE",
			Status:      models.StatusApproved,
			PostedAt:    now.Add(-24 * time.Hour),
		},
		{
			ID:          uuid.New().String(),
			Title:       "Digital Logic Design Lab Manual PDF",
			Description: "Complete lab manual with all experiments and solutions. Perfect for EEE and CSE students.",
			Kind:        models.KindFree,
			Category:    models.CategoryDocument,
			Department:  "EEE",
			ResourceURL: "https://example.com/digital-logic-manual.pdf",
			IsDocument:  true,
			Contact:     "fahim@eee.buet.ac.bd",
			OwnerName:   "Nadia Akter",
			OwnerDept:   "EEE",
			Status:      models.StatusApproved,
			PostedAt:    now.Add(-48 * time.Hour),
		},
		{
			ID:          uuid.New().String(),
			Title:       "Breadboard and Arduino Kit",
			Description: "Complete Arduino starter kit with breadboard, jumper wires, LEDs, resistors, and sensors.",
			Kind:        models.KindSell,
			Category:    models.CategoryEquipment,
			Department:  "EEE",
			Price:       price(1500),
			Contact:     "+880 1898765432",
			OwnerName:   "Rakib Hassan",
			OwnerDept:   "EEE",
			Status:      models.StatusApproved,
			PostedAt:    now.Add(-72 * time.Hour),
		},
		{
			ID:          uuid.New().String(),
			Title:       "Mechanics of Materials Notes",
			Description: "Handwritten notes covering the entire syllabus. Clear diagrams and solved problems included.",
			Kind:        models.KindFree,
			Category:    models.CategoryNotes,
			Department:  "ME",
			Contact:     "student@me.buet.ac.bd",
			OwnerName:   "Tasnim Islam",
			OwnerDept:   "ME",
			Status:      models.StatusApproved,
			PostedAt:    now.Add(-96 * time.Hour),
		},
		{
			ID:          uuid.New().String(),
			Title:       "Fluid Mechanics Textbook",
			Description: "Frank M. White, 8th edition. Minor wear on cover but pages are clean.",
			Kind:        models.KindSell,
			Category:    models.CategoryBook,
			Department:  "CE",
			Price:       price(800),
			Contact:     "+880 1555555555",
			OwnerName:   "Sadia Khan",
			OwnerDept:   "CE",
			Status:      models.StatusPending,
			PostedAt:    now.Add(-120 * time.Hour),
		},
	}

	if err := database.Create(&listings).Error; err != nil {
		return fmt.Errorf("seed listings: %w", err)
	}

	logger.Info("Seeded demo listings", zap.Int("count", len(listings)))
	return nil
}
