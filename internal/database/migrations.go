package database

import (
	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Product{},
		&models.Session{},
		&models.AuditLog{},
	)
}
