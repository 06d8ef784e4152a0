package permissions

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pharmagdd/catalog/internal/models"
)

// Sync persists the registered permission catalog to the database with an
// idempotent upsert keyed by code.
func Sync(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("permission: db is required")
	}
	ctx = ensureContext(ctx)

	defs := GetAll()
	if len(defs) == 0 {
		return nil
	}

	tx := db.WithContext(ctx)
	for _, code := range Codes() {
		def := defs[code]
		record := models.Permission{
			Code:   def.Code,
			Name:   def.Name,
			Module: def.Module,
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "module"}),
		}).Create(&record).Error; err != nil {
			return fmt.Errorf("permission: sync %s: %w", def.Code, err)
		}
	}

	return nil
}
