package database

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/pkg/crypto"
)

// SeedData populates the permission catalog, default roles, admin accounts
// and the initial product catalog. Every step is an idempotent upsert keyed
// by the entity's unique code, email or SKU.
func SeedData(db *gorm.DB) error {
	if err := permissions.Sync(context.Background(), db); err != nil {
		return err
	}
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedAdmins(db); err != nil {
		return err
	}
	return seedProducts(db)
}

func seedRoles(db *gorm.DB) error {
	superAdmin := models.Role{
		Code:           "super_admin",
		Name:           envOr("SUPER_ADMIN_ROLE_NAME", "Administrateur"),
		Description:    "Super administrateur avec tous les droits",
		AllPermissions: true,
	}
	if err := upsertRole(db, superAdmin, permissions.Codes()); err != nil {
		return err
	}

	catalogRole := models.Role{
		Code:        "catalog",
		Name:        envOr("CATALOG_ROLE_NAME", "Catalogue"),
		Description: "Administrateur du catalogue",
	}
	return upsertRole(db, catalogRole, []string{
		"products.read", "products.create", "products.update", "products.delete",
	})
}

func upsertRole(db *gorm.DB, role models.Role, permissionCodes []string) error {
	var existing models.Role
	if err := db.Where(models.Role{Code: role.Code}).Attrs(role).FirstOrCreate(&existing).Error; err != nil {
		return fmt.Errorf("seed role %s: %w", role.Code, err)
	}

	var perms []models.Permission
	if err := db.Where("code IN ?", permissionCodes).Find(&perms).Error; err != nil {
		return fmt.Errorf("seed role %s: load permissions: %w", role.Code, err)
	}
	if len(perms) != len(permissionCodes) {
		return fmt.Errorf("seed role %s: expected %d permissions, found %d", role.Code, len(permissionCodes), len(perms))
	}

	if err := db.Model(&existing).Association("Permissions").Replace(perms); err != nil {
		return fmt.Errorf("seed role %s: grant permissions: %w", role.Code, err)
	}
	return nil
}

func seedAdmins(db *gorm.DB) error {
	admins := []struct {
		email    string
		name     string
		password string
		roleCode string
	}{
		{
			email:    envOr("ADMIN_EMAIL", "admin@pharma-gdd.com"),
			name:     envOr("ADMIN_NAME", "Admin Admin"),
			password: envOr("ADMIN_PASSWORD", "admin"),
			roleCode: "super_admin",
		},
		{
			email:    envOr("CATALOG_EMAIL", "catalog@pharma-gdd.com"),
			name:     envOr("CATALOG_NAME", "Admin Catalogue"),
			password: envOr("CATALOG_PASSWORD", "admin_cat"),
			roleCode: "catalog",
		},
	}

	for _, admin := range admins {
		var role models.Role
		if err := db.Where("code = ?", admin.roleCode).Take(&role).Error; err != nil {
			return fmt.Errorf("seed admin %s: load role: %w", admin.email, err)
		}

		hashed, err := crypto.HashPassword(admin.password)
		if err != nil {
			return fmt.Errorf("seed admin %s: hash password: %w", admin.email, err)
		}

		record := models.User{
			Name:     admin.name,
			Email:    admin.email,
			Password: hashed,
			IsAdmin:  true,
			RoleID:   &role.ID,
		}
		if err := db.Where(models.User{Email: admin.email}).Attrs(record).FirstOrCreate(&models.User{}).Error; err != nil {
			return fmt.Errorf("seed admin %s: %w", admin.email, err)
		}
	}
	return nil
}

func seedProducts(db *gorm.DB) error {
	products := []models.Product{
		{
			Name:        "Paracétamol 500mg",
			Description: "Antalgique et antipyrétique. Soulage la douleur et fait baisser la fièvre.",
			Price:       3.50,
			Image:       "https://picsum.photos/300/200?text=Paracétamol",
			Stock:       100,
			IsActive:    true,
			Category:    "Antalgiques",
			SKU:         "PARA-500-001",
		},
		{
			Name:        "Aspirine 500mg",
			Description: "Anti-inflammatoire et antalgique. Utilisé pour la douleur et la prévention cardiovasculaire.",
			Price:       2.95,
			Image:       "https://picsum.photos/300/200?text=Aspirine",
			Stock:       120,
			IsActive:    true,
			Category:    "Antalgiques",
			SKU:         "ASPI-500-001",
		},
		{
			Name:        "Tramadol 50mg",
			Description: "Antalgique opioïde pour les douleurs modérées à sévères.",
			Price:       7.80,
			Image:       "https://picsum.photos/300/200?text=Tramadol",
			Stock:       25,
			IsActive:    true,
			Category:    "Antalgiques",
			SKU:         "TRAM-50-001",
		},
		{
			Name:        "Codéine 30mg",
			Description: "Antalgique opioïde pour le traitement de la toux et de la douleur.",
			Price:       5.20,
			Image:       "https://picsum.photos/300/200?text=Codéine",
			Stock:       40,
			IsActive:    true,
			Category:    "Antalgiques",
			SKU:         "CODE-30-001",
		},
		{
			Name:        "Ibuprofène 400mg",
			Description: "Anti-inflammatoire non stéroïdien. Soulage la douleur et l'inflammation.",
			Price:       4.20,
			Image:       "https://picsum.photos/300/200?text=Ibuprofène",
			Stock:       75,
			IsActive:    true,
			Category:    "Anti-inflammatoires",
			SKU:         "IBUP-400-001",
		},
		{
			Name:        "Diclofénac 50mg",
			Description: "Anti-inflammatoire non stéroïdien pour les douleurs articulaires.",
			Price:       6.50,
			Image:       "https://picsum.photos/300/200?text=Diclofénac",
			Stock:       35,
			IsActive:    true,
			Category:    "Anti-inflammatoires",
			SKU:         "DICL-50-001",
		},
		{
			Name:        "Naproxène 500mg",
			Description: "Anti-inflammatoire non stéroïdien à libération prolongée.",
			Price:       8.90,
			Image:       "https://picsum.photos/300/200?text=Naproxène",
			Stock:       20,
			IsActive:    true,
			Category:    "Anti-inflammatoires",
			SKU:         "NAPR-500-001",
		},
		{
			Name:        "Vitamine D3 1000 UI",
			Description: "Complément alimentaire pour renforcer les os et le système immunitaire.",
			Price:       12.90,
			Image:       "https://picsum.photos/300/200?text=Vitamine+D3",
			Stock:       50,
			IsActive:    true,
			Category:    "Vitamines",
			SKU:         "VITD-1000-001",
		},
		{
			Name:        "Vitamine C 1000mg",
			Description: "Complément alimentaire pour renforcer le système immunitaire.",
			Price:       9.50,
			Image:       "https://picsum.photos/300/200?text=Vitamine+C",
			Stock:       80,
			IsActive:    true,
			Category:    "Vitamines",
			SKU:         "VITC-1000-001",
		},
		{
			Name:        "Vitamine B12 1000mcg",
			Description: "Complément alimentaire pour lutter contre la fatigue et l'anémie.",
			Price:       11.20,
			Image:       "https://picsum.photos/300/200?text=Vitamine+B12",
			Stock:       45,
			IsActive:    true,
			Category:    "Vitamines",
			SKU:         "VITB12-1000-001",
		},
	}

	for _, product := range products {
		if err := db.Where(models.Product{SKU: product.SKU}).Attrs(product).FirstOrCreate(&models.Product{}).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", product.SKU, err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
