package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/cache"
	"github.com/pharmagdd/catalog/internal/database/testutil"
	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/internal/permissions"
	appErrors "github.com/pharmagdd/catalog/pkg/errors"
)

func newProductService(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	return NewProductService(db, cache.NewMemoryStore(), NewAuditService(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	require.NoError(t, db.Create(&p).Error)
	return p
}

func catalogManager(t *testing.T, db *gorm.DB, codes ...string) *models.User {
	t.Helper()

	var perms []*models.Permission
	for _, code := range codes {
		def, ok := permissions.Get(code)
		require.True(t, ok)
		perms = append(perms, &models.Permission{
			Code:   def.Code,
			Name:   def.Name,
			Module: def.Module,
		})
	}

	role := models.Role{Code: "test-role-" + codes[0], Name: "Test Role"}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, db.Model(&role).Association("Permissions").Replace(perms))

	user := models.User{
		Name:    "Test Admin",
		Email:   "admin-" + role.Code + "@example.com",
		IsAdmin: true,
		RoleID:  &role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	var loaded models.User
	require.NoError(t, db.Preload("Role.Permissions").First(&loaded, "id = ?", user.ID).Error)
	return &loaded
}

func superAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	role := models.Role{Code: "test-super", Name: "Super", AllPermissions: true}
	require.NoError(t, db.Create(&role).Error)

	user := models.User{
		Name:    "Super Admin",
		Email:   "super@example.com",
		IsAdmin: true,
		RoleID:  &role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	var loaded models.User
	require.NoError(t, db.Preload("Role.Permissions").First(&loaded, "id = ?", user.ID).Error)
	return &loaded
}

func TestProductUpdatePriceRequiresExtraPermission(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	manager := catalogManager(t, db, permissions.ProductsUpdate)
	product := seedProduct(t, db, models.Product{
		Name: "Paracétamol 500mg", Price: 3.50, Stock: 10, IsActive: true, SKU: "PARA-500-001",
	})

	newName := "Paracétamol 500mg boîte de 16"
	newPrice := 4.20
	_, err := svc.Update(ctx, manager, product.ID, UpdateProductInput{
		Name:  &newName,
		Price: &newPrice,
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, 403, appErr.StatusCode)
	require.Equal(t, permissions.ProductsPriceUpdate, appErr.RequiredPermission)

	// All-or-nothing: the name change must not have been applied either.
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, "Paracétamol 500mg", reloaded.Name)
	require.InDelta(t, 3.50, reloaded.Price, 0.001)
}

func TestProductUpdatePriceAllowedWithBothPermissions(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	manager := catalogManager(t, db, permissions.ProductsUpdate, permissions.ProductsPriceUpdate)
	product := seedProduct(t, db, models.Product{
		Name: "Ibuprofène 400mg", Price: 5.90, Stock: 5, IsActive: true, SKU: "IBU-400-001",
	})

	newPrice := 6.50
	updated, err := svc.Update(ctx, manager, product.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)
	require.InDelta(t, 6.50, updated.Price, 0.001)
}

func TestProductUpdateSamePriceNeedsNoExtraPermission(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	manager := catalogManager(t, db, permissions.ProductsUpdate)
	product := seedProduct(t, db, models.Product{
		Name: "Doliprane", Price: 2.99, Stock: 3, IsActive: true, SKU: "DOL-001",
	})

	// Sending the current price back is not a price change.
	samePrice := 2.99
	newStock := 42
	updated, err := svc.Update(ctx, manager, product.ID, UpdateProductInput{
		Price: &samePrice,
		Stock: &newStock,
	})
	require.NoError(t, err)
	require.Equal(t, 42, updated.Stock)
}

func TestProductUpdateOmittedPriceNeedsNoExtraPermission(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	manager := catalogManager(t, db, permissions.ProductsUpdate)
	product := seedProduct(t, db, models.Product{
		Name: "Vitamine C", Price: 8.90, Stock: 7, IsActive: true, SKU: "VITC-001",
	})

	newName := "Vitamine C 1000mg"
	updated, err := svc.Update(ctx, manager, product.ID, UpdateProductInput{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "Vitamine C 1000mg", updated.Name)
	require.InDelta(t, 8.90, updated.Price, 0.001)
}

func TestProductUpdatePriceUnrestrictedRole(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	admin := superAdmin(t, db)
	product := seedProduct(t, db, models.Product{
		Name: "Aspirine", Price: 3.10, Stock: 9, IsActive: true, SKU: "ASP-001",
	})

	newPrice := 3.30
	updated, err := svc.Update(ctx, admin, product.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)
	require.InDelta(t, 3.30, updated.Price, 0.001)
}

func TestProductCreateDuplicateSKU(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	admin := superAdmin(t, db)
	seedProduct(t, db, models.Product{
		Name: "Existing", Price: 1.00, IsActive: true, SKU: "DUP-001",
	})

	_, err := svc.Create(ctx, admin, CreateProductInput{
		Name: "Other", Price: 2.00, SKU: "DUP-001",
	})
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, 422, appErr.StatusCode)
	require.Contains(t, appErr.Fields, "sku")
}

func TestProductPublicListingFiltersInactive(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	seedProduct(t, db, models.Product{Name: "Visible", Price: 1, IsActive: true, SKU: "VIS-001"})
	seedProduct(t, db, models.Product{Name: "Hidden", Price: 1, IsActive: false, SKU: "HID-001"})

	listing, err := svc.ListPublic(ctx, PublicListingOptions{})
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	require.Equal(t, "Visible", listing.Items[0].Name)
}

func TestProductCreatedInactiveStaysHidden(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	admin := superAdmin(t, db)
	inactive := false
	created, err := svc.Create(ctx, admin, CreateProductInput{
		Name: "Brouillon", Price: 2.50, SKU: "DRAFT-001", IsActive: &inactive,
	})
	require.NoError(t, err)
	require.False(t, created.IsActive)

	// The stored row must carry is_active = false, not a column default.
	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	require.False(t, stored.IsActive)

	listing, err := svc.ListPublic(ctx, PublicListingOptions{})
	require.NoError(t, err)
	require.Empty(t, listing.Items)

	_, err = svc.GetPublic(ctx, created.ID)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestProductPublicListingSortFallback(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	seedProduct(t, db, models.Product{Name: "Banane", Price: 2, IsActive: true, SKU: "B-001"})
	seedProduct(t, db, models.Product{Name: "Abricot", Price: 9, IsActive: true, SKU: "A-001"})

	// Unknown sort column and order must fall back to name ascending, not
	// reach the SQL layer.
	listing, err := svc.ListPublic(ctx, PublicListingOptions{
		Sort:  "password; DROP TABLE products",
		Order: "sideways",
	})
	require.NoError(t, err)
	require.Len(t, listing.Items, 2)
	require.Equal(t, "Abricot", listing.Items[0].Name)

	listing, err = svc.ListPublic(ctx, PublicListingOptions{Sort: "price", Order: "desc"})
	require.NoError(t, err)
	require.Equal(t, "Abricot", listing.Items[0].Name)
	require.InDelta(t, 9, listing.Items[0].Price, 0.001)
}

func TestProductPublicListingLimitClamp(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		seedProduct(t, db, models.Product{
			Name: "Produit", Price: 1, IsActive: true,
			SKU: "CLAMP-" + time.Now().Format("150405") + "-" + string(rune('A'+i/26)) + string(rune('A'+i%26)),
		})
	}

	listing, err := svc.ListPublic(ctx, PublicListingOptions{Limit: 500})
	require.NoError(t, err)
	require.Len(t, listing.Items, 50)
	require.Equal(t, 50, listing.PerPage)

	listing, err = svc.ListPublic(ctx, PublicListingOptions{})
	require.NoError(t, err)
	require.Len(t, listing.Items, 12)
	require.EqualValues(t, 60, listing.Total)
}

func TestProductPublicListingPagination(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"} {
		seedProduct(t, db, models.Product{Name: name, Price: 1, IsActive: true, SKU: "PAGE-" + name})
	}

	first, err := svc.ListPublic(ctx, PublicListingOptions{Limit: 2, Page: 1})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.EqualValues(t, 5, first.Total)
	require.Equal(t, []string{"Alpha", "Bravo"}, []string{first.Items[0].Name, first.Items[1].Name})

	second, err := svc.ListPublic(ctx, PublicListingOptions{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	require.Equal(t, []string{"Charlie", "Delta"}, []string{second.Items[0].Name, second.Items[1].Name})

	third, err := svc.ListPublic(ctx, PublicListingOptions{Limit: 2, Page: 3})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	require.Equal(t, "Echo", third.Items[0].Name)
}

func TestProductPublicListingSearch(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	seedProduct(t, db, models.Product{Name: "Sirop contre la toux", Price: 4, IsActive: true, SKU: "SIR-001"})
	seedProduct(t, db, models.Product{Name: "Crème solaire", Description: "protection toux... non", Price: 12, IsActive: true, SKU: "CRE-001"})
	seedProduct(t, db, models.Product{Name: "Gélules", Price: 6, IsActive: true, SKU: "GEL-001"})

	listing, err := svc.ListPublic(ctx, PublicListingOptions{Search: "toux"})
	require.NoError(t, err)
	require.Len(t, listing.Items, 2)

	// Search is case-insensitive regardless of driver collation.
	listing, err = svc.ListPublic(ctx, PublicListingOptions{Search: "TOUX"})
	require.NoError(t, err)
	require.Len(t, listing.Items, 2)

	listing, err = svc.ListPublic(ctx, PublicListingOptions{Search: "gel-001"})
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)
	require.Equal(t, "Gélules", listing.Items[0].Name)
}

func TestProductGetPublicHidesInactive(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	hidden := seedProduct(t, db, models.Product{Name: "Hidden", Price: 1, IsActive: false, SKU: "HID-002"})

	_, err := svc.GetPublic(ctx, hidden.ID)
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, 404, appErr.StatusCode)
}

func TestProductAdminListingPagination(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		seedProduct(t, db, models.Product{
			Name: "Produit", Price: 1, IsActive: i%2 == 0,
			SKU: "ADM-" + string(rune('A'+i/26)) + string(rune('A'+i%26)),
		})
	}

	products, total, err := svc.ListAdmin(ctx, AdminListingOptions{Page: 1})
	require.NoError(t, err)
	require.EqualValues(t, 20, total)
	require.Len(t, products, 15)

	products, total, err = svc.ListAdmin(ctx, AdminListingOptions{Page: 2})
	require.NoError(t, err)
	require.EqualValues(t, 20, total)
	require.Len(t, products, 5)

	_, total, err = svc.ListAdmin(ctx, AdminListingOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 10, total)
}

func TestProductDelete(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()

	admin := superAdmin(t, db)
	product := seedProduct(t, db, models.Product{Name: "Gone", Price: 1, IsActive: true, SKU: "GONE-001"})

	require.NoError(t, svc.Delete(ctx, admin, product.ID))

	_, err := svc.GetByID(ctx, product.ID)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestProductListingCacheInvalidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := cache.NewMemoryStore()
	svc := NewProductService(db, store, NewAuditService(db))
	ctx := context.Background()

	admin := superAdmin(t, db)
	seedProduct(t, db, models.Product{Name: "First", Price: 1, IsActive: true, SKU: "CACHE-001"})

	listing, err := svc.ListPublic(ctx, PublicListingOptions{})
	require.NoError(t, err)
	require.Len(t, listing.Items, 1)

	_, err = svc.Create(ctx, admin, CreateProductInput{Name: "Second", Price: 2, SKU: "CACHE-002"})
	require.NoError(t, err)

	listing, err = svc.ListPublic(ctx, PublicListingOptions{})
	require.NoError(t, err)
	require.Len(t, listing.Items, 2)
}
