package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/cache"
	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/internal/permissions"
	appErrors "github.com/pharmagdd/catalog/pkg/errors"
	"github.com/pharmagdd/catalog/pkg/metrics"
)

const (
	publicListingDefaultLimit = 12
	publicListingMaxLimit     = 50
	adminListingPerPage       = 15

	listingCachePrefix = "products:list:"
	listingCacheTTL    = time.Minute
)

// publicSortColumns is the allow-list for the public listing. Anything
// outside it falls back to sorting by name.
var publicSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
	"stock":      "stock",
}

type ProductService struct {
	db    *gorm.DB
	cache cache.Store
	audit *AuditService
}

func NewProductService(db *gorm.DB, store cache.Store, audit *AuditService) *ProductService {
	return &ProductService{db: db, cache: store, audit: audit}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Stock       int
	IsActive    *bool
	Category    string
	SKU         string
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	Stock       *int
	IsActive    *bool
	Category    *string
	SKU         *string
}

// PublicListingOptions carries the query parameters of the storefront
// listing. Invalid sort or order values fall back to defaults rather than
// erroring.
type PublicListingOptions struct {
	Search   string
	Category string
	Sort     string
	Order    string
	Limit    int
	Page     int
}

// PublicListing is one page of the storefront catalog. Page and PerPage
// hold the normalised values actually used by the query.
type PublicListing struct {
	Items   []models.Product `json:"items"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

type AdminListingOptions struct {
	Search     string
	Category   string
	ActiveOnly bool
	Page       int
}

// ListPublic returns one page of active products. The is_active filter is
// forced server-side and cannot be disabled by the caller.
func (s *ProductService) ListPublic(ctx context.Context, opts PublicListingOptions) (*PublicListing, error) {
	ctx = ensureContext(ctx)

	sort, ok := publicSortColumns[opts.Sort]
	if !ok {
		sort = "name"
	}
	order := strings.ToLower(opts.Order)
	if order != "asc" && order != "desc" {
		order = "asc"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = publicListingDefaultLimit
	}
	if limit > publicListingMaxLimit {
		limit = publicListingMaxLimit
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("%s%s|%s|%s|%s|%d|%d",
		listingCachePrefix, opts.Search, opts.Category, sort, order, limit, page)
	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, cacheKey); err == nil && found {
			var cached PublicListing
			if err := json.Unmarshal(raw, &cached); err == nil {
				metrics.CatalogCache.WithLabelValues("hit").Inc()
				return &cached, nil
			}
		}
		metrics.CatalogCache.WithLabelValues("miss").Inc()
	}

	query := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("is_active = ?", true)
	query = applyProductSearch(query, opts.Search)
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, appErrors.Wrap(err, "Failed to count products")
	}

	var products []models.Product
	err := query.Order(sort + " " + order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to list products")
	}

	listing := &PublicListing{Items: products, Total: total, Page: page, PerPage: limit}
	if s.cache != nil {
		if raw, err := json.Marshal(listing); err == nil {
			_ = s.cache.Set(ctx, cacheKey, raw, listingCacheTTL)
		}
	}
	return listing, nil
}

// GetPublic returns a single active product by id.
func (s *ProductService) GetPublic(ctx context.Context, id string) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, "Failed to load product")
	}
	return &product, nil
}

// ListAdmin returns the paginated back-office listing ordered by newest
// first.
func (s *ProductService) ListAdmin(ctx context.Context, opts AdminListingOptions) ([]models.Product, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Product{})
	query = applyProductSearch(query, opts.Search)
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, appErrors.Wrap(err, "Failed to count products")
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}

	var products []models.Product
	err := query.Order("created_at DESC").
		Offset((page - 1) * adminListingPerPage).
		Limit(adminListingPerPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, appErrors.Wrap(err, "Failed to list products")
	}
	return products, total, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, "Failed to load product")
	}
	return &product, nil
}

func (s *ProductService) Create(ctx context.Context, principal *models.User, input CreateProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	if err := s.ensureUniqueSKU(ctx, input.SKU, ""); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Image:       input.Image,
		Stock:       input.Stock,
		IsActive:    true,
		Category:    input.Category,
		SKU:         input.SKU,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, skuTakenError()
		}
		return nil, appErrors.Wrap(err, "Failed to create product")
	}

	s.invalidateListings(ctx)
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "product.create",
		Resource: product.ID,
		Result:   "success",
		Metadata: map[string]any{"sku": product.SKU},
	})
	return &product, nil
}

// Update applies a partial update. Changing the price requires the
// products.price.update permission in addition to products.update; when it
// is missing the whole update is rejected and no field is applied.
func (s *ProductService) Update(ctx context.Context, principal *models.User, id string, input UpdateProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil && *input.SKU != product.SKU {
		if err := s.ensureUniqueSKU(ctx, *input.SKU, product.ID); err != nil {
			return nil, err
		}
	}

	if input.Price != nil && models.PriceCents(*input.Price) != models.PriceCents(product.Price) {
		if !permissions.Evaluate(principal, permissions.ProductsPriceUpdate) {
			recordAudit(s.audit, ctx, AuditEntry{
				UserID:   principalID(principal),
				Email:    principalEmail(principal),
				Action:   "product.price_update",
				Resource: product.ID,
				Result:   "denied",
			})
			return nil, appErrors.NewPermissionDenied(permissions.ProductsPriceUpdate)
		}
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.SKU != nil {
		updates["sku"] = *input.SKU
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, skuTakenError()
			}
			return nil, appErrors.Wrap(err, "Failed to update product")
		}
	}

	s.invalidateListings(ctx)
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "product.update",
		Resource: product.ID,
		Result:   "success",
	})
	return s.GetByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, principal *models.User, id string) error {
	ctx = ensureContext(ctx)

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(product).Error; err != nil {
		return appErrors.Wrap(err, "Failed to delete product")
	}

	s.invalidateListings(ctx)
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "product.delete",
		Resource: product.ID,
		Result:   "success",
		Metadata: map[string]any{"sku": product.SKU},
	})
	return nil
}

// applyProductSearch matches name, description and SKU. LOWER on both
// sides keeps the match case-insensitive on every supported driver;
// postgres LIKE alone is case-sensitive.
func applyProductSearch(query *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return query
	}
	term := "%" + strings.ToLower(search) + "%"
	return query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", term, term, term)
}

func (s *ProductService) ensureUniqueSKU(ctx context.Context, sku, excludeID string) error {
	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return appErrors.Wrap(err, "Failed to check SKU")
	}
	if count > 0 {
		return skuTakenError()
	}
	return nil
}

func (s *ProductService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePrefix(ctx, listingCachePrefix)
}

func skuTakenError() error {
	return appErrors.NewValidationFailed(map[string]string{
		"sku": "The sku has already been taken.",
	})
}

func principalID(principal *models.User) *string {
	if principal == nil {
		return nil
	}
	id := principal.ID
	return &id
}

func principalEmail(principal *models.User) string {
	if principal == nil {
		return ""
	}
	return principal.Email
}
