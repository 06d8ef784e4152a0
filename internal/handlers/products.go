package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/services"
	"github.com/pharmagdd/catalog/pkg/response"
)

// ProductHandler serves the back-office product endpoints. Route middleware
// enforces the products.* permissions; the service layer adds the extra
// price-change check on update.
type ProductHandler struct {
	products *services.ProductService
	users    *services.UserService
}

func NewProductHandler(products *services.ProductService, users *services.UserService) *ProductHandler {
	return &ProductHandler{products: products, users: users}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image" validate:"max=2048"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsActive    *bool   `json:"is_active"`
	Category    string  `json:"category" validate:"max=255"`
	SKU         string  `json:"sku" validate:"required,max=64"`
}

type updateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Image       *string  `json:"image" validate:"omitempty,max=2048"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
	Category    *string  `json:"category" validate:"omitempty,max=255"`
	SKU         *string  `json:"sku" validate:"omitempty,max=64"`
}

// GET /api/admin/products
func (h *ProductHandler) List(c *gin.Context) {
	opts := services.AdminListingOptions{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		ActiveOnly: parseBoolQuery(c, "active_only"),
		Page:       parseIntQuery(c, "page", 1),
	}

	products, total, err := h.products.ListAdmin(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, paginationMeta(opts.Page, adminPerPage, total))
}

// GET /api/admin/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// POST /api/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), principal, services.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
		Category:    req.Category,
		SKU:         req.SKU,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// PUT /api/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), principal, c.Param("id"), services.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
		Category:    req.Category,
		SKU:         req.SKU,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// DELETE /api/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.products.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

// adminPerPage mirrors the fixed page size of the back-office listings.
const adminPerPage = 15

func paginationMeta(page, perPage int, total int64) *response.Meta {
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	}
}
