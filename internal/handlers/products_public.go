package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/services"
	"github.com/pharmagdd/catalog/pkg/response"
)

// PublicProductHandler serves the storefront catalog. All of its endpoints
// are anonymous and only ever expose active products.
type PublicProductHandler struct {
	products *services.ProductService
}

func NewPublicProductHandler(products *services.ProductService) *PublicProductHandler {
	return &PublicProductHandler{products: products}
}

// GET /api/products
func (h *PublicProductHandler) List(c *gin.Context) {
	opts := services.PublicListingOptions{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		Limit:    parseIntQuery(c, "limit", 0),
		Page:     parseIntQuery(c, "page", 0),
	}

	listing, err := h.products.ListPublic(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, listing.Items,
		paginationMeta(listing.Page, listing.PerPage, listing.Total))
}

// GET /api/products/:id
func (h *PublicProductHandler) Get(c *gin.Context) {
	product, err := h.products.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}
