package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/app"
	iauth "github.com/pharmagdd/catalog/internal/auth"
	"github.com/pharmagdd/catalog/internal/cache"
	"github.com/pharmagdd/catalog/internal/database/testutil"
	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/pkg/crypto"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code               string            `json:"code"`
		Message            string            `json:"message"`
		RequiredPermission string            `json:"required_permission"`
		Fields             map[string]string `json:"fields"`
	} `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtService, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret: "router-test-secret",
		Issuer: "catalog-test",
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwtService, iauth.SessionConfig{})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	router, err := NewRouter(Dependencies{
		DB:       db,
		JWT:      jwtService,
		Sessions: sessions,
		Cache:    cache.NewMemoryStore(),
		Config:   cfg,
	})
	require.NoError(t, err)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var parsed apiResponse
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &parsed))
	}
	return recorder, parsed
}

func login(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/admin/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var payload struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &payload))
	require.NotEmpty(t, payload.Tokens.AccessToken)
	return payload.Tokens.AccessToken
}

func superToken(t *testing.T, router *gin.Engine) string {
	return login(t, router, "admin@pharma-gdd.com", "admin")
}

func catalogToken(t *testing.T, router *gin.Engine) string {
	return login(t, router, "catalog@pharma-gdd.com", "admin_cat")
}

func seededProductID(t *testing.T, db *gorm.DB, sku string) string {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "sku = ?", sku).Error)
	return product.ID
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, _ := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestAdminRoutesRequireAuthentication(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/admin/products", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.False(t, parsed.Success)
	require.NotNil(t, parsed.Error)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Client",
		"email":    "client@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var payload struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &payload))

	recorder, parsed = doJSON(t, router, http.MethodGet, "/api/admin/products", payload.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.NotNil(t, parsed.Error)
}

func TestPublicListingExcludesInactive(t *testing.T) {
	router, db := setupRouter(t)

	require.NoError(t, db.Create(&models.Product{
		Name: "Produit Inactif Test", Price: 9.99, IsActive: false, SKU: "INACTIVE-001",
	}).Error)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/products?limit=50", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(parsed.Data, &products))
	require.NotEmpty(t, products)
	for _, product := range products {
		require.True(t, product.IsActive)
		require.NotEqual(t, "Produit Inactif Test", product.Name)
	}
}

func TestPublicListingSortAndLimit(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/products?sort=price&order=desc&limit=3", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(parsed.Data, &products))
	require.Len(t, products, 3)
	require.GreaterOrEqual(t, products[0].Price, products[1].Price)
	require.GreaterOrEqual(t, products[1].Price, products[2].Price)

	// An unknown sort column falls back to name ascending.
	recorder, parsed = doJSON(t, router, http.MethodGet, "/api/products?sort=nope&order=nope&limit=3", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(parsed.Data, &products))
	require.Len(t, products, 3)
	require.LessOrEqual(t, products[0].Name, products[1].Name)
}

func TestPublicListingPagination(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/products?limit=2&page=1", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var firstPage []models.Product
	require.NoError(t, json.Unmarshal(parsed.Data, &firstPage))
	require.Len(t, firstPage, 2)

	recorder, parsed = doJSON(t, router, http.MethodGet, "/api/products?limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var secondPage []models.Product
	require.NoError(t, json.Unmarshal(parsed.Data, &secondPage))
	require.Len(t, secondPage, 2)
	require.NotEqual(t, firstPage[0].SKU, secondPage[0].SKU)
	require.NotEqual(t, firstPage[1].SKU, secondPage[1].SKU)

	var full struct {
		Meta struct {
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
			Total   int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &full))
	require.Equal(t, 2, full.Meta.Page)
	require.Equal(t, 2, full.Meta.PerPage)
	require.Equal(t, 10, full.Meta.Total)
}

func TestAdminProductReadsNeedNoPermission(t *testing.T) {
	router, db := setupRouter(t)

	// An admin without any role can browse products but not touch them.
	hashed, err := crypto.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Viewer", Email: "viewer@pharma-gdd.com", Password: hashed, IsAdmin: true,
	}).Error)

	token := login(t, router, "viewer@pharma-gdd.com", "secret123")

	recorder, _ := doJSON(t, router, http.MethodGet, "/api/admin/products", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	id := seededProductID(t, db, "PARA-500-001")
	recorder, _ = doJSON(t, router, http.MethodGet, "/api/admin/products/"+id, token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/admin/products", token, gin.H{
		"name": "Interdit", "price": 1.0, "sku": "DENY-001",
	})
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.NotNil(t, parsed.Error)
	require.Equal(t, "products.create", parsed.Error.RequiredPermission)
}

func TestCatalogAdminCanUpdateProductFields(t *testing.T) {
	router, db := setupRouter(t)
	token := catalogToken(t, router)
	id := seededProductID(t, db, "PARA-500-001")

	recorder, parsed := doJSON(t, router, http.MethodPut, "/api/admin/products/"+id, token, gin.H{
		"stock": 99,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var product models.Product
	require.NoError(t, json.Unmarshal(parsed.Data, &product))
	require.Equal(t, 99, product.Stock)
}

func TestCatalogAdminCannotChangePrice(t *testing.T) {
	router, db := setupRouter(t)
	token := catalogToken(t, router)
	id := seededProductID(t, db, "PARA-500-001")

	var before models.Product
	require.NoError(t, db.First(&before, "id = ?", id).Error)

	recorder, parsed := doJSON(t, router, http.MethodPut, "/api/admin/products/"+id, token, gin.H{
		"stock": 77,
		"price": before.Price + 1,
	})
	require.Equal(t, http.StatusForbidden, recorder.Code, recorder.Body.String())
	require.NotNil(t, parsed.Error)
	require.Equal(t, "products.price.update", parsed.Error.RequiredPermission)

	// Nothing was applied, including the stock change.
	var after models.Product
	require.NoError(t, db.First(&after, "id = ?", id).Error)
	require.Equal(t, before.Stock, after.Stock)
	require.InDelta(t, before.Price, after.Price, 0.001)
}

func TestSuperAdminCanChangePrice(t *testing.T) {
	router, db := setupRouter(t)
	token := superToken(t, router)
	id := seededProductID(t, db, "PARA-500-001")

	recorder, parsed := doJSON(t, router, http.MethodPut, "/api/admin/products/"+id, token, gin.H{
		"price": 4.80,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var product models.Product
	require.NoError(t, json.Unmarshal(parsed.Data, &product))
	require.InDelta(t, 4.80, product.Price, 0.001)
}

func TestCatalogAdminCannotManageUsers(t *testing.T) {
	router, _ := setupRouter(t)
	token := catalogToken(t, router)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/admin/users", token, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.NotNil(t, parsed.Error)
	require.Equal(t, "users.read", parsed.Error.RequiredPermission)
}

func TestProductCreateValidation(t *testing.T) {
	router, _ := setupRouter(t)
	token := superToken(t, router)

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/admin/products", token, gin.H{
		"description": "missing name and sku",
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code, recorder.Body.String())
	require.NotNil(t, parsed.Error)
	require.Contains(t, parsed.Error.Fields, "name")
	require.Contains(t, parsed.Error.Fields, "sku")
}

func TestProductCreateDuplicateSKURejected(t *testing.T) {
	router, _ := setupRouter(t)
	token := superToken(t, router)

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/admin/products", token, gin.H{
		"name":  "Copie",
		"price": 3.50,
		"sku":   "PARA-500-001",
	})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code, recorder.Body.String())
	require.NotNil(t, parsed.Error)
	require.Contains(t, parsed.Error.Fields, "sku")
}

func TestRoleLifecycle(t *testing.T) {
	router, _ := setupRouter(t)
	token := superToken(t, router)

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/admin/roles", token, gin.H{
		"code":        "support",
		"name":        "Support",
		"permissions": []string{"products.read", "users.read"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var role models.Role
	require.NoError(t, json.Unmarshal(parsed.Data, &role))
	require.Len(t, role.Permissions, 2)

	recorder, parsed = doJSON(t, router, http.MethodPut, "/api/admin/roles/"+role.ID, token, gin.H{
		"permissions": []string{"products.read"},
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	require.NoError(t, json.Unmarshal(parsed.Data, &role))
	require.Len(t, role.Permissions, 1)

	// Roles cannot be deleted.
	recorder, _ = doJSON(t, router, http.MethodDelete, "/api/admin/roles/"+role.ID, token, nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAdminRolesListingIsPublic(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/admin/auth/roles", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var roles []map[string]any
	require.NoError(t, json.Unmarshal(parsed.Data, &roles))
	require.Len(t, roles, 2)
}

func TestCustomerAuthFlow(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Client",
		"email":    "client@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var payload struct {
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &payload))

	recorder, parsed = doJSON(t, router, http.MethodGet, "/api/auth/me", payload.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var me struct {
		Email   string `json:"email"`
		IsAdmin bool   `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &me))
	require.Equal(t, "client@example.com", me.Email)
	require.False(t, me.IsAdmin)

	recorder, parsed = doJSON(t, router, http.MethodPost, "/api/auth/refresh", "", gin.H{
		"refresh_token": payload.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var refreshed struct {
		Tokens struct {
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &refreshed))
	require.NotEqual(t, payload.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	// The old refresh token was rotated away.
	recorder, _ = doJSON(t, router, http.MethodPost, "/api/auth/refresh", "", gin.H{
		"refresh_token": payload.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	router, _ := setupRouter(t)
	token := superToken(t, router)

	recorder, _ := doJSON(t, router, http.MethodPost, "/api/admin/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router, _ := setupRouter(t)

	recorder, parsed := doJSON(t, router, http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.NotNil(t, parsed.Error)
}

func TestAdminListingPaginationMeta(t *testing.T) {
	router, db := setupRouter(t)
	token := superToken(t, router)

	for i := 0; i < 20; i++ {
		require.NoError(t, db.Create(&models.Product{
			Name: "Extra", Price: 1, IsActive: true, SKU: fmt.Sprintf("EXTRA-%03d", i),
		}).Error)
	}

	recorder, _ := doJSON(t, router, http.MethodGet, "/api/admin/products?page=2", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var full struct {
		Meta struct {
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
			Total   int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &full))
	require.Equal(t, 2, full.Meta.Page)
	require.Equal(t, 15, full.Meta.PerPage)
	require.Equal(t, 30, full.Meta.Total) // 10 seeded + 20 extra
}
