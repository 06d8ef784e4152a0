package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/app"
	iauth "github.com/pharmagdd/catalog/internal/auth"
	"github.com/pharmagdd/catalog/internal/cache"
	"github.com/pharmagdd/catalog/internal/handlers"
	"github.com/pharmagdd/catalog/internal/middleware"
	"github.com/pharmagdd/catalog/internal/permissions"
	"github.com/pharmagdd/catalog/internal/services"
)

// Dependencies bundles everything the router needs.
type Dependencies struct {
	DB       *gorm.DB
	JWT      *iauth.JWTService
	Sessions *iauth.SessionService
	Cache    cache.Store
	Config   *app.Config
}

// NewRouter builds the Gin engine, wires middleware, and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	checker, err := permissions.NewChecker(deps.DB)
	if err != nil {
		return nil, err
	}

	audit := services.NewAuditService(deps.DB)
	userService := services.NewUserService(deps.DB, audit)
	productService := services.NewProductService(deps.DB, deps.Cache, audit)
	roleService := services.NewRoleService(deps.DB, audit)

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(deps.Config.Server.AllowedOrigins...))
	if rl := deps.Config.Server.RateLimit; rl.Enabled {
		r.Use(middleware.RateLimit(deps.Cache, rl.Requests, rl.Window))
	}

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())
	if mon := deps.Config.Monitoring.Prometheus; mon.Enabled {
		endpoint := mon.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	requireAuth := middleware.Auth(deps.JWT)

	registerPublicRoutes(r, productService)
	registerAuthRoutes(r, requireAuth, userService, deps.Sessions)
	registerAdminAuthRoutes(r, requireAuth, checker, userService, roleService, deps.Sessions)
	registerAdminProductRoutes(r, requireAuth, checker, productService, userService)
	registerAdminUserRoutes(r, requireAuth, checker, userService)
	registerAdminRoleRoutes(r, requireAuth, checker, roleService, userService)

	return r, nil
}
