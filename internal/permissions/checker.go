package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/models"
)

// Evaluate is the authorization guard: it decides whether the principal may
// perform the action named by the permission code. The principal is passed
// explicitly; there is no ambient current-user state. Pure allow-list
// semantics, no caching, no deny-override.
func Evaluate(principal *models.User, code string) bool {
	if principal == nil {
		return false
	}
	return ForRole(principal.Role).Allows(code)
}

// Checker evaluates permissions for principals identified by ID, loading the
// role and its grant set from the database.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check determines whether the identified principal holds the permission.
func (c *Checker) Check(ctx context.Context, userID, code string) (bool, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("permission checker: user id is required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false, errors.New("permission checker: permission code is required")
	}

	principal, err := c.load(ctx, userID)
	if err != nil {
		return false, err
	}

	return Evaluate(principal, code), nil
}

// GetUserPermissions returns the distinct permission codes granted to the
// principal, sorted.
func (c *Checker) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	principal, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ForRole(principal.Role).Codes(), nil
}

func (c *Checker) load(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).
		Preload("Role.Permissions").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}
	return &user, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
