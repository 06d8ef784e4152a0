package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/internal/permissions"
	appErrors "github.com/pharmagdd/catalog/pkg/errors"
)

type RoleService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewRoleService(db *gorm.DB, audit *AuditService) *RoleService {
	return &RoleService{db: db, audit: audit}
}

type CreateRoleInput struct {
	Code           string
	Name           string
	Description    string
	AllPermissions bool
	Permissions    []string
}

type UpdateRoleInput struct {
	Name           *string
	Description    *string
	AllPermissions *bool
	Permissions    []string
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	ctx = ensureContext(ctx)

	var roles []models.Role
	err := s.db.WithContext(ctx).
		Preload("Permissions").
		Order("code ASC").
		Find(&roles).Error
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to list roles")
	}
	return roles, nil
}

func (s *RoleService) GetByID(ctx context.Context, id string) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var role models.Role
	err := s.db.WithContext(ctx).
		Preload("Permissions").
		First(&role, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, "Failed to load role")
	}
	return &role, nil
}

// ListPermissions returns the synced permission catalog grouped the way it
// is stored, ordered by code.
func (s *RoleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var perms []models.Permission
	err := s.db.WithContext(ctx).Order("code ASC").Find(&perms).Error
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to list permissions")
	}
	return perms, nil
}

func (s *RoleService) Create(ctx context.Context, principal *models.User, input CreateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Where("code = ?", input.Code).
		Count(&count).Error
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to check role code")
	}
	if count > 0 {
		return nil, appErrors.NewValidationFailed(map[string]string{
			"code": "The code has already been taken.",
		})
	}

	perms, err := s.resolvePermissions(ctx, input.Permissions)
	if err != nil {
		return nil, err
	}

	role := models.Role{
		Code:           input.Code,
		Name:           input.Name,
		Description:    input.Description,
		AllPermissions: input.AllPermissions,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		if len(perms) > 0 {
			return tx.Model(&role).Association("Permissions").Replace(perms)
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to create role")
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "role.create",
		Resource: role.ID,
		Result:   "success",
		Metadata: map[string]any{"code": role.Code},
	})
	return s.GetByID(ctx, role.ID)
}

// Update changes a role's name, description, scope, or permission set. The
// role code is immutable and roles cannot be deleted.
func (s *RoleService) Update(ctx context.Context, principal *models.User, id string, input UpdateRoleInput) (*models.Role, error) {
	ctx = ensureContext(ctx)

	role, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var perms []*models.Permission
	if input.Permissions != nil {
		perms, err = s.resolvePermissions(ctx, input.Permissions)
		if err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.AllPermissions != nil {
		updates["all_permissions"] = *input.AllPermissions
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(role).Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Permissions != nil {
			return tx.Model(role).Association("Permissions").Replace(perms)
		}
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to update role")
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "role.update",
		Resource: role.ID,
		Result:   "success",
	})
	return s.GetByID(ctx, id)
}

// resolvePermissions maps codes to stored permission rows, rejecting codes
// that are not part of the registry.
func (s *RoleService) resolvePermissions(ctx context.Context, codes []string) ([]*models.Permission, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	for _, code := range codes {
		if _, ok := permissions.Get(code); !ok {
			return nil, appErrors.NewValidationFailed(map[string]string{
				"permissions": fmt.Sprintf("The permission %q is invalid.", code),
			})
		}
	}

	var perms []*models.Permission
	err := s.db.WithContext(ctx).Where("code IN ?", codes).Find(&perms).Error
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to resolve permissions")
	}
	if len(perms) != len(codes) {
		return nil, appErrors.NewValidationFailed(map[string]string{
			"permissions": "One or more permissions are not available.",
		})
	}
	return perms, nil
}
