package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pharmagdd/catalog/internal/models"
	"github.com/pharmagdd/catalog/pkg/crypto"
	appErrors "github.com/pharmagdd/catalog/pkg/errors"
	"github.com/pharmagdd/catalog/pkg/metrics"
)

type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{db: db, audit: audit}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
	RoleID   *string
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	RoleID   *string
}

type ListUsersOptions struct {
	Search     string
	AdminsOnly bool
	Page       int
}

// GetByID loads a user with the role and its permissions, ready for
// authorization decisions.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Role.Permissions").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, "Failed to load user")
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Role.Permissions").
		First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, "Failed to load user")
	}
	return &user, nil
}

// Authenticate verifies credentials for the given audience. Customers cannot
// sign in through the admin endpoint and vice versa; both cases report
// invalid credentials rather than revealing which part failed.
func (s *UserService) Authenticate(ctx context.Context, email, password string, wantAdmin bool, ipAddress string) (*models.User, error) {
	ctx = ensureContext(ctx)

	audience := "customer"
	if wantAdmin {
		audience = "admin"
	}

	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(audience, "failure").Inc()
		return nil, appErrors.ErrInvalidCredentials
	}
	if user.IsAdmin != wantAdmin || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues(audience, "failure").Inc()
		recordAudit(s.audit, ctx, AuditEntry{
			Email:     email,
			Action:    "auth.login",
			Result:    "failure",
			IPAddress: ipAddress,
		})
		return nil, appErrors.ErrInvalidCredentials
	}

	now := time.Now()
	updates := map[string]any{"last_login_at": now, "last_login_ip": ipAddress}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, appErrors.Wrap(err, "Failed to record login")
	}

	metrics.AuthAttempts.WithLabelValues(audience, "success").Inc()
	recordAudit(s.audit, ctx, AuditEntry{
		UserID:    principalID(user),
		Email:     user.Email,
		Action:    "auth.login",
		Result:    "success",
		IPAddress: ipAddress,
	})
	return user, nil
}

// RegisterCustomer creates a storefront account. Customers never carry a
// role.
func (s *UserService) RegisterCustomer(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := s.ensureUniqueEmail(ctx, input.Email, ""); err != nil {
		return nil, err
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to hash password")
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashed,
		IsAdmin:  false,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, emailTakenError()
		}
		return nil, appErrors.Wrap(err, "Failed to create user")
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID: principalID(&user),
		Email:  user.Email,
		Action: "auth.register",
		Result: "success",
	})
	return &user, nil
}

func (s *UserService) List(ctx context.Context, opts ListUsersOptions) ([]models.User, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if opts.Search != "" {
		// LOWER on both sides keeps the match case-insensitive on every
		// supported driver; postgres LIKE alone is case-sensitive.
		term := "%" + strings.ToLower(opts.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if opts.AdminsOnly {
		query = query.Where("is_admin = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, appErrors.Wrap(err, "Failed to count users")
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}

	var users []models.User
	err := query.Preload("Role").
		Order("created_at DESC").
		Offset((page - 1) * adminListingPerPage).
		Limit(adminListingPerPage).
		Find(&users).Error
	if err != nil {
		return nil, 0, appErrors.Wrap(err, "Failed to list users")
	}
	return users, total, nil
}

// Create adds a user from the back office. Admin accounts may carry a role;
// the role must exist.
func (s *UserService) Create(ctx context.Context, principal *models.User, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := s.ensureUniqueEmail(ctx, input.Email, ""); err != nil {
		return nil, err
	}
	if input.RoleID != nil {
		if err := s.ensureRoleExists(ctx, *input.RoleID); err != nil {
			return nil, err
		}
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, "Failed to hash password")
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashed,
		IsAdmin:  input.IsAdmin,
		RoleID:   input.RoleID,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, emailTakenError()
		}
		return nil, appErrors.Wrap(err, "Failed to create user")
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "user.create",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{"email": user.Email, "is_admin": user.IsAdmin},
	})
	return s.GetByID(ctx, user.ID)
}

func (s *UserService) Update(ctx context.Context, principal *models.User, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureUniqueEmail(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
	}
	if input.RoleID != nil && *input.RoleID != "" {
		if err := s.ensureRoleExists(ctx, *input.RoleID); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Password != nil && *input.Password != "" {
		hashed, err := crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, "Failed to hash password")
		}
		updates["password"] = hashed
	}
	if input.RoleID != nil {
		if *input.RoleID == "" {
			// A plain nil map value is dropped by the SQL builder; the
			// expression forces role_id = NULL into the UPDATE.
			updates["role_id"] = gorm.Expr("NULL")
		} else {
			updates["role_id"] = *input.RoleID
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, emailTakenError()
			}
			return nil, appErrors.Wrap(err, "Failed to update user")
		}
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "user.update",
		Resource: user.ID,
		Result:   "success",
	})
	return s.GetByID(ctx, id)
}

// Delete removes a user. Principals cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, principal *models.User, id string) error {
	ctx = ensureContext(ctx)

	if principal != nil && principal.ID == id {
		return appErrors.NewBadRequest("You cannot delete your own account")
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return appErrors.Wrap(err, "Failed to delete user")
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   principalID(principal),
		Email:    principalEmail(principal),
		Action:   "user.delete",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{"email": user.Email},
	})
	return nil
}

func (s *UserService) ensureUniqueEmail(ctx context.Context, email, excludeID string) error {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return appErrors.Wrap(err, "Failed to check email")
	}
	if count > 0 {
		return emailTakenError()
	}
	return nil
}

func (s *UserService) ensureRoleExists(ctx context.Context, roleID string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Where("id = ?", roleID).
		Count(&count).Error
	if err != nil {
		return appErrors.Wrap(err, "Failed to check role")
	}
	if count == 0 {
		return appErrors.NewValidationFailed(map[string]string{
			"role_id": "The selected role id is invalid.",
		})
	}
	return nil
}

func emailTakenError() error {
	return appErrors.NewValidationFailed(map[string]string{
		"email": "The email has already been taken.",
	})
}
