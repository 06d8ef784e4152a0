package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/pharmagdd/catalog/internal/auth"
	"github.com/pharmagdd/catalog/internal/services"
	"github.com/pharmagdd/catalog/pkg/response"
)

// AdminAuthHandler manages back-office authentication. It shares the session
// machinery with the storefront but only accepts admin accounts.
type AdminAuthHandler struct {
	auth  *AuthHandler
	users *services.UserService
	roles *services.RoleService
}

func NewAdminAuthHandler(users *services.UserService, sessions *iauth.SessionService, roles *services.RoleService) *AdminAuthHandler {
	return &AdminAuthHandler{
		auth:  NewAuthHandler(users, sessions),
		users: users,
		roles: roles,
	}
}

type createAdminRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8"`
	RoleID   *string `json:"role_id" validate:"omitempty,uuid4"`
}

// POST /api/admin/auth/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	h.auth.login(c, true)
}

// POST /api/admin/auth/register
func (h *AdminAuthHandler) Register(c *gin.Context) {
	var req createAdminRequest
	if !bindAndValidate(c, &req) {
		return
	}

	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), principal, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  true,
		RoleID:   req.RoleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, userPayload(user))
}

// GET /api/admin/auth/me
func (h *AdminAuthHandler) Me(c *gin.Context) {
	h.auth.Me(c)
}

// POST /api/admin/auth/logout
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	h.auth.Logout(c)
}

// POST /api/admin/auth/refresh
func (h *AdminAuthHandler) Refresh(c *gin.Context) {
	h.auth.Refresh(c)
}

// GET /api/admin/auth/roles
//
// Feeds the role selector on the admin registration form, so it only
// exposes id, code, and name.
func (h *AdminAuthHandler) Roles(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]gin.H, 0, len(roles))
	for _, role := range roles {
		out = append(out, gin.H{"id": role.ID, "code": role.Code, "name": role.Name})
	}
	response.Success(c, http.StatusOK, out)
}
