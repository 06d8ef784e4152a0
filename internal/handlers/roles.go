package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/services"
	"github.com/pharmagdd/catalog/pkg/response"
)

// RoleHandler serves role and permission management. Roles can be created
// and updated but never deleted; the seeded roles are load-bearing.
type RoleHandler struct {
	roles *services.RoleService
	users *services.UserService
}

func NewRoleHandler(roles *services.RoleService, users *services.UserService) *RoleHandler {
	return &RoleHandler{roles: roles, users: users}
}

type createRoleRequest struct {
	Code           string   `json:"code" validate:"required,max=64"`
	Name           string   `json:"name" validate:"required,max=255"`
	Description    string   `json:"description" validate:"max=1024"`
	AllPermissions bool     `json:"all_permissions"`
	Permissions    []string `json:"permissions"`
}

type updateRoleRequest struct {
	Name           *string  `json:"name" validate:"omitempty,max=255"`
	Description    *string  `json:"description" validate:"omitempty,max=1024"`
	AllPermissions *bool    `json:"all_permissions"`
	Permissions    []string `json:"permissions"`
}

// GET /api/admin/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GET /api/admin/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// POST /api/admin/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req createRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	role, err := h.roles.Create(c.Request.Context(), principal, services.CreateRoleInput{
		Code:           req.Code,
		Name:           req.Name,
		Description:    req.Description,
		AllPermissions: req.AllPermissions,
		Permissions:    req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, role)
}

// PUT /api/admin/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	role, err := h.roles.Update(c.Request.Context(), principal, c.Param("id"), services.UpdateRoleInput{
		Name:           req.Name,
		Description:    req.Description,
		AllPermissions: req.AllPermissions,
		Permissions:    req.Permissions,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, role)
}

// GET /api/admin/permissions
func (h *RoleHandler) Permissions(c *gin.Context) {
	perms, err := h.roles.ListPermissions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}
