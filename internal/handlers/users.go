package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmagdd/catalog/internal/services"
	"github.com/pharmagdd/catalog/pkg/response"
)

// UserHandler serves the back-office user management endpoints.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8"`
	IsAdmin  bool    `json:"is_admin"`
	RoleID   *string `json:"role_id" validate:"omitempty,uuid4"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	RoleID   *string `json:"role_id"`
}

// GET /api/admin/users
func (h *UserHandler) List(c *gin.Context) {
	opts := services.ListUsersOptions{
		Search:     c.Query("search"),
		AdminsOnly: parseBoolQuery(c, "admins_only"),
		Page:       parseIntQuery(c, "page", 1),
	}

	users, total, err := h.users.List(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, paginationMeta(opts.Page, adminPerPage, total))
}

// GET /api/admin/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// POST /api/admin/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
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
		IsAdmin:  req.IsAdmin,
		RoleID:   req.RoleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// PUT /api/admin/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), principal, c.Param("id"), services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// DELETE /api/admin/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	principal, err := loadPrincipal(c, h.users)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.users.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "User deleted"})
}
