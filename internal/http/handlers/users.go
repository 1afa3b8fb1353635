package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/config"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

// UserService is the slice of the credential store the user routes consume.
// Kept as a handler-site interface so tests can fake it.
type UserService interface {
	Create(ctx context.Context, username, password string, scope []string) (int64, error)
	Read(ctx context.Context, id int64) (users.View, error)
	Update(ctx context.Context, id int64, input users.UpdateInput) (users.View, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, limit int) (users.Page, error)
}

type UsersHandler struct {
	svc UserService
}

func NewUsersHandler(svc UserService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

type CreateUserRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Password string   `json:"password" binding:"required,min=3,max=50"`
	Scope    []string `json:"scope" binding:"omitempty,dive,oneof=user admin"`
}

type UpdateUserRequest struct {
	Password *string  `json:"password" binding:"omitempty,min=3,max=50"`
	Scope    []string `json:"scope" binding:"omitempty,dive,oneof=user admin"`
}

type ListUsersQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// scope defaults at the boundary, never inside the store
	if len(req.Scope) == 0 {
		req.Scope = []string{users.ScopeUser}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	id, err := h.svc.Create(cctx, req.Username, req.Password, req.Scope)

	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			RespondBadRequest(ctx, "Username already taken", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"message": fmt.Sprintf("Created user with id %d", id),
	})
}

func (h *UsersHandler) ReadUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	view, err := h.svc.Read(cctx, id)

	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, view)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	view, err := h.svc.Update(cctx, id, users.UpdateInput{
		Password: req.Password,
		Scope:    req.Scope,
	})

	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": fmt.Sprintf("Updated user %d", view.ID),
	})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	err := h.svc.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	var query ListUsersQuery

	if !BindQuery(ctx, &query) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	page, err := h.svc.List(cctx, query.Page, query.Limit)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, page)
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "Invalid user id", nil)
		return 0, false
	}

	return id, true
}
