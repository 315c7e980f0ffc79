package user

import (
	"context"
	"encoding/json"
	"net/http"

	"shoplist/internal/api/respond"
	"shoplist/internal/domain"
	apperror "shoplist/internal/errors"
	"shoplist/internal/pkg/logger"
	"shoplist/internal/pkg/middleware"
)

// UserService is the slice of the user layer the API handlers need.
type UserService interface {
	LoginToken(ctx context.Context, email, password string) (string, domain.User, error)
	ElevateRole(ctx context.Context, actor domain.User, userID string, role domain.Role) error
}

// LoginRequest is the credentials body for the API login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RoleRequest is the body for the role elevation operation.
type RoleRequest struct {
	Role domain.Role `json:"role"`
}

// Handler groups the user API handlers.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler creates the user API handler.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// Login handles POST /api/v1/login.
// @Summary Authenticate and obtain a bearer token
// @Description Credentials are keyed by email. Invalid email and wrong password are indistinguishable in the response.
// @Tags users
// @Accept json
// @Produce json
// @Param login body LoginRequest true "credentials"
// @Success 200 {object} map[string]string "token"
// @Failure 401 {object} domain.ErrorResponse
// @Router /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Logger, apperror.NewValidationError("invalid JSON payload"))
		return
	}

	tokenString, _, err := h.Service.LoginToken(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

// ElevateRole handles PUT /api/v1/users/{id}/role.
// @Summary Change a user's role
// @Description Admin-only. This is the only path that assigns elevated roles; registration never does.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "user identifier"
// @Param role body RoleRequest true "new role"
// @Success 204 "role changed"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Router /users/{id}/role [put]
func (h *Handler) ElevateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond.Error(w, h.Logger, apperror.NewUnauthorizedError("authentication required"))
		return
	}

	var req RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Logger, apperror.NewValidationError("invalid JSON payload"))
		return
	}

	if err := h.Service.ElevateRole(r.Context(), actor, r.PathValue("id"), req.Role); err != nil {
		respond.Error(w, h.Logger, err)
		return
	}
	respond.JSON(w, http.StatusNoContent, nil)
}
