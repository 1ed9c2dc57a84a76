package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tutormatch/backend/internal/middleware"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user account business logic.
type UserService interface {
	// Method GetUser retrieves public account information for a user.
	//
	// If user with such ID does not exist, the error will be returned together with "nil" value.
	GetUser(ctx context.Context, userID int) (*models.UserResponse, error)
	// Method UpdateUser updates username and/or email of a user.
	//
	// Empty fields are left unchanged. If the new email or username is already taken, or the input is invalid, the error will be returned.
	UpdateUser(ctx context.Context, userID int, username, email string) error
	// Method ChangePassword verifies the current password and replaces it with a new one.
	//
	// If the current password is incorrect, or the new password does not satisfy the policy, the error will be returned.
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
}

// UserHandler handles user account HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes.
// All routes require authentication; the middleware is applied by the caller.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.GetMe)
		r.Patch("/me", h.UpdateMe)
		r.Post("/me/password", h.ChangePassword)
	})
}

// GetMe handles GET /users/me
// @Summary Get current user
// @Description Get the account information of the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to get user", zap.Int("user_id", userID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me
// @Summary Update current user
// @Description Update username and/or email of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.UpdateUserRequest true "Update request"
// @Success 200 {object} map[string]string "User updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.UpdateUserRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.UpdateUser(r.Context(), userID, req.Username, req.Email); err != nil {
		h.logger.Warn("failed to update user", zap.Int("user_id", userID), zap.Error(err))
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "not found") {
			errStatus = http.StatusNotFound
		}
		h.respondError(w, errStatus, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "user updated successfully"})
}

// ChangePassword handles POST /users/me/password
// @Summary Change password
// @Description Change the password of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Change password request"
// @Success 200 {object} map[string]string "Password changed successfully"
// @Failure 400 {object} map[string]string "Invalid request or password policy violation"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users/me/password [post]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.logger.Warn("failed to change password", zap.Int("user_id", userID), zap.Error(err))
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}
