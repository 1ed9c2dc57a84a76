package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tutormatch/backend/internal/middleware"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for tutor profile business logic.
type ProfileService interface {
	// Method CreateProfile creates a tutor profile for a user.
	//
	// Each user owns at most one profile. If a profile already exists, or the input violates a profile invariant, the error will be returned together with "nil" value.
	CreateProfile(ctx context.Context, userID int, req *models.CreateProfileRequest) (*models.ProfileResponse, error)
	// Method GetProfile retrieves a profile by ID.
	//
	// Hidden profiles are only returned to their owner; for other requesters the error will be returned together with "nil" value.
	GetProfile(ctx context.Context, profileID string, requesterID int) (*models.ProfileResponse, error)
	// Method GetOwnProfile retrieves the profile owned by the given user.
	//
	// If the user has no profile, the error will be returned together with "nil" value.
	GetOwnProfile(ctx context.Context, userID int) (*models.ProfileResponse, error)
	// Method GetProfileByUser retrieves the profile owned by another user.
	//
	// Hidden profiles are only returned to their owner; for other requesters the error will be returned together with "nil" value.
	GetProfileByUser(ctx context.Context, userID, requesterID int) (*models.ProfileResponse, error)
	// Method UpdateProfile applies a partial update to a profile.
	//
	// Only the owner may update a profile. If the resulting state would violate a profile invariant, the error will be returned together with "nil" value.
	UpdateProfile(ctx context.Context, profileID string, userID int, req *models.UpdateProfileRequest) (*models.ProfileResponse, error)
	// Method DeleteProfile removes a profile.
	//
	// Only the owner may delete a profile.
	DeleteProfile(ctx context.Context, profileID string, userID int) error
}

// ProfileHandler handles tutor profile HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers authenticated profile routes.
// The public read routes are registered separately via RegisterPublicRoutes.
// Routes are registered flat rather than via a mounted subrouter so that the
// static /profiles/me segment wins over the public /profiles/{id} pattern.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Post("/profiles", h.Create)
	r.Get("/profiles/me", h.GetOwn)
	r.Patch("/profiles/{id}", h.Update)
	r.Delete("/profiles/{id}", h.Delete)
}

// RegisterPublicRoutes registers profile routes that do not require authentication
func (h *ProfileHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/profiles/{id}", h.GetByID)
	r.Get("/profiles/user/{userID}", h.GetByUser)
}

// Create handles POST /profiles
// @Summary Create tutor profile
// @Description Create a tutor profile for the authenticated user. Each user owns at most one profile.
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body models.CreateProfileRequest true "Profile to create"
// @Success 201 {object} models.ProfileResponse
// @Failure 400 {object} map[string]string "Invalid request or profile already exists"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /profiles [post]
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateProfileRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.CreateProfile(r.Context(), userID, &req)
	if err != nil {
		h.logger.Warn("failed to create profile", zap.Int("user_id", userID), zap.Error(err))
		errStatus := http.StatusBadRequest
		if strings.Contains(err.Error(), "already exists") {
			errStatus = http.StatusConflict
		}
		h.respondError(w, errStatus, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, profile)
}

// GetByID handles GET /profiles/{id}
// @Summary Get profile by ID
// @Description Get a tutor profile by its ID. Hidden profiles are only visible to their owner.
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} models.ProfileResponse
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "id")

	// Anonymous requesters get ID 0, which never matches an owner
	requesterID, _ := middleware.GetUserID(r.Context())

	profile, err := h.profileService.GetProfile(r.Context(), profileID, requesterID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("failed to get profile", zap.String("profile_id", profileID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// GetByUser handles GET /profiles/user/{userID}
// @Summary Get profile by user ID
// @Description Get the tutor profile owned by a user. Hidden profiles are only visible to their owner.
// @Tags profiles
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /profiles/user/{userID} [get]
func (h *ProfileHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	requesterID, _ := middleware.GetUserID(r.Context())

	profile, err := h.profileService.GetProfileByUser(r.Context(), userID, requesterID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("failed to get profile by user", zap.Int("user_id", userID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// GetOwn handles GET /profiles/me
// @Summary Get own profile
// @Description Get the tutor profile owned by the authenticated user
// @Tags profiles
// @Produce json
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /profiles/me [get]
func (h *ProfileHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.profileService.GetOwnProfile(r.Context(), userID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("failed to get own profile", zap.Int("user_id", userID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// Update handles PATCH /profiles/{id}
// @Summary Update tutor profile
// @Description Apply a partial update to a tutor profile. Only the owner may update a profile.
// @Tags profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param request body models.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the profile owner"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /profiles/{id} [patch]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profileID := chi.URLParam(r, "id")

	var req models.UpdateProfileRequest
	if err := h.decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), profileID, userID, &req)
	if err != nil {
		h.logger.Warn("failed to update profile", zap.String("profile_id", profileID), zap.Error(err))
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.respondError(w, http.StatusNotFound, "profile not found")
		case strings.Contains(err.Error(), "not authorized"):
			h.respondError(w, http.StatusForbidden, "not authorized")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// Delete handles DELETE /profiles/{id}
// @Summary Delete tutor profile
// @Description Delete a tutor profile. Only the owner may delete a profile.
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} map[string]string "Profile deleted successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the profile owner"
// @Failure 404 {object} map[string]string "Profile not found"
// @Router /profiles/{id} [delete]
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profileID := chi.URLParam(r, "id")

	if err := h.profileService.DeleteProfile(r.Context(), profileID, userID); err != nil {
		h.logger.Warn("failed to delete profile", zap.String("profile_id", profileID), zap.Error(err))
		switch {
		case strings.Contains(err.Error(), "not found"):
			h.respondError(w, http.StatusNotFound, "profile not found")
		case strings.Contains(err.Error(), "not authorized"):
			h.respondError(w, http.StatusForbidden, "not authorized")
		default:
			h.respondError(w, http.StatusInternalServerError, "failed to delete profile")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "profile deleted successfully"})
}
