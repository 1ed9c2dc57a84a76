package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutormatch/backend/internal/auth"
	"github.com/tutormatch/backend/internal/middleware"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
)

// mockProfileService is a mock implementation of ProfileService
type mockProfileService struct {
	profile         *models.ProfileResponse
	ownerID         int
	hidden          bool
	lastRequesterID int
}

func (m *mockProfileService) CreateProfile(ctx context.Context, userID int, req *models.CreateProfileRequest) (*models.ProfileResponse, error) {
	return m.profile, nil
}

func (m *mockProfileService) GetProfile(ctx context.Context, profileID string, requesterID int) (*models.ProfileResponse, error) {
	m.lastRequesterID = requesterID
	if m.profile == nil || (m.hidden && requesterID != m.ownerID) {
		return nil, errors.New("profile not found")
	}
	return m.profile, nil
}

func (m *mockProfileService) GetOwnProfile(ctx context.Context, userID int) (*models.ProfileResponse, error) {
	return m.profile, nil
}

func (m *mockProfileService) GetProfileByUser(ctx context.Context, userID, requesterID int) (*models.ProfileResponse, error) {
	m.lastRequesterID = requesterID
	if m.profile == nil || (m.hidden && requesterID != m.ownerID) {
		return nil, errors.New("profile not found")
	}
	return m.profile, nil
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, profileID string, userID int, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	return m.profile, nil
}

func (m *mockProfileService) DeleteProfile(ctx context.Context, profileID string, userID int) error {
	return nil
}

// setupPublicProfileRouter wires the public profile routes the way the
// server does: behind optional authentication.
func setupPublicProfileRouter(svc ProfileService, tokenGenerator *auth.TokenGenerator) *chi.Mux {
	handler := NewProfileHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(tokenGenerator))
		handler.RegisterPublicRoutes(r)
	})
	return r
}

func TestProfileHandler_HiddenProfileVisibility(t *testing.T) {
	tokenGenerator := auth.NewTokenGenerator("test-secret", time.Hour, time.Hour)
	ownerToken, _, err := tokenGenerator.GenerateTokens(42, int(models.RoleUser))
	require.NoError(t, err)

	newMock := func() *mockProfileService {
		return &mockProfileService{
			profile: &models.ProfileResponse{ID: "p1", UserID: 42},
			ownerID: 42,
			hidden:  true,
		}
	}

	t.Run("owner token reaches the service on the public read", func(t *testing.T) {
		mockSvc := newMock()
		router := setupPublicProfileRouter(mockSvc, tokenGenerator)

		req := httptest.NewRequest(http.MethodGet, "/profiles/p1", nil)
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 42, mockSvc.lastRequesterID)
	})

	t.Run("anonymous request gets 404 for a hidden profile", func(t *testing.T) {
		mockSvc := newMock()
		router := setupPublicProfileRouter(mockSvc, tokenGenerator)

		req := httptest.NewRequest(http.MethodGet, "/profiles/p1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 0, mockSvc.lastRequesterID)
	})

	t.Run("garbage token is treated as anonymous", func(t *testing.T) {
		mockSvc := newMock()
		router := setupPublicProfileRouter(mockSvc, tokenGenerator)

		req := httptest.NewRequest(http.MethodGet, "/profiles/p1", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 0, mockSvc.lastRequesterID)
	})

	t.Run("owner token reaches the service on the by-user read", func(t *testing.T) {
		mockSvc := newMock()
		router := setupPublicProfileRouter(mockSvc, tokenGenerator)

		req := httptest.NewRequest(http.MethodGet, "/profiles/user/42", nil)
		req.Header.Set("Authorization", "Bearer "+ownerToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 42, mockSvc.lastRequesterID)
	})
}
