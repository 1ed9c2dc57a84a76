package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutormatch/backend/internal/models"
	"github.com/tutormatch/backend/internal/search"
	"github.com/tutormatch/backend/internal/services"
	"go.uber.org/zap"
)

// mockSearchService is a mock implementation of SearchService
type mockSearchService struct {
	result  *models.SearchResult
	err     error
	lastReq *models.SearchRequest
}

func (m *mockSearchService) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func setupSearchRouter(svc SearchService) *chi.Mux {
	handler := NewSearchHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestSearchHandler_Search(t *testing.T) {
	t.Run("success returns one page", func(t *testing.T) {
		mockSvc := &mockSearchService{
			result: &models.SearchResult{
				Items: []models.ProfileResponse{{ID: "p1"}},
				Total: 1,
				Skip:  0,
				Limit: 20,
			},
		}
		router := setupSearchRouter(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/profiles/search?q=math&level=secondary", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var result models.SearchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, 1, result.Total)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "p1", result.Items[0].ID)

		require.NotNil(t, mockSvc.lastReq)
		assert.Equal(t, "math", mockSvc.lastReq.Query)
		assert.Equal(t, "secondary", mockSvc.lastReq.EducationLevel)
	})

	t.Run("subjects accept repeated and comma-separated values", func(t *testing.T) {
		mockSvc := &mockSearchService{result: &models.SearchResult{Items: []models.ProfileResponse{}}}
		router := setupSearchRouter(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/profiles/search?subjects=math,physics&subjects=chemistry", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"math", "physics", "chemistry"}, mockSvc.lastReq.Subjects)
	})

	t.Run("geo parameters forwarded", func(t *testing.T) {
		mockSvc := &mockSearchService{result: &models.SearchResult{Items: []models.ProfileResponse{}}}
		router := setupSearchRouter(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/profiles/search?lat=36.8&lng=10.18&radius_km=25", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, mockSvc.lastReq.Latitude)
		assert.Equal(t, 36.8, *mockSvc.lastReq.Latitude)
		require.NotNil(t, mockSvc.lastReq.RadiusKm)
		assert.Equal(t, 25.0, *mockSvc.lastReq.RadiusKm)
	})

	t.Run("malformed number rejected", func(t *testing.T) {
		mockSvc := &mockSearchService{}
		router := setupSearchRouter(mockSvc)

		for _, target := range []string{
			"/profiles/search?lat=abc",
			"/profiles/search?radius_km=wide",
			"/profiles/search?skip=many",
			"/profiles/search?limit=1.5",
		} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, target)
		}
		// The service is never reached on parse failures
		assert.Nil(t, mockSvc.lastReq)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		mockSvc := &mockSearchService{err: &search.ValidationError{Field: "skip", Message: "must be greater than or equal to 0"}}
		router := setupSearchRouter(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/profiles/search?skip=-1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// skip=-1 parses fine; the service rejects it
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Contains(t, body["error"], "skip")
	})

	t.Run("store unavailable maps to 503", func(t *testing.T) {
		mockSvc := &mockSearchService{err: fmt.Errorf("%w: connection refused", services.ErrStoreUnavailable)}
		router := setupSearchRouter(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/profiles/search", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("unexpected error maps to 500", func(t *testing.T) {
		mockSvc := &mockSearchService{err: errors.New("boom")}
		router := setupSearchRouter(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/profiles/search", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
