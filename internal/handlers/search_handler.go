package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tutormatch/backend/internal/models"
	"github.com/tutormatch/backend/internal/search"
	"github.com/tutormatch/backend/internal/services"
	"go.uber.org/zap"
)

// SearchService is the interface that wraps methods for tutor search business logic.
type SearchService interface {
	// Method Search executes a tutor search request and returns one page of results.
	//
	// Validation failures surface as *search.ValidationError. Store failures surface wrapped in services.ErrStoreUnavailable.
	// If some error occurs, the error will be returned together with "nil" value.
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error)
}

// SearchHandler handles tutor search HTTP requests
type SearchHandler struct {
	BaseHandler
	searchService SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		BaseHandler:   BaseHandler{logger: logger},
		searchService: searchService,
	}
}

// RegisterRoutes registers the search route. Search is anonymous.
func (h *SearchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/profiles/search", h.Search)
}

// Search handles GET /profiles/search
// @Summary Search tutor profiles
// @Description Search visible tutor profiles by subjects, education level, teaching method, free text and geo radius. Filters combine conjunctively; values within the subjects filter combine disjunctively.
// @Tags search
// @Produce json
// @Param subjects query []string false "Subject filter, repeated or comma-separated"
// @Param level query string false "Education level: primary, secondary or university"
// @Param method query string false "Teaching method: online, in-person or hybrid"
// @Param q query string false "Free-text query over bio and subjects"
// @Param lat query number false "Query latitude; requires lng and radius_km"
// @Param lng query number false "Query longitude; requires lat and radius_km"
// @Param radius_km query number false "Search radius in kilometers; requires lat and lng"
// @Param skip query int false "Number of results to skip, default 0"
// @Param limit query int false "Page size, default 20, max 100"
// @Success 200 {object} models.SearchResult
// @Failure 400 {object} map[string]string "Invalid search parameter"
// @Failure 503 {object} map[string]string "Profile store unavailable"
// @Router /profiles/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.searchService.Search(r.Context(), req)
	if err != nil {
		var validationErr *search.ValidationError
		if errors.As(err, &validationErr) {
			h.respondError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		if errors.Is(err, services.ErrStoreUnavailable) {
			h.respondError(w, http.StatusServiceUnavailable, "profile store unavailable")
			return
		}
		h.logger.Error("failed to search profiles", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to search profiles")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// parseSearchRequest maps query parameters onto a search request.
// Malformed numbers are rejected here; semantic validation happens in the
// search service.
func parseSearchRequest(r *http.Request) (*models.SearchRequest, error) {
	query := r.URL.Query()
	req := &models.SearchRequest{
		EducationLevel: query.Get("level"),
		TeachingMethod: query.Get("method"),
		Query:          query.Get("q"),
	}

	// Subjects accept both repeated parameters and comma-separated values
	for _, raw := range query["subjects"] {
		for _, subject := range strings.Split(raw, ",") {
			if subject = strings.TrimSpace(subject); subject != "" {
				req.Subjects = append(req.Subjects, subject)
			}
		}
	}

	var err error
	if req.Latitude, err = parseFloatParam(query.Get("lat"), "lat"); err != nil {
		return nil, err
	}
	if req.Longitude, err = parseFloatParam(query.Get("lng"), "lng"); err != nil {
		return nil, err
	}
	if req.RadiusKm, err = parseFloatParam(query.Get("radius_km"), "radius_km"); err != nil {
		return nil, err
	}
	if req.Skip, err = parseIntParam(query.Get("skip"), "skip"); err != nil {
		return nil, err
	}
	if req.Limit, err = parseIntParam(query.Get("limit"), "limit"); err != nil {
		return nil, err
	}

	return req, nil
}

// parseFloatParam parses an optional float query parameter
func parseFloatParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be a number", name)
	}
	return &value, nil
}

// parseIntParam parses an optional integer query parameter, defaulting to 0
func parseIntParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return value, nil
}
