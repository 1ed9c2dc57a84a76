package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tutormatch/backend/internal/config"
	"github.com/tutormatch/backend/internal/models"
	"github.com/tutormatch/backend/internal/search"
	"go.uber.org/zap"
)

// ErrStoreUnavailable indicates the profile store failed to respond or the
// call deadline was exceeded. Retryable by the caller; never retried here.
var ErrStoreUnavailable = errors.New("profile store unavailable")

// ProfileSearchRepository is the interface that wraps the profile store
// capabilities the search engine needs
type ProfileSearchRepository interface {
	// SearchVisible retrieves all visible profiles matching the structural
	// predicates, ordered by updated_at descending with profile ID ascending
	// as the tie-break.
	//
	// If some error occurs during retrieval, the error will be returned
	// together with "nil" value.
	SearchVisible(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	// CountVisible counts visible profiles matching the structural
	// predicates. The count precedes the geo post-filter and is used as a
	// capacity hint, not as the reported total.
	//
	// If some error occurs during counting, the error will be returned
	// together with "0" value.
	CountVisible(ctx context.Context, filter models.ProfileFilter) (int, error)
}

// searchService orchestrates tutor profile search: it compiles the request,
// pushes structural predicates down to the store, applies free-text
// relevance ordering and the geo radius post-filter, and paginates.
// Stateless and reentrant; safe for concurrent use.
type searchService struct {
	profileRepo ProfileSearchRepository
	logger      *zap.Logger
	cfg         config.SearchConfig
}

// NewSearchService creates a new search service with explicit tuning so
// behavior is deterministic per configuration
func NewSearchService(profileRepo ProfileSearchRepository, logger *zap.Logger, cfg config.SearchConfig) *searchService {
	return &searchService{
		profileRepo: profileRepo,
		logger:      logger,
		cfg:         cfg,
	}
}

// scoredProfile pairs a candidate with its free-text relevance score
type scoredProfile struct {
	profile models.Profile
	score   int
}

// Search executes a tutor search request and returns one page of results.
// Validation failures surface as *search.ValidationError before any store
// access; store failures surface wrapped in ErrStoreUnavailable.
func (s *searchService) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error) {
	compiled, err := search.Compile(req, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	if err != nil {
		return nil, err
	}
	filter := compiled.Filter()

	// The candidate fetch and the structural count have no data dependency,
	// so issue them concurrently.
	var (
		profiles   []models.Profile
		storeCount int
	)
	errChan := make(chan error, 2)
	go func() {
		var err error
		profiles, err = s.profileRepo.SearchVisible(ctx, filter)
		errChan <- err
	}()
	go func() {
		var err error
		storeCount, err = s.profileRepo.CountVisible(ctx, filter)
		errChan <- err
	}()
	for i := 0; i < 2; i++ {
		if err := <-errChan; err != nil {
			s.logger.Error("profile store query failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	// Geo post-filter and relevance scoring over the structural candidates.
	// The structural count bounds the candidate set, so use it as capacity.
	candidates := make([]scoredProfile, 0, storeCount)
	for _, profile := range profiles {
		if compiled.Geo != nil && !search.WithinRadius(
			compiled.Geo.Latitude, compiled.Geo.Longitude,
			profile.Latitude, profile.Longitude,
			compiled.Geo.RadiusKm, s.cfg.EarthRadiusKm,
		) {
			continue
		}
		candidates = append(candidates, scoredProfile{
			profile: profile,
			score:   search.Score(compiled.Terms, profile.Bio, profile.Subjects),
		})
	}

	// Without free-text terms the store order (updated_at DESC, id ASC)
	// already holds; with terms, order by score first.
	if len(compiled.Terms) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			if !candidates[i].profile.UpdatedAt.Equal(candidates[j].profile.UpdatedAt) {
				return candidates[i].profile.UpdatedAt.After(candidates[j].profile.UpdatedAt)
			}
			return candidates[i].profile.ID < candidates[j].profile.ID
		})
	}

	total := len(candidates)

	// Page window; a skip past the end yields an empty page, never an error
	start := compiled.Skip
	if start > total {
		start = total
	}
	end := start + compiled.Limit
	if end > total {
		end = total
	}

	items := make([]models.ProfileResponse, 0, end-start)
	for _, candidate := range candidates[start:end] {
		items = append(items, candidate.profile.ToResponse())
	}

	return &models.SearchResult{
		Items: items,
		Total: total,
		Skip:  compiled.Skip,
		Limit: compiled.Limit,
	}, nil
}
