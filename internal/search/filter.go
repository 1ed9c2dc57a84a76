package search

import (
	"fmt"
	"strings"

	"github.com/tutormatch/backend/internal/models"
)

// ValidationError reports a malformed or contradictory search request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// GeoFilter is a compiled geographic radius filter
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// CompiledQuery is the executable form of a search request: the structural
// predicates pushed down to the store, the free-text terms used for
// relevance scoring, the optional geo post-filter and the page window.
type CompiledQuery struct {
	Subjects       []string
	EducationLevel string
	TeachingMethod string
	Terms          []string
	Geo            *GeoFilter
	Skip           int
	Limit          int
}

// Filter returns the structural predicates of the compiled query in the
// form the profile store accepts.
func (q *CompiledQuery) Filter() models.ProfileFilter {
	return models.ProfileFilter{
		Subjects:       q.Subjects,
		Level:          q.EducationLevel,
		TeachingMethod: q.TeachingMethod,
	}
}

// Compile validates a raw search request and turns it into a CompiledQuery.
// Limit is clamped to [1, maxPageSize] with defaultPageSize substituted when
// absent; all other out-of-range inputs fail with a ValidationError naming
// the offending field.
func Compile(req *models.SearchRequest, defaultPageSize, maxPageSize int) (*CompiledQuery, error) {
	if req.Skip < 0 {
		return nil, &ValidationError{Field: "skip", Message: "must be greater than or equal to 0"}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if req.EducationLevel != "" && !models.ValidEducationLevel(req.EducationLevel) {
		return nil, &ValidationError{Field: "educationLevel", Message: "unknown education level"}
	}
	if req.TeachingMethod != "" && !models.ValidTeachingMethod(req.TeachingMethod) {
		return nil, &ValidationError{Field: "teachingMethod", Message: "unknown teaching method"}
	}

	geo, err := compileGeo(req)
	if err != nil {
		return nil, err
	}

	return &CompiledQuery{
		Subjects:       NormalizeTags(req.Subjects),
		EducationLevel: req.EducationLevel,
		TeachingMethod: req.TeachingMethod,
		Terms:          Tokenize(req.Query),
		Geo:            geo,
		Skip:           req.Skip,
		Limit:          limit,
	}, nil
}

// compileGeo validates the all-or-nothing location triple
func compileGeo(req *models.SearchRequest) (*GeoFilter, error) {
	if req.Latitude == nil && req.Longitude == nil && req.RadiusKm == nil {
		return nil, nil
	}
	if req.Latitude == nil {
		return nil, &ValidationError{Field: "lat", Message: "required when lng or radiusKm is set"}
	}
	if req.Longitude == nil {
		return nil, &ValidationError{Field: "lng", Message: "required when lat or radiusKm is set"}
	}
	if req.RadiusKm == nil {
		return nil, &ValidationError{Field: "radiusKm", Message: "required when lat or lng is set"}
	}
	if *req.Latitude < -90 || *req.Latitude > 90 {
		return nil, &ValidationError{Field: "lat", Message: "must be between -90 and 90"}
	}
	if *req.Longitude < -180 || *req.Longitude > 180 {
		return nil, &ValidationError{Field: "lng", Message: "must be between -180 and 180"}
	}
	if *req.RadiusKm <= 0 {
		return nil, &ValidationError{Field: "radiusKm", Message: "must be greater than 0"}
	}

	return &GeoFilter{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		RadiusKm:  *req.RadiusKm,
	}, nil
}

// NormalizeTags trims and case-folds subject tags, dropping empties and
// collapsing duplicates. Comma-joined values are split into separate tags,
// so a normalized tag never contains a comma and survives the store's
// comma-separated set encoding. An empty result means "no filter".
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, raw := range tags {
		for _, tag := range strings.Split(raw, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			normalized = append(normalized, tag)
		}
	}

	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

// Tokenize case-folds a free-text query and splits it on whitespace into a
// deduplicated set of terms. An empty query yields no terms.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	if len(fields) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		terms = append(terms, field)
	}

	return terms
}

// Score counts the distinct query terms that appear as whole tokens in the
// profile bio or subject tags. Used for relevance ordering.
func Score(terms []string, bio string, subjects []string) int {
	if len(terms) == 0 {
		return 0
	}

	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(bio)) {
		tokens[strings.Trim(token, ".,;:!?()\"'")] = struct{}{}
	}
	for _, subject := range subjects {
		for _, token := range strings.Fields(strings.ToLower(subject)) {
			tokens[token] = struct{}{}
		}
	}

	score := 0
	for _, term := range terms {
		if _, ok := tokens[term]; ok {
			score++
		}
	}
	return score
}
