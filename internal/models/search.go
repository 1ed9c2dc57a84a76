package models

// SearchRequest represents a tutor search invocation. All fields are
// optional; latitude, longitude and radius are all-or-nothing.
type SearchRequest struct {
	Subjects       []string `json:"subjects"`
	EducationLevel string   `json:"educationLevel"`
	TeachingMethod string   `json:"teachingMethod"`
	Query          string   `json:"q"`
	Latitude       *float64 `json:"lat"`
	Longitude      *float64 `json:"lng"`
	RadiusKm       *float64 `json:"radiusKm"`
	Skip           int      `json:"skip"`
	Limit          int      `json:"limit"`
}

// SearchResult represents one page of an ordered search result set.
// Total counts all matches independent of the page boundaries.
type SearchResult struct {
	Items []ProfileResponse `json:"items"`
	Total int               `json:"total"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}
