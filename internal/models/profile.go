package models

import "time"

// Education levels a tutor can teach
const (
	LevelPrimary    = "primary"
	LevelSecondary  = "secondary"
	LevelUniversity = "university"
)

// Teaching methods
const (
	MethodOnline   = "online"
	MethodInPerson = "in-person"
	MethodHybrid   = "hybrid"
)

// ValidEducationLevel reports whether level is a known education level
func ValidEducationLevel(level string) bool {
	switch level {
	case LevelPrimary, LevelSecondary, LevelUniversity:
		return true
	}
	return false
}

// ValidTeachingMethod reports whether method is a known teaching method
func ValidTeachingMethod(method string) bool {
	switch method {
	case MethodOnline, MethodInPerson, MethodHybrid:
		return true
	}
	return false
}

// Profile represents a tutor profile as stored in the database
type Profile struct {
	ID                string    `json:"id"`
	UserID            int       `json:"userId"`
	Bio               string    `json:"bio"`
	ProfilePicture    string    `json:"profilePicture,omitempty"`
	YearsOfExperience string    `json:"yearsOfExperience,omitempty"`
	Subjects          []string  `json:"subjects"`
	Levels            []string  `json:"levels"`
	TeachingMethod    string    `json:"teachingMethod,omitempty"`
	HourlyRate        *float64  `json:"hourlyRate,omitempty"`
	Currency          string    `json:"currency"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	Visible           bool      `json:"visible"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateProfileRequest represents a profile creation request
type CreateProfileRequest struct {
	Bio               string   `json:"bio"`
	ProfilePicture    string   `json:"profilePicture"`
	YearsOfExperience string   `json:"yearsOfExperience"`
	Subjects          []string `json:"subjects"`
	Levels            []string `json:"levels"`
	TeachingMethod    string   `json:"teachingMethod"`
	HourlyRate        *float64 `json:"hourlyRate"`
	Currency          string   `json:"currency"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Visible           bool     `json:"visible"`
}

// UpdateProfileRequest represents a partial profile update.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Bio               *string   `json:"bio"`
	ProfilePicture    *string   `json:"profilePicture"`
	YearsOfExperience *string   `json:"yearsOfExperience"`
	Subjects          *[]string `json:"subjects"`
	Levels            *[]string `json:"levels"`
	TeachingMethod    *string   `json:"teachingMethod"`
	HourlyRate        *float64  `json:"hourlyRate"`
	Currency          *string   `json:"currency"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	Visible           *bool     `json:"visible"`
}

// ProfileResponse represents the public projection of a tutor profile
type ProfileResponse struct {
	ID                string    `json:"id"`
	UserID            int       `json:"userId"`
	Bio               string    `json:"bio"`
	ProfilePicture    string    `json:"profilePicture,omitempty"`
	YearsOfExperience string    `json:"yearsOfExperience,omitempty"`
	Subjects          []string  `json:"subjects"`
	Levels            []string  `json:"levels"`
	TeachingMethod    string    `json:"teachingMethod,omitempty"`
	HourlyRate        *float64  `json:"hourlyRate,omitempty"`
	Currency          string    `json:"currency"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ToResponse shapes a stored profile into its public projection
func (p *Profile) ToResponse() ProfileResponse {
	return ProfileResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		Bio:               p.Bio,
		ProfilePicture:    p.ProfilePicture,
		YearsOfExperience: p.YearsOfExperience,
		Subjects:          p.Subjects,
		Levels:            p.Levels,
		TeachingMethod:    p.TeachingMethod,
		HourlyRate:        p.HourlyRate,
		Currency:          p.Currency,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ProfileFilter holds the structural predicates pushed down to the
// profile store. All fields are optional; present fields combine with AND,
// subjects match with OR within the field.
type ProfileFilter struct {
	Subjects       []string
	Level          string
	TeachingMethod string
}
