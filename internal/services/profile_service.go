package services

import (
	"context"
	"fmt"

	"github.com/tutormatch/backend/internal/models"
	"github.com/tutormatch/backend/internal/search"
	"go.uber.org/zap"
)

// maxBioLength bounds the free-text bio field
const maxBioLength = 1000

// defaultCurrency is applied when a profile is created without one
const defaultCurrency = "TND"

// ProfileRepository is the interface that wraps methods for Profile table
// data access
type ProfileRepository interface {
	// Create inserts a new profile together with its subject and level tags.
	//
	// If some error occurs during profile creation, the error will be
	// returned.
	Create(ctx context.Context, profile *models.Profile) error
	// GetByID retrieves a profile by its ID.
	//
	// If profile with such ID does not exist, the error will be returned
	// together with "nil" value.
	GetByID(ctx context.Context, profileID string) (*models.Profile, error)
	// GetByUserID retrieves the profile owned by a user.
	//
	// If the user has no profile, the error will be returned together with
	// "nil" value.
	GetByUserID(ctx context.Context, userID int) (*models.Profile, error)
	// Update applies the non-nil fields of the request to a profile.
	Update(ctx context.Context, profileID string, req *models.UpdateProfileRequest) error
	// Delete removes a profile and its tags.
	Delete(ctx context.Context, profileID string) error
}

// profileService implements tutor profile business logic
type profileService struct {
	profileRepo ProfileRepository
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo ProfileRepository, logger *zap.Logger) *profileService {
	return &profileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// CreateProfile creates a tutor profile for a user. Each user owns at most
// one profile.
func (s *profileService) CreateProfile(ctx context.Context, userID int, req *models.CreateProfileRequest) (*models.ProfileResponse, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	if existing, _ := s.profileRepo.GetByUserID(ctx, userID); existing != nil {
		return nil, fmt.Errorf("profile already exists")
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	profile := &models.Profile{
		UserID:            userID,
		Bio:               req.Bio,
		ProfilePicture:    req.ProfilePicture,
		YearsOfExperience: req.YearsOfExperience,
		Subjects:          search.NormalizeTags(req.Subjects),
		Levels:            search.NormalizeTags(req.Levels),
		TeachingMethod:    req.TeachingMethod,
		HourlyRate:        req.HourlyRate,
		Currency:          currency,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Visible:           req.Visible,
	}

	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		s.logger.Error("failed to create profile", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	response := profile.ToResponse()
	return &response, nil
}

// GetProfile retrieves a profile by ID. Hidden profiles are only returned to
// their owner.
func (s *profileService) GetProfile(ctx context.Context, profileID string, requesterID int) (*models.ProfileResponse, error) {
	if profileID == "" {
		return nil, fmt.Errorf("invalid profile id")
	}

	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if !profile.Visible && profile.UserID != requesterID {
		return nil, fmt.Errorf("profile not found")
	}

	response := profile.ToResponse()
	return &response, nil
}

// GetOwnProfile retrieves the profile owned by the given user
func (s *profileService) GetOwnProfile(ctx context.Context, userID int) (*models.ProfileResponse, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := profile.ToResponse()
	return &response, nil
}

// GetProfileByUser retrieves the profile owned by another user. Hidden
// profiles are only returned when the requester is the owner.
func (s *profileService) GetProfileByUser(ctx context.Context, userID, requesterID int) (*models.ProfileResponse, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.Visible && profile.UserID != requesterID {
		return nil, fmt.Errorf("profile not found")
	}

	response := profile.ToResponse()
	return &response, nil
}

// UpdateProfile applies a partial update to a profile after verifying
// ownership and that the resulting state stays valid
func (s *profileService) UpdateProfile(ctx context.Context, profileID string, userID int, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if profile.UserID != userID {
		return nil, fmt.Errorf("not authorized")
	}

	if req.Subjects != nil {
		normalized := search.NormalizeTags(*req.Subjects)
		req.Subjects = &normalized
	}
	if req.Levels != nil {
		normalized := search.NormalizeTags(*req.Levels)
		req.Levels = &normalized
	}

	// Validate the state the update would produce, not just the delta
	merged := *profile
	applyUpdate(&merged, req)
	if err := validateProfile(&merged); err != nil {
		return nil, err
	}

	if err := s.profileRepo.Update(ctx, profileID, req); err != nil {
		s.logger.Error("failed to update profile", zap.String("profile_id", profileID), zap.Error(err))
		return nil, err
	}

	updated, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	response := updated.ToResponse()
	return &response, nil
}

// DeleteProfile removes a profile after verifying ownership
func (s *profileService) DeleteProfile(ctx context.Context, profileID string, userID int) error {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return err
	}

	if profile.UserID != userID {
		return fmt.Errorf("not authorized")
	}

	return s.profileRepo.Delete(ctx, profileID)
}

// applyUpdate merges the non-nil request fields into a profile copy
func applyUpdate(profile *models.Profile, req *models.UpdateProfileRequest) {
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.ProfilePicture != nil {
		profile.ProfilePicture = *req.ProfilePicture
	}
	if req.YearsOfExperience != nil {
		profile.YearsOfExperience = *req.YearsOfExperience
	}
	if req.Subjects != nil {
		profile.Subjects = *req.Subjects
	}
	if req.Levels != nil {
		profile.Levels = *req.Levels
	}
	if req.TeachingMethod != nil {
		profile.TeachingMethod = *req.TeachingMethod
	}
	if req.HourlyRate != nil {
		profile.HourlyRate = req.HourlyRate
	}
	if req.Currency != nil {
		profile.Currency = *req.Currency
	}
	if req.Latitude != nil {
		profile.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		profile.Longitude = req.Longitude
	}
	if req.Visible != nil {
		profile.Visible = *req.Visible
	}
}

// validateProfile checks the field-level and cross-field profile invariants
func validateProfile(profile *models.Profile) error {
	if len(profile.Bio) > maxBioLength {
		return fmt.Errorf("bio must be at most %d characters", maxBioLength)
	}

	if profile.TeachingMethod != "" && !models.ValidTeachingMethod(profile.TeachingMethod) {
		return fmt.Errorf("invalid teaching method: %s", profile.TeachingMethod)
	}

	for _, level := range profile.Levels {
		if !models.ValidEducationLevel(level) {
			return fmt.Errorf("invalid education level: %s", level)
		}
	}

	if profile.HourlyRate != nil && *profile.HourlyRate < 0 {
		return fmt.Errorf("hourly rate must not be negative")
	}

	if (profile.Latitude == nil) != (profile.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be provided together")
	}
	if profile.Latitude != nil {
		if *profile.Latitude < -90 || *profile.Latitude > 90 {
			return fmt.Errorf("latitude must be between -90 and 90")
		}
		if *profile.Longitude < -180 || *profile.Longitude > 180 {
			return fmt.Errorf("longitude must be between -180 and 180")
		}
	}

	if profile.Visible && len(profile.Subjects) == 0 {
		return fmt.Errorf("a visible profile must list at least one subject")
	}

	return nil
}
