package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tutormatch/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AccountRepository is the interface that wraps methods for User table data
// access needed by the user service
type AccountRepository interface {
	// GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, the error will be returned
	// together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Update updates the username and/or email of a user. Empty fields are
	// left unchanged.
	Update(ctx context.Context, userID int, username, email string) error
	// UpdatePasswordHash updates the password hash for a user.
	UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error
	// ExistsByEmail checks if a user exists with the given email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks if a user exists with the given username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// userService implements user account business logic
type userService struct {
	userRepo AccountRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo AccountRepository) *userService {
	return &userService{
		userRepo: userRepo,
	}
}

// GetUser retrieves public account information
func (s *userService) GetUser(ctx context.Context, userID int) (*models.UserResponse, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// UpdateUser updates username and/or email with validation
func (s *userService) UpdateUser(ctx context.Context, userID int, username, email string) error {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	normalizedUsername := strings.TrimSpace(username)

	if err := s.checkUpdateCredentials(ctx, userID, normalizedUsername, normalizedEmail); err != nil {
		return err
	}

	return s.userRepo.Update(ctx, userID, normalizedUsername, normalizedEmail)
}

// checkUpdateCredentials validates the update input. The field checks are
// independent, so they run concurrently.
func (s *userService) checkUpdateCredentials(ctx context.Context, userID int, username, email string) error {
	if email == "" && username == "" {
		return fmt.Errorf("at least one field must be provided")
	}

	errChan := make(chan error, 3)

	go func() {
		if userID <= 0 {
			errChan <- fmt.Errorf("invalid user id")
			return
		}
		errChan <- nil
	}()

	go func() {
		if email != "" {
			if !emailRegex.MatchString(email) {
				errChan <- fmt.Errorf("invalid email format")
				return
			}
			emailExists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				errChan <- err
				return
			}
			if emailExists {
				errChan <- fmt.Errorf("email already exists")
				return
			}
		}
		errChan <- nil
	}()

	go func() {
		if username != "" {
			usernameExists, err := s.userRepo.ExistsByUsername(ctx, username)
			if err != nil {
				errChan <- err
				return
			}
			if usernameExists {
				errChan <- fmt.Errorf("username already exists")
				return
			}
		}
		errChan <- nil
	}()

	for i := 0; i < 3; i++ {
		if err := <-errChan; err != nil {
			return err
		}
	}

	return nil
}

// ChangePassword verifies the current password and replaces it
func (s *userService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePasswordHash(ctx, userID, string(passwordHash))
}
