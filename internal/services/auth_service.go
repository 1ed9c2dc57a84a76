package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tutormatch/backend/internal/auth"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data
// access needed by the auth service
type UserRepository interface {
	// Create inserts a new user into the database.
	//
	// If some error occurs during user creation, the error will be returned.
	Create(ctx context.Context, user *models.User) error
	// GetByEmailOrUsername retrieves a user by email or username.
	//
	// If user with such email or username does not exist, the error will be
	// returned together with "nil" value.
	GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error)
	// ExistsByEmail checks if a user exists with the given email.
	//
	// If some error occurs during check, the error will be returned together
	// with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks if a user exists with the given username.
	//
	// If some error occurs during check, the error will be returned together
	// with "false" value.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// UserTokenRepository is the interface that wraps methods for UserToken
// table data access
type UserTokenRepository interface {
	// Create inserts a new refresh token for a user.
	Create(ctx context.Context, userToken *models.UserToken) error
	// GetByToken retrieves a refresh token record by token string.
	//
	// If such token does not exist, the error will be returned together with
	// "nil" value.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// UpdateToken replaces a stored refresh token with a new one.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error
	// DeleteByToken deletes a refresh token by token string.
	DeleteByToken(ctx context.Context, token string) error
}

// authService implements authentication business logic
type authService struct {
	userRepo       UserRepository
	userTokenRepo  UserTokenRepository
	tokenGenerator *auth.TokenGenerator
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	userTokenRepo UserTokenRepository,
	tokenGenerator *auth.TokenGenerator,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		userTokenRepo:  userTokenRepo,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special: !_?^&+-=|
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[!_?^&+\-=|]`),
}

// validatePassword checks the password against the policy regexes
func validatePassword(password string) error {
	for _, regex := range passwordRegex {
		if !regex.MatchString(password) {
			return fmt.Errorf("password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character (!_?^&+-=|)")
		}
	}
	return nil
}

// Register creates a new user account and returns access and refresh tokens
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (string, string, error) {
	normalizedEmail, normalizedUsername, err := s.checkRegisterCredentials(ctx, req.Email, req.Username, req.Password)
	if err != nil {
		return "", "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}

	user := &models.User{
		Username:     normalizedUsername,
		Email:        normalizedEmail,
		PasswordHash: string(passwordHash),
		Role:         models.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", "", err
	}

	return s.issueTokens(ctx, user)
}

// checkRegisterCredentials validates and normalizes registration input.
// The uniqueness checks are independent, so they run concurrently.
func (s *authService) checkRegisterCredentials(ctx context.Context, email, username, password string) (string, string, error) {
	normalizedEmail := strings.TrimSpace(strings.ToLower(email))
	normalizedUsername := strings.TrimSpace(username)

	if normalizedEmail == "" || normalizedUsername == "" || password == "" {
		return "", "", fmt.Errorf("email, username, and password are required")
	}

	errChan := make(chan error, 3)

	go func() {
		if !emailRegex.MatchString(normalizedEmail) {
			errChan <- fmt.Errorf("invalid email format")
			return
		}
		emailExists, err := s.userRepo.ExistsByEmail(ctx, normalizedEmail)
		if err != nil {
			errChan <- err
			return
		}
		if emailExists {
			errChan <- fmt.Errorf("email already exists")
			return
		}
		errChan <- nil
	}()

	go func() {
		usernameExists, err := s.userRepo.ExistsByUsername(ctx, normalizedUsername)
		if err != nil {
			errChan <- err
			return
		}
		if usernameExists {
			errChan <- fmt.Errorf("username already exists")
			return
		}
		errChan <- nil
	}()

	go func() {
		errChan <- validatePassword(password)
	}()

	for i := 0; i < 3; i++ {
		if err := <-errChan; err != nil {
			return "", "", err
		}
	}

	return normalizedEmail, normalizedUsername, nil
}

// Login validates credentials and returns access and refresh tokens
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return "", "", fmt.Errorf("login and password are required")
	}

	user, err := s.userRepo.GetByEmailOrUsername(ctx, login)
	if err != nil {
		s.logger.Warn("login attempt for unknown user", zap.String("login", login))
		return "", "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("failed login attempt", zap.Int("user_id", user.ID))
		return "", "", fmt.Errorf("invalid credentials")
	}

	return s.issueTokens(ctx, user)
}

// Refresh validates a refresh token and rotates it, returning a new token pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}

	stored, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("refresh token not recognized")
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(stored.UserID, int(models.RoleUser))
	if err != nil {
		return "", "", err
	}

	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, stored.UserID); err != nil {
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// issueTokens generates a token pair and persists the refresh token
func (s *authService) issueTokens(ctx context.Context, user *models.User) (string, string, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(user.ID, int(user.Role))
	if err != nil {
		return "", "", err
	}

	userToken := &models.UserToken{
		UserID: user.ID,
		Token:  refreshToken,
	}
	if err := s.userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
