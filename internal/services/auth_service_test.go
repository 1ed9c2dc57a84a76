package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutormatch/backend/internal/auth"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// mockUserRepository is a mock implementation of UserRepository and AccountRepository
type mockUserRepository struct {
	user           *models.User
	emailExists    bool
	usernameExists bool
	err            error
	createdUser    *models.User
	updatedHash    string
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = 1
	m.createdUser = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, errors.New("user not found")
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByEmailOrUsername(ctx context.Context, login string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, errors.New("user not found")
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.emailExists, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.usernameExists, nil
}

func (m *mockUserRepository) Update(ctx context.Context, userID int, username, email string) error {
	return m.err
}

func (m *mockUserRepository) UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error {
	if m.err != nil {
		return m.err
	}
	m.updatedHash = passwordHash
	return nil
}

// mockUserTokenRepository is a mock implementation of UserTokenRepository
type mockUserTokenRepository struct {
	stored *models.UserToken
	err    error
}

func (m *mockUserTokenRepository) Create(ctx context.Context, userToken *models.UserToken) error {
	if m.err != nil {
		return m.err
	}
	m.stored = userToken
	return nil
}

func (m *mockUserTokenRepository) GetByToken(ctx context.Context, token string) (*models.UserToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.stored == nil || m.stored.Token != token {
		return nil, errors.New("token not found")
	}
	return m.stored, nil
}

func (m *mockUserTokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, userID int) error {
	if m.err != nil {
		return m.err
	}
	m.stored = &models.UserToken{UserID: userID, Token: newToken}
	return nil
}

func (m *mockUserTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	return m.err
}

func testTokenGenerator() *auth.TokenGenerator {
	return auth.NewTokenGenerator("test-secret", time.Hour, 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           *models.RegisterRequest
		mockRepo      *mockUserRepository
		expectedError string
	}{
		{
			name:     "successful registration",
			req:      &models.RegisterRequest{Email: "tutor@example.com", Username: "tutor1", Password: "Str0ng_pass"},
			mockRepo: &mockUserRepository{},
		},
		{
			name:     "email normalized to lower case",
			req:      &models.RegisterRequest{Email: "  Tutor@Example.COM ", Username: "tutor1", Password: "Str0ng_pass"},
			mockRepo: &mockUserRepository{},
		},
		{
			name:          "missing fields",
			req:           &models.RegisterRequest{Email: "", Username: "tutor1", Password: "Str0ng_pass"},
			mockRepo:      &mockUserRepository{},
			expectedError: "email, username, and password are required",
		},
		{
			name:          "invalid email format",
			req:           &models.RegisterRequest{Email: "not-an-email", Username: "tutor1", Password: "Str0ng_pass"},
			mockRepo:      &mockUserRepository{},
			expectedError: "invalid email format",
		},
		{
			name:          "email already exists",
			req:           &models.RegisterRequest{Email: "tutor@example.com", Username: "tutor1", Password: "Str0ng_pass"},
			mockRepo:      &mockUserRepository{emailExists: true},
			expectedError: "email already exists",
		},
		{
			name:          "username already exists",
			req:           &models.RegisterRequest{Email: "tutor@example.com", Username: "tutor1", Password: "Str0ng_pass"},
			mockRepo:      &mockUserRepository{usernameExists: true},
			expectedError: "username already exists",
		},
		{
			name:          "weak password",
			req:           &models.RegisterRequest{Email: "tutor@example.com", Username: "tutor1", Password: "weak"},
			mockRepo:      &mockUserRepository{},
			expectedError: "password must be at least 8 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenRepo := &mockUserTokenRepository{}
			svc := NewAuthService(tt.mockRepo, tokenRepo, testTokenGenerator(), zap.NewNop())

			accessToken, refreshToken, err := svc.Register(context.Background(), tt.req)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, accessToken)
			assert.NotEmpty(t, refreshToken)
			require.NotNil(t, tt.mockRepo.createdUser)
			assert.Equal(t, models.RoleUser, tt.mockRepo.createdUser.Role)
			assert.Equal(t, "tutor@example.com", tt.mockRepo.createdUser.Email)
			// Refresh token persisted for rotation
			require.NotNil(t, tokenRepo.stored)
			assert.Equal(t, refreshToken, tokenRepo.stored.Token)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Str0ng_pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{ID: 7, Username: "tutor1", Email: "tutor@example.com", PasswordHash: string(passwordHash), Role: models.RoleUser}

	tests := []struct {
		name          string
		req           *models.LoginRequest
		mockRepo      *mockUserRepository
		expectedError string
	}{
		{
			name:     "successful login",
			req:      &models.LoginRequest{Login: "tutor1", Password: "Str0ng_pass"},
			mockRepo: &mockUserRepository{user: user},
		},
		{
			name:          "empty credentials",
			req:           &models.LoginRequest{},
			mockRepo:      &mockUserRepository{},
			expectedError: "login and password are required",
		},
		{
			name:          "unknown user",
			req:           &models.LoginRequest{Login: "ghost", Password: "Str0ng_pass"},
			mockRepo:      &mockUserRepository{},
			expectedError: "invalid credentials",
		},
		{
			name:          "wrong password",
			req:           &models.LoginRequest{Login: "tutor1", Password: "Wrong_pass1"},
			mockRepo:      &mockUserRepository{user: user},
			expectedError: "invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.mockRepo, &mockUserTokenRepository{}, testTokenGenerator(), zap.NewNop())

			accessToken, refreshToken, err := svc.Login(context.Background(), tt.req)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, accessToken)
			assert.NotEmpty(t, refreshToken)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	generator := testTokenGenerator()

	t.Run("rotates a valid refresh token", func(t *testing.T) {
		_, refreshToken, err := generator.GenerateTokens(7, int(models.RoleUser))
		require.NoError(t, err)

		tokenRepo := &mockUserTokenRepository{stored: &models.UserToken{UserID: 7, Token: refreshToken}}
		svc := NewAuthService(&mockUserRepository{}, tokenRepo, generator, zap.NewNop())

		accessToken, newRefreshToken, err := svc.Refresh(context.Background(), refreshToken)

		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, newRefreshToken)
		assert.Equal(t, newRefreshToken, tokenRepo.stored.Token)
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepository{}, &mockUserTokenRepository{}, generator, zap.NewNop())

		_, _, err := svc.Refresh(context.Background(), "garbage")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid refresh token")
	})

	t.Run("rejects a token not found in the store", func(t *testing.T) {
		_, refreshToken, err := generator.GenerateTokens(7, int(models.RoleUser))
		require.NoError(t, err)

		svc := NewAuthService(&mockUserRepository{}, &mockUserTokenRepository{}, generator, zap.NewNop())

		_, _, err = svc.Refresh(context.Background(), refreshToken)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not recognized")
	})

	t.Run("rejects an access token used as refresh token", func(t *testing.T) {
		accessToken, _, err := generator.GenerateTokens(7, int(models.RoleUser))
		require.NoError(t, err)

		svc := NewAuthService(&mockUserRepository{}, &mockUserTokenRepository{}, generator, zap.NewNop())

		_, _, err = svc.Refresh(context.Background(), accessToken)

		require.Error(t, err)
	})
}
