package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutormatch/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_GetUser(t *testing.T) {
	t.Run("returns public fields", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{
			user: &models.User{ID: 7, Username: "tutor1", Email: "tutor@example.com", PasswordHash: "secret"},
		})

		user, err := svc.GetUser(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 7, user.ID)
		assert.Equal(t, "tutor1", user.Username)
		assert.Equal(t, "tutor@example.com", user.Email)
	})

	t.Run("invalid user id", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{})

		_, err := svc.GetUser(context.Background(), 0)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid user id")
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{})

		_, err := svc.GetUser(context.Background(), 99)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	tests := []struct {
		name          string
		userID        int
		username      string
		email         string
		mockRepo      *mockUserRepository
		expectedError string
	}{
		{
			name:     "update username only",
			userID:   1,
			username: "newname",
			mockRepo: &mockUserRepository{},
		},
		{
			name:     "update email only",
			userID:   1,
			email:    "new@example.com",
			mockRepo: &mockUserRepository{},
		},
		{
			name:          "nothing to update",
			userID:        1,
			mockRepo:      &mockUserRepository{},
			expectedError: "at least one field",
		},
		{
			name:          "invalid email format",
			userID:        1,
			email:         "nope",
			mockRepo:      &mockUserRepository{},
			expectedError: "invalid email format",
		},
		{
			name:          "email taken",
			userID:        1,
			email:         "taken@example.com",
			mockRepo:      &mockUserRepository{emailExists: true},
			expectedError: "email already exists",
		},
		{
			name:          "username taken",
			userID:        1,
			username:      "taken",
			mockRepo:      &mockUserRepository{usernameExists: true},
			expectedError: "username already exists",
		},
		{
			name:          "invalid user id",
			userID:        0,
			username:      "newname",
			mockRepo:      &mockUserRepository{},
			expectedError: "invalid user id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.mockRepo)

			err := svc.UpdateUser(context.Background(), tt.userID, tt.username, tt.email)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Old_pass1"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{ID: 1, PasswordHash: string(passwordHash)}

	t.Run("successful change", func(t *testing.T) {
		mockRepo := &mockUserRepository{user: user}
		svc := NewUserService(mockRepo)

		err := svc.ChangePassword(context.Background(), 1, "Old_pass1", "New_pass2")

		require.NoError(t, err)
		require.NotEmpty(t, mockRepo.updatedHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(mockRepo.updatedHash), []byte("New_pass2")))
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{user: user})

		err := svc.ChangePassword(context.Background(), 1, "Wrong_pass1", "New_pass2")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "current password is incorrect")
	})

	t.Run("weak new password", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{user: user})

		err := svc.ChangePassword(context.Background(), 1, "Old_pass1", "weak")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "password must be at least 8 characters")
	})
}
