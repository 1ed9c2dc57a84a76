package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutormatch/backend/internal/models"
)

// setupUserTokenRepository creates a user token repository with a mock database
func setupUserTokenRepository(t *testing.T) (*userTokenRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserTokenRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestUserTokenRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupUserTokenRepository(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_tokens (user_id, token)")).
		WithArgs(7, "refresh-token").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.UserToken{UserID: 7, Token: "refresh-token"})

	assert.NoError(t, err)
}

func TestUserTokenRepository_GetByToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupUserTokenRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "user_id", "token", "created_at"}).
			AddRow(1, 7, "refresh-token", time.Now())
		mock.ExpectQuery(`SELECT id, user_id, token, created_at\s+FROM user_tokens\s+WHERE token = \?`).
			WithArgs("refresh-token").
			WillReturnRows(rows)

		userToken, err := repo.GetByToken(context.Background(), "refresh-token")

		require.NoError(t, err)
		assert.Equal(t, 7, userToken.UserID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupUserTokenRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, user_id, token, created_at\s+FROM user_tokens\s+WHERE token = \?`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token", "created_at"}))

		userToken, err := repo.GetByToken(context.Background(), "missing")

		require.Error(t, err)
		assert.Nil(t, userToken)
		assert.Contains(t, err.Error(), "token not found")
	})
}

func TestUserTokenRepository_UpdateToken(t *testing.T) {
	t.Run("rotates the stored token", func(t *testing.T) {
		repo, mock, cleanup := setupUserTokenRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE user_tokens\s+SET token = \?, created_at = CURRENT_TIMESTAMP\s+WHERE token = \? AND user_id = \?`).
			WithArgs("new-token", "old-token", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateToken(context.Background(), "old-token", "new-token", 7)

		assert.NoError(t, err)
	})

	t.Run("not found when nothing matched", func(t *testing.T) {
		repo, mock, cleanup := setupUserTokenRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE user_tokens\s+SET token = \?, created_at = CURRENT_TIMESTAMP\s+WHERE token = \? AND user_id = \?`).
			WithArgs("new-token", "stale-token", 7).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateToken(context.Background(), "stale-token", "new-token", 7)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "token not found")
	})
}

func TestUserTokenRepository_DeleteOlderThan(t *testing.T) {
	repo, mock, cleanup := setupUserTokenRepository(t)
	defer cleanup()

	cutoff := time.Now().Add(-7 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_tokens WHERE created_at < ?")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteOlderThan(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
