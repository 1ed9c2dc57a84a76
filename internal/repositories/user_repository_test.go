package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutormatch/backend/internal/models"
	"go.uber.org/zap"
)

// setupUserRepository creates a user repository with a mock database
func setupUserRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var userColumns = []string{"id", "username", "email", "password_hash", "role", "created_at"}

func TestUserRepository_Create(t *testing.T) {
	t.Run("assigns generated id", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, role)")).
			WithArgs("tutor1", "tutor@example.com", "hash", models.RoleUser).
			WillReturnResult(sqlmock.NewResult(7, 1))

		user := &models.User{Username: "tutor1", Email: "tutor@example.com", PasswordHash: "hash", Role: models.RoleUser}
		err := repo.Create(context.Background(), user)

		require.NoError(t, err)
		assert.Equal(t, 7, user.ID)
	})

	t.Run("insert error surfaces", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New("duplicate entry"))

		err := repo.Create(context.Background(), &models.User{Username: "tutor1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(userColumns).
			AddRow(7, "tutor1", "tutor@example.com", "hash", 1, time.Now())
		mock.ExpectQuery(`SELECT id, username, email, password_hash, role, created_at\s+FROM users\s+WHERE id = \?`).
			WithArgs(7).
			WillReturnRows(rows)

		user, err := repo.GetByID(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, 7, user.ID)
		assert.Equal(t, "tutor1", user.Username)
		assert.Equal(t, models.RoleUser, user.Role)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, username, email, password_hash, role, created_at\s+FROM users\s+WHERE id = \?`).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(userColumns))

		user, err := repo.GetByID(context.Background(), 99)

		require.Error(t, err)
		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "user not found")
	})
}

func TestUserRepository_GetByEmailOrUsername(t *testing.T) {
	repo, mock, cleanup := setupUserRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows(userColumns).
		AddRow(7, "tutor1", "tutor@example.com", "hash", 1, time.Now())
	mock.ExpectQuery(`SELECT id, username, email, password_hash, role, created_at\s+FROM users\s+WHERE email = \? OR username = \?`).
		WithArgs("tutor1", "tutor1").
		WillReturnRows(rows)

	user, err := repo.GetByEmailOrUsername(context.Background(), "tutor1")

	require.NoError(t, err)
	assert.Equal(t, "tutor@example.com", user.Email)
}

func TestUserRepository_Exists(t *testing.T) {
	t.Run("email exists", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT * FROM users WHERE email = ?)")).
			WithArgs("tutor@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsByEmail(context.Background(), "tutor@example.com")

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("username does not exist", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT * FROM users WHERE username = ?)")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsByUsername(context.Background(), "ghost")

		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestUserRepository_Update(t *testing.T) {
	t.Run("updates both fields", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username = ?, email = ? WHERE id = ?")).
			WithArgs("newname", "new@example.com", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 7, "newname", "new@example.com")

		assert.NoError(t, err)
	})

	t.Run("updates single field", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepository(t)
		defer cleanup()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email = ? WHERE id = ?")).
			WithArgs("new@example.com", 7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(context.Background(), 7, "", "new@example.com")

		assert.NoError(t, err)
	})

	t.Run("rejects empty update", func(t *testing.T) {
		repo, _, cleanup := setupUserRepository(t)
		defer cleanup()

		err := repo.Update(context.Background(), 7, "", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no fields to update")
	})
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	repo, mock, cleanup := setupUserRepository(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = ? WHERE id = ?")).
		WithArgs("new-hash", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePasswordHash(context.Background(), 7, "new-hash")

	assert.NoError(t, err)
}
