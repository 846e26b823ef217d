package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: databases are per connection
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&UserModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newUser(name, email string, offset int) *entity.User {
	return &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: "hashed_password",
		CreatedAt:    baseTime.Add(time.Duration(offset) * time.Minute),
	}
}

func TestNewUserSQL(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserSQL(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserSQL_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		repo := NewUserSQL(setupTestDB(t))

		user := newUser("Alice", "test@example.com", 0)
		err := repo.Create(context.Background(), user)

		require.NoError(t, err, "failed to create user")
		assert.Len(t, user.ID, 26, "ID should be a ULID")
	})

	t.Run("duplicate email error", func(t *testing.T) {
		repo := NewUserSQL(setupTestDB(t))

		err := repo.Create(context.Background(), newUser("A", "duplicate@example.com", 0))
		require.NoError(t, err, "failed to create first user")

		err = repo.Create(context.Background(), newUser("B", "duplicate@example.com", 1))

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("nil user error", func(t *testing.T) {
		repo := NewUserSQL(setupTestDB(t))

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

func TestUserSQL_Find(t *testing.T) {
	repo := NewUserSQL(setupTestDB(t))
	users := []*entity.User{
		newUser("User1", "user1@example.com", 0),
		newUser("User2", "user2@example.com", 1),
		newUser("User3", "user3@example.com", 2),
	}
	for _, u := range users {
		require.NoError(t, repo.Create(context.Background(), u), "failed to create test data")
	}

	t.Run("find by email", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "user2@example.com")

		require.NoError(t, err)
		assert.Equal(t, users[1].ID, found.ID)
		assert.Equal(t, "User2", found.Name)
		assert.Equal(t, "hashed_password", found.PasswordHash)
		assert.True(t, users[1].CreatedAt.Equal(found.CreatedAt))
		assert.Nil(t, found.LastUpdationTime)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), users[2].ID)

		require.NoError(t, err)
		assert.Equal(t, "user3@example.com", found.Email)
	})

	t.Run("email not found", func(t *testing.T) {
		found, err := repo.FindByEmail(context.Background(), "notfound@example.com")

		assert.Nil(t, found)
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})

	t.Run("id not found", func(t *testing.T) {
		found, err := repo.FindByID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")

		assert.Nil(t, found)
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserSQL_Update(t *testing.T) {
	t.Run("persists mutable fields", func(t *testing.T) {
		repo := NewUserSQL(setupTestDB(t))
		user := newUser("Alice", "a@example.com", 0)
		require.NoError(t, repo.Create(context.Background(), user))

		user.Name = "Alicia"
		user.Email = "alicia@example.com"
		user.PasswordHash = "new_hash"
		user.Touch(baseTime.Add(time.Hour))

		require.NoError(t, repo.Update(context.Background(), user))

		found, err := repo.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", found.Name)
		assert.Equal(t, "alicia@example.com", found.Email)
		assert.Equal(t, "new_hash", found.PasswordHash)
		require.NotNil(t, found.LastUpdationTime)
		assert.True(t, baseTime.Add(time.Hour).Equal(*found.LastUpdationTime))
	})

	t.Run("email collision", func(t *testing.T) {
		repo := NewUserSQL(setupTestDB(t))
		alice := newUser("Alice", "a@example.com", 0)
		require.NoError(t, repo.Create(context.Background(), alice))
		require.NoError(t, repo.Create(context.Background(), newUser("Bob", "b@example.com", 1)))

		alice.Email = "b@example.com"
		err := repo.Update(context.Background(), alice)

		assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewUserSQL(setupTestDB(t))
		ghost := newUser("Ghost", "ghost@example.com", 0)
		ghost.ID = "missing"

		err := repo.Update(context.Background(), ghost)

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserSQL_Delete(t *testing.T) {
	repo := NewUserSQL(setupTestDB(t))
	user := newUser("Alice", "a@example.com", 0)
	require.NoError(t, repo.Create(context.Background(), user))

	require.NoError(t, repo.Delete(context.Background(), user.ID))

	_, err := repo.FindByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)

	err = repo.Delete(context.Background(), user.ID)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound, "second delete should report not found")
}

func TestUserSQL_List(t *testing.T) {
	repo := NewUserSQL(setupTestDB(t))
	for i, u := range []*entity.User{
		newUser("Alice", "alice@example.com", 0),
		newUser("Someone", "ali@x.com", 1),
		newUser("Bob", "bob@example.com", 2),
		newUser("Percent", "100%off@example.com", 3),
		newUser("Émile", "emile@example.com", 4),
	} {
		require.NoError(t, repo.Create(context.Background(), u), "user %d", i)
	}

	names := func(users []entity.User) []string {
		out := make([]string, 0, len(users))
		for _, u := range users {
			out = append(out, u.Name)
		}
		return out
	}

	tests := []struct {
		name     string
		term     string
		expected []string
	}{
		{"empty term returns all in creation order", "", []string{"Alice", "Someone", "Bob", "Percent", "Émile"}},
		{"case insensitive match on name or email", "ALI", []string{"Alice", "Someone"}},
		{"wildcard characters match literally", "%", []string{"Percent"}},
		{"underscore is not a wildcard", "_", []string{}},
		{"non-ascii name in stored case", "Émile", []string{"Émile"}},
		{"non-ascii name lowercased", "émile", []string{"Émile"}},
		{"non-ascii name uppercased", "ÉMILE", []string{"Émile"}},
		{"surrounding spaces are part of the term", " bob", []string{}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.List(context.Background(), tt.term)

			require.NoError(t, err)
			assert.NotNil(t, users)
			assert.Equal(t, tt.expected, names(users))
		})
	}
}

func TestUserSQL_List_FollowsUpdates(t *testing.T) {
	repo := NewUserSQL(setupTestDB(t))
	user := newUser("Alice", "a@example.com", 0)
	require.NoError(t, repo.Create(context.Background(), user))

	user.Name = "Ørjan"
	require.NoError(t, repo.Update(context.Background(), user))

	users, err := repo.List(context.Background(), "ØRJAN")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)

	users, err = repo.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRefreshSearchColumns(t *testing.T) {
	db := setupTestDB(t)
	// rows written before the search columns existed carry empty values
	legacy := &UserModel{Name: "Élodie", Email: "Elodie@Example.com", PasswordHash: "h", CreatedAt: baseTime}
	require.NoError(t, db.Create(legacy).Error)

	repo := NewUserSQL(db)
	users, err := repo.List(context.Background(), "élodie")
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, RefreshSearchColumns(context.Background(), db))

	var m UserModel
	require.NoError(t, db.First(&m, "id = ?", legacy.ID).Error)
	assert.Equal(t, "élodie", m.NameFold)
	assert.Equal(t, "elodie@example.com", m.EmailFold)

	users, err = repo.List(context.Background(), "ÉLODIE")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, legacy.ID, users[0].ID)
}
