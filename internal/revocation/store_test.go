package revocation

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/devaaa008/document-management/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.RevokedToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func TestAddAndContains(t *testing.T) {
	store := &Store{DB: initTestDB(t)}

	ok, err := store.Contains("some.jwt.token")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Add("some.jwt.token"))

	ok, err = store.Contains("some.jwt.token")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Contains("another.jwt.token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAddIsIdempotent(t *testing.T) {
	store := &Store{DB: initTestDB(t)}

	require.NoError(t, store.Add("some.jwt.token"))
	require.NoError(t, store.Add("some.jwt.token"))

	ok, err := store.Contains("some.jwt.token")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestContainsFailsOnBrokenStore(t *testing.T) {
	db := initTestDB(t)
	store := &Store{DB: db}

	require.NoError(t, db.Migrator().DropTable(&models.RevokedToken{}))

	_, err := store.Contains("some.jwt.token")
	require.Error(t, err)
}
