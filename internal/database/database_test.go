package database

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// migratedDB applies migrations/ to the Postgres database named by TEST_DATABASE_URL.
// The service tests run on sqlite with AutoMigrate, so this is the only place the SQL
// schema's checks and indexes are exercised.
func migratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, RunMigrations("file://../../migrations", dsn))
	// A second run finds nothing to do.
	require.NoError(t, RunMigrations("file://../../migrations", dsn))

	db, err := Connect(dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestActiveTeamNamesAreUniqueIgnoringCase(t *testing.T) {
	db := migratedDB(t)
	name := "Birdie Bandits " + uuid.NewString()
	t.Cleanup(func() { db.Exec("DELETE FROM teams WHERE LOWER(name) = LOWER(?)", name) })

	require.NoError(t, db.Exec("INSERT INTO teams (name) VALUES (?)", name).Error)
	err := db.Exec("INSERT INTO teams (name) VALUES (UPPER(?))", name).Error
	assert.Error(t, err)

	// Inactive teams may share a name with an active one.
	require.NoError(t, db.Exec("INSERT INTO teams (name, is_active) VALUES (?, false)", name).Error)
	require.NoError(t, db.Exec("INSERT INTO teams (name, is_active) VALUES (?, false)", name).Error)
}

func TestHoleChecks(t *testing.T) {
	db := migratedDB(t)
	course := uuid.New()
	require.NoError(t, db.Exec("INSERT INTO courses (id, name) VALUES (?, ?)", course, "Augusta National").Error)
	t.Cleanup(func() { db.Exec("DELETE FROM courses WHERE id = ?", course) })

	insert := func(number, par int, distance float64) error {
		return db.Exec("INSERT INTO holes (course_id, hole_number, par, distance) VALUES (?, ?, ?, ?)",
			course, number, par, distance).Error
	}
	require.NoError(t, insert(1, 4, 445))
	assert.Error(t, insert(1, 4, 445), "hole numbers are unique per course")
	assert.Error(t, insert(2, 7, 445), "par above 6")
	assert.Error(t, insert(3, 4, 0), "distance must be positive")
	assert.Error(t, insert(19, 4, 400), "hole number above 18")
}
