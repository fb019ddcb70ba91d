// Package testing provides test helpers shared across tearsheet packages.
package testing

import (
	"testing"

	"github.com/aristath/tearsheet/internal/database"
)

// NewTestDB opens a private in-memory database with its schema applied.
// name selects the schema ("history" or "cache"); the cache database gets
// the cache profile. The database is closed when the test finishes.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == "cache" {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    database.MemoryPath,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}
