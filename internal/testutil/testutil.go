package testutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/jbweber/homelab/ludoteca/internal/datastore"
	"github.com/jbweber/homelab/ludoteca/internal/migrations"
)

// CleanupTestDB removes the test database file. In-memory DSNs and files
// that are already gone are not an error.
func CleanupTestDB(dsn string) error {
	if len(dsn) < 5 || dsn[:5] != "file:" {
		return fmt.Errorf("invalid DSN format")
	}
	if strings.Contains(dsn, "mode=memory") {
		return nil
	}

	path := dsn[5:]
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// SetupTestDB opens a datastore on a fresh in-memory database without any schema
func SetupTestDB(t *testing.T, testName string) (*datastore.Datastore, func()) {
	t.Helper()
	dsn := NewTestDSN(testName)

	ds, err := datastore.New(dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	cleanup := func() {
		if err := ds.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
		if err := CleanupTestDB(dsn); err != nil {
			t.Logf("Warning: failed to clean up test database: %v", err)
		}
	}

	return ds, cleanup
}

// SetupTestDBWithMigrations opens a datastore on a fresh in-memory database
// and applies every migration
func SetupTestDBWithMigrations(t *testing.T, testName string) (*datastore.Datastore, func()) {
	t.Helper()
	ds, cleanup := SetupTestDB(t, testName)

	if _, err := migrations.Run(context.Background(), ds.DB); err != nil {
		cleanup()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return ds, cleanup
}
