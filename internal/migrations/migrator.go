package migrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Migration represents a database migration with up and down functions.
// Up and Down receive the transaction the migration runs in.
type Migration struct {
	Version int64
	Name    string
	Up      func(*gorm.DB) error
	Down    func(*gorm.DB) error
}

// schemaMigration is a row of the migrations tracking table
type schemaMigration struct {
	Version   int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// Migrator handles database migrations
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:         db,
		migrations: []Migration{},
	}
}

// AddMigration adds a migration to the migrator, keeping them ordered by version
func (m *Migrator) AddMigration(migration Migration) {
	m.migrations = append(m.migrations, migration)
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})
}

// RunMigrations runs all pending migrations
func (m *Migrator) RunMigrations(ctx context.Context) error {
	db := m.db.WithContext(ctx)

	if err := m.createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := m.getCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			if err := m.runMigration(db, migration); err != nil {
				return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
			}
		}
	}

	return nil
}

// createMigrationsTable creates the migrations tracking table
func (m *Migrator) createMigrationsTable(db *gorm.DB) error {
	if db.Migrator().HasTable(&schemaMigration{}) {
		return nil
	}
	return db.Migrator().CreateTable(&schemaMigration{})
}

// getCurrentVersion returns the highest applied migration version, 0 when none
func (m *Migrator) getCurrentVersion(db *gorm.DB) (int64, error) {
	var version int64
	err := db.Model(&schemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&version).Error
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigration executes a single migration and records it in one transaction
func (m *Migrator) runMigration(db *gorm.DB, migration Migration) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := migration.Up(tx); err != nil {
			return err
		}
		return tx.Create(&schemaMigration{Version: migration.Version, Name: migration.Name}).Error
	})
}

// GetCurrentVersion returns the current migration version
func (m *Migrator) GetCurrentVersion(ctx context.Context) (int64, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&schemaMigration{}) {
		return 0, nil
	}
	return m.getCurrentVersion(db)
}

// GetMigrations returns all registered migrations
func (m *Migrator) GetMigrations() []Migration {
	return m.migrations
}

// Run registers every known migration on a fresh migrator and applies the
// pending ones. It returns the schema version after the run.
func Run(ctx context.Context, db *gorm.DB) (int64, error) {
	migrator := NewMigrator(db)
	for _, migration := range AllMigrations() {
		migrator.AddMigration(migration)
	}
	if err := migrator.RunMigrations(ctx); err != nil {
		return 0, err
	}
	return migrator.GetCurrentVersion(ctx)
}

// AllMigrations returns every migration known to the service
func AllMigrations() []Migration {
	all := GetInitialMigrations()
	all = append(all, GetIndexMigrations()...)
	return all
}
