package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chybatronik/goUserFilter/internal/logging"
)

const legacyChecksum = "legacy_migration_no_checksum_available"

// Migration represents a database migration
type Migration struct {
	Version    string
	Filename   string
	SQLContent string
	Checksum   string
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	Version    string
	Applied    bool
	ExecutedAt *time.Time
}

// calculateChecksum computes SHA256 checksum of migration content
func calculateChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// DownFilename returns the rollback file name for an up migration version:
// "002_create_users_table" rolls back with "002_down_create_users_table.sql".
func DownFilename(version string) string {
	prefix, rest, ok := strings.Cut(version, "_")
	if !ok {
		return version + "_down.sql"
	}
	return prefix + "_down_" + rest + ".sql"
}

// MigrationRunner executes database migrations
type MigrationRunner struct {
	db     *pgxpool.Pool
	dir    string
	logger *logging.Logger
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *pgxpool.Pool, migrationsDir string, logger *logging.Logger) *MigrationRunner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MigrationRunner{
		db:     db,
		dir:    migrationsDir,
		logger: logger.WithComponent("migrations"),
	}
}

// RunMigrations executes all pending migrations in order
func (m *MigrationRunner) RunMigrations(ctx context.Context) error {
	m.logger.Info("starting migration execution", "dir", m.dir)
	startTime := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := m.loadMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to load migration files: %w", err)
	}

	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}
	m.logger.Info("migration state loaded", "files", len(migrations), "executed", len(executed))

	pendingCount := 0
	for _, migration := range migrations {
		if executed[migration.Version] {
			continue
		}
		pendingCount++
		m.logger.Info("executing migration", "version", migration.Version, "checksum", migration.Checksum[:16])

		if err := m.executeMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	if err := m.verifyMigrationIntegrity(ctx, migrations); err != nil {
		return fmt.Errorf("migration integrity verification failed: %w", err)
	}

	m.logger.Info("migrations completed", "executed", pendingCount, "duration_ms", time.Since(startTime).Milliseconds())
	return nil
}

// Status lists every migration file with its applied state
func (m *MigrationRunner) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := m.loadMigrationFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load migration files: %w", err)
	}

	rows, err := m.db.Query(ctx, "SELECT version, executed_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query executed migrations: %w", err)
	}
	defer rows.Close()

	executedAt := make(map[string]time.Time)
	for rows.Next() {
		var version string
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan executed migration: %w", err)
		}
		executedAt[version] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating executed migrations: %w", err)
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, mig := range migrations {
		st := MigrationStatus{Version: mig.Version}
		if at, ok := executedAt[mig.Version]; ok {
			st.Applied = true
			st.ExecutedAt = &at
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// createMigrationsTable creates the table to track migration execution
func (m *MigrationRunner) createMigrationsTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			checksum VARCHAR(64)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schema_migrations_executed_at ON schema_migrations(executed_at)`,
		`ALTER TABLE schema_migrations ADD COLUMN IF NOT EXISTS checksum VARCHAR(64)`,
		`UPDATE schema_migrations SET checksum = '` + legacyChecksum + `' WHERE checksum IS NULL`,
	}
	for _, stmt := range statements {
		if _, err := m.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadMigrationFiles loads the up migrations from the migrations directory
func (m *MigrationRunner) LoadMigrationFiles() ([]Migration, error) {
	return m.loadMigrationFiles()
}

func (m *MigrationRunner) loadMigrationFiles() ([]Migration, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(filename, ".sql") || strings.Contains(filename, "_down") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(m.dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		migrations = append(migrations, Migration{
			Version:    strings.TrimSuffix(filename, ".sql"),
			Filename:   filename,
			SQLContent: string(content),
			Checksum:   calculateChecksum(string(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// GetExecutedMigrations retrieves the set of executed migration versions
func (m *MigrationRunner) GetExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	return m.getExecutedMigrations(ctx)
}

func (m *MigrationRunner) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	executed := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		executed[version] = true
	}

	return executed, rows.Err()
}

// executeMigration applies one migration and records it in one transaction
func (m *MigrationRunner) executeMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, migration.SQLContent); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)",
		migration.Version, migration.Checksum); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit(ctx)
}

// verifyMigrationIntegrity verifies that executed migrations match their checksums
func (m *MigrationRunner) verifyMigrationIntegrity(ctx context.Context, migrations []Migration) error {
	byVersion := make(map[string]Migration, len(migrations))
	for _, mig := range migrations {
		byVersion[mig.Version] = mig
	}

	rows, err := m.db.Query(ctx, "SELECT version, checksum FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query executed migrations: %w", err)
	}
	defer rows.Close()

	verified := 0
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return fmt.Errorf("failed to scan executed migration: %w", err)
		}

		current, ok := byVersion[version]
		if !ok {
			return fmt.Errorf("migration %s found in database but not in migrations directory", version)
		}
		if checksum != legacyChecksum && current.Checksum != checksum {
			m.logger.Warn("migration checksum mismatch", "version", version, "database", checksum, "file", current.Checksum)
			return fmt.Errorf("migration %s has been modified after execution (checksum mismatch)", version)
		}
		verified++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating executed migrations: %w", err)
	}

	m.logger.Info("migration integrity verified", "migrations", verified)
	return nil
}

// RollbackLastMigration rolls back the most recent executed migration
func (m *MigrationRunner) RollbackLastMigration(ctx context.Context) error {
	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	if len(executed) == 0 {
		m.logger.Info("no migrations to roll back")
		return nil
	}

	var last string
	for version := range executed {
		if version > last {
			last = version
		}
	}

	return m.rollback(ctx, last)
}

// RunDownMigrations rolls back every executed migration newer than targetVersion
func (m *MigrationRunner) RunDownMigrations(ctx context.Context, targetVersion string) error {
	startTime := time.Now()

	executed, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	versions := make([]string, 0, len(executed))
	for version := range executed {
		if version > targetVersion {
			versions = append(versions, version)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))

	for _, version := range versions {
		if err := m.rollback(ctx, version); err != nil {
			return err
		}
	}

	m.logger.Info("rollback completed",
		"target", targetVersion,
		"rolled_back", len(versions),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return nil
}

func (m *MigrationRunner) rollback(ctx context.Context, version string) error {
	downFilename := DownFilename(version)
	content, err := os.ReadFile(filepath.Join(m.dir, downFilename))
	if err != nil {
		return fmt.Errorf("failed to read rollback file %s: %w", downFilename, err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute rollback SQL for %s: %w", version, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return fmt.Errorf("failed to remove migration %s from tracking: %w", version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rollback transaction for %s: %w", version, err)
	}

	m.logger.Info("migration rolled back", "version", version)
	return nil
}
