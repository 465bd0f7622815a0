package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed sql/migrations/*.sql
var migrationsFS embed.FS

// migrationLockKey — ключ advisory-блокировки, чтобы параллельные экземпляры
// сервиса не применяли миграции одновременно.
const migrationLockKey = 0x6f726473 // "ords"

var migrationNameRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

type migration struct {
	version int
	name    string
	up      string
	down    string
}

// Migrator применяет SQL-миграции из встроенной файловой системы.
type Migrator struct {
	db     *sql.DB
	logger *log.Entry
}

// NewMigrator создает мигратор поверх открытого подключения.
func NewMigrator(db *sql.DB, logger *log.Entry) *Migrator {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Migrator{
		db:     db,
		logger: logger.WithField("component", "migrator"),
	}
}

// MigrateUp применяет все еще не примененные миграции по возрастанию версий.
func (m *Migrator) MigrateUp(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	return m.withLock(ctx, func(tx *sql.Tx) error {
		applied, err := appliedVersions(ctx, tx)
		if err != nil {
			return err
		}
		for _, mig := range migrations {
			if applied[mig.version] {
				continue
			}
			if mig.up == "" {
				return fmt.Errorf("migration %d (%s) has no up script", mig.version, mig.name)
			}
			if _, err := tx.ExecContext(ctx, mig.up); err != nil {
				return fmt.Errorf("apply migration %d (%s): %w", mig.version, mig.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.version, mig.name,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", mig.version, err)
			}
			m.logger.WithField("version", mig.version).WithField("name", mig.name).Info("Migration applied")
		}
		return nil
	})
}

// MigrateDown откатывает последнюю примененную миграцию.
func (m *Migrator) MigrateDown(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	byVersion := make(map[int]migration, len(migrations))
	for _, mig := range migrations {
		byVersion[mig.version] = mig
	}
	return m.withLock(ctx, func(tx *sql.Tx) error {
		var version int
		row := tx.QueryRowContext(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`)
		if err := row.Scan(&version); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("no applied migrations to roll back")
			}
			return fmt.Errorf("read last migration version: %w", err)
		}
		mig, ok := byVersion[version]
		if !ok || mig.down == "" {
			return fmt.Errorf("migration %d has no down script", version)
		}
		if _, err := tx.ExecContext(ctx, mig.down); err != nil {
			return fmt.Errorf("roll back migration %d (%s): %w", version, mig.name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
			return fmt.Errorf("unrecord migration %d: %w", version, err)
		}
		m.logger.WithField("version", version).WithField("name", mig.name).Info("Migration rolled back")
		return nil
	})
}

// Status возвращает версии примененных миграций по возрастанию.
func (m *Migrator) Status(ctx context.Context) ([]int, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// withLock выполняет fn в транзакции под advisory-блокировкой, предварительно
// создав таблицу schema_migrations, если ее еще нет.
func (m *Migrator) withLock(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT        NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, tx *sql.Tx) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, "sql/migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		parts := migrationNameRe.FindStringSubmatch(entry.Name())
		if parts == nil {
			return nil, fmt.Errorf("unexpected migration file name: %s", entry.Name())
		}
		version, err := strconv.Atoi(strings.TrimLeft(parts[1], "0"))
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", entry.Name(), err)
		}
		body, err := fs.ReadFile(migrationsFS, "sql/migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		mig, ok := byVersion[version]
		if !ok {
			mig = &migration{version: version, name: parts[2]}
			byVersion[version] = mig
		}
		if parts[3] == "up" {
			mig.up = string(body)
		} else {
			mig.down = string(body)
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, mig := range byVersion {
		migrations = append(migrations, *mig)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}
