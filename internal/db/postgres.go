package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ignatzorin/zipzag-catalog/internal/logger"
)

// PoolConfig параметры пула соединений.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool подходит для одного инстанса админки.
var DefaultPool = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    10,
	ConnMaxLifetime: 5 * time.Minute,
}

// NewPostgres создаёт подключение к PostgreSQL с заданным DSN.
func NewPostgres(ctx context.Context, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	conn.SetMaxOpenConns(pool.MaxOpenConns)
	conn.SetMaxIdleConns(pool.MaxIdleConns)
	conn.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return conn, nil
}

// Migration одна SQL миграция из каталога.
type Migration struct {
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// RunMigrations применяет ещё не выполненные *.sql файлы в лексикографическом порядке.
// Возвращает имена применённых миграций.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrationsDir string) ([]string, error) {
	if err := initMigrationsTable(ctx, conn); err != nil {
		return nil, fmt.Errorf("postgres: не удалось инициализировать таблицу миграций: %w", err)
	}

	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, name := range files {
		if _, ok := applied[name]; ok {
			continue
		}
		if err := applyMigration(ctx, conn, migrationsDir, name); err != nil {
			return done, err
		}
		logger.Log.WithField("migration", name).Info("миграция применена")
		done = append(done, name)
	}

	return done, nil
}

// MigrationStatus возвращает список миграций каталога с отметкой о применении.
func MigrationStatus(ctx context.Context, conn *sqlx.DB, migrationsDir string) ([]Migration, error) {
	if err := initMigrationsTable(ctx, conn); err != nil {
		return nil, fmt.Errorf("postgres: не удалось инициализировать таблицу миграций: %w", err)
	}

	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return nil, err
	}

	out := make([]Migration, 0, len(files))
	for _, name := range files {
		m := Migration{Name: name}
		if at, ok := applied[name]; ok {
			at := at
			m.Applied = true
			m.AppliedAt = &at
		}
		out = append(out, m)
	}
	return out, nil
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось прочитать каталог миграций: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func initMigrationsTable(ctx context.Context, conn *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := conn.ExecContext(ctx, query)
	return err
}

func appliedMigrations(ctx context.Context, conn *sqlx.DB) (map[string]time.Time, error) {
	var rows []struct {
		Name      string    `db:"name"`
		AppliedAt time.Time `db:"applied_at"`
	}
	if err := conn.SelectContext(ctx, &rows, `SELECT name, applied_at FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("postgres: не удалось получить список миграций: %w", err)
	}

	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.Name] = r.AppliedAt
	}
	return out, nil
}

// applyMigration выполняет файл и отмечает его в одной транзакции.
func applyMigration(ctx context.Context, conn *sqlx.DB, dir, name string) error {
	sqlBytes, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("postgres: не удалось прочитать миграцию %s: %w", name, err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: не удалось начать транзакцию для миграции %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("postgres: не удалось выполнить миграцию %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("postgres: не удалось отметить миграцию %s как выполненную: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: не удалось зафиксировать транзакцию для миграции %s: %w", name, err)
	}

	return nil
}
