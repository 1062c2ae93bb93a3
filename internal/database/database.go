package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/config"
	"github.com/scythe504/taboo-backend/internal/ports"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:taboo.db?_pragma=busy_timeout(5000)"
)

// Service represents a service that interacts with a database.
type Service interface {
	ports.ResultStore
	ports.WordSource

	// Health returns a map of health status information.
	Health() map[string]string

	// Migrate creates the tables the service needs.
	Migrate(ctx context.Context) error

	// SeedWords inserts words that are not stored yet and returns how many were added.
	SeedWords(ctx context.Context, words []internal.SecretWord) (int, error)
	WordCount(ctx context.Context) (int, error)

	PlayerPoints(ctx context.Context, playerID string) (int, error)
	ResultsForMatch(ctx context.Context, matchCode string) ([]StoredResult, error)

	// Close terminates the database connection.
	Close() error
}

type service struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
}

// New opens the configured database. An empty DSN falls back to the discrete
// Postgres settings or to a local SQLite file.
func New(cfg config.Database) (Service, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverPostgres:
		if dsn == "" {
			dsn = cfg.PostgresDSN()
		}
	case DriverSQLite:
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return Open(cfg.Driver, dsn)
}

// placeholderFor picks the bind variable style of driver.
func placeholderFor(driver string) sq.PlaceholderFormat {
	if driver == DriverPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// Open connects with driver and dsn and checks the connection.
func Open(driver, dsn string) (Service, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if driver != DriverPostgres {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	placeholder := placeholderFor(driver)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return &service{
		db:     db,
		driver: driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Errorf("[Health] db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["driver"] = s.driver

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}
	return stats
}

func (s *service) Close() error {
	log.Infof("[Close] Disconnected from %s database", s.driver)
	return s.db.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS match_results (
		id TEXT PRIMARY KEY,
		match_code TEXT NOT NULL,
		red_score INTEGER NOT NULL,
		blue_score INTEGER NOT NULL,
		winner TEXT,
		red_player_ids TEXT NOT NULL,
		blue_player_ids TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_match_results_code ON match_results (match_code)`,
	`CREATE TABLE IF NOT EXISTS player_points (
		player_id TEXT PRIMARY KEY,
		points INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS secret_words (
		id TEXT PRIMARY KEY,
		word_es TEXT NOT NULL,
		word_en TEXT NOT NULL,
		description_es TEXT NOT NULL,
		description_en TEXT NOT NULL,
		UNIQUE (word_es, word_en)
	)`,
}

func (s *service) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

/* ===================== SQUIRREL HELPERS ===================== */

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func qExec(ctx context.Context, db execer, q sq.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return db.ExecContext(ctx, query, args...)
}

func qQuery(ctx context.Context, db querier, q sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return db.QueryContext(ctx, query, args...)
}

func qRow(ctx context.Context, db querier, q sq.SelectBuilder) *sql.Row {
	query, args, _ := q.ToSql()
	return db.QueryRowContext(ctx, query, args...)
}
