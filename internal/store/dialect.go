package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver.
	_ "github.com/lib/pq"              // PostgreSQL driver.
	_ "modernc.org/sqlite"             // SQLite driver.
)

// Dialect hides the SQL differences between supported databases.
type Dialect interface {
	// Name is the configuration name of the dialect.
	Name() string
	// DriverName is the database/sql driver name.
	DriverName() string
	// Rebind rewrites ? placeholders into the driver's syntax.
	Rebind(query string) string
	// Schema returns the migration statements.
	Schema() []string
	// UpsertKeyStat adds presses and errors to an existing key row.
	UpsertKeyStat() string
	// Configure applies pool and session settings after opening.
	Configure(db *sql.DB) error
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "postgres", "postgresql", "pg":
		return postgresDialect{}, nil
	case "mysql", "mariadb":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (want sqlite, postgres or mysql)", name)
	}
}

func rebindNumbered(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return "sqlite" }
func (sqliteDialect) DriverName() string         { return "sqlite" }
func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			lang TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			total_typed INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			latency_avg_ms REAL,
			rhythm_score INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS key_stats (
			key_char TEXT PRIMARY KEY,
			presses INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS race_results (
			race_id TEXT NOT NULL,
			participant_id TEXT NOT NULL,
			participant TEXT NOT NULL,
			is_bot INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			position INTEGER NOT NULL,
			finish_ms INTEGER NOT NULL,
			PRIMARY KEY (race_id, participant_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
}

func (sqliteDialect) UpsertKeyStat() string {
	return `INSERT INTO key_stats (key_char, presses, errors, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key_char) DO UPDATE SET
			presses = key_stats.presses + excluded.presses,
			errors = key_stats.errors + excluded.errors,
			updated_at = excluded.updated_at`
}

func (sqliteDialect) Configure(db *sql.DB) error {
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return nil
}

type postgresDialect struct{}

func (postgresDialect) Name() string               { return "postgres" }
func (postgresDialect) DriverName() string         { return "postgres" }
func (postgresDialect) Rebind(query string) string { return rebindNumbered(query) }

func (postgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			lang TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			correct_count INTEGER NOT NULL,
			total_typed INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			latency_avg_ms DOUBLE PRECISION,
			rhythm_score INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS key_stats (
			key_char TEXT PRIMARY KEY,
			presses BIGINT NOT NULL,
			errors BIGINT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS race_results (
			race_id TEXT NOT NULL,
			participant_id TEXT NOT NULL,
			participant TEXT NOT NULL,
			is_bot BOOLEAN NOT NULL,
			wpm INTEGER NOT NULL,
			position INTEGER NOT NULL,
			finish_ms BIGINT NOT NULL,
			PRIMARY KEY (race_id, participant_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
}

func (postgresDialect) UpsertKeyStat() string {
	return `INSERT INTO key_stats (key_char, presses, errors, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (key_char) DO UPDATE SET
			presses = key_stats.presses + EXCLUDED.presses,
			errors = key_stats.errors + EXCLUDED.errors,
			updated_at = EXCLUDED.updated_at`
}

func (postgresDialect) Configure(db *sql.DB) error {
	configurePool(db)
	return nil
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string               { return "mysql" }
func (mysqlDialect) DriverName() string         { return "mysql" }
func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(36) PRIMARY KEY,
			started_at VARCHAR(40) NOT NULL,
			ended_at VARCHAR(40) NOT NULL,
			mode VARCHAR(16) NOT NULL,
			lang VARCHAR(16) NOT NULL,
			wpm INT NOT NULL,
			accuracy INT NOT NULL,
			error_count INT NOT NULL,
			correct_count INT NOT NULL,
			total_typed INT NOT NULL,
			duration_ms BIGINT NOT NULL,
			latency_avg_ms DOUBLE NULL,
			rhythm_score INT NULL,
			INDEX idx_sessions_ended_at (ended_at)
		);`,
		`CREATE TABLE IF NOT EXISTS key_stats (
			key_char VARCHAR(8) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin PRIMARY KEY,
			presses BIGINT NOT NULL,
			errors BIGINT NOT NULL,
			updated_at VARCHAR(40) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS race_results (
			race_id VARCHAR(36) NOT NULL,
			participant_id VARCHAR(128) NOT NULL,
			participant VARCHAR(128) NOT NULL,
			is_bot BOOLEAN NOT NULL,
			wpm INT NOT NULL,
			position INT NOT NULL,
			finish_ms BIGINT NOT NULL,
			PRIMARY KEY (race_id, participant_id)
		);`,
	}
}

func (mysqlDialect) UpsertKeyStat() string {
	return `INSERT INTO key_stats (key_char, presses, errors, updated_at) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			presses = presses + VALUES(presses),
			errors = errors + VALUES(errors),
			updated_at = VALUES(updated_at)`
}

func (mysqlDialect) Configure(db *sql.DB) error {
	configurePool(db)
	return nil
}
