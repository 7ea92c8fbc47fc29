package store

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	sched "github.com/BAQIC/emulate-server"
)

// Store implements sched.JobQueue, sched.AgentRegistry, and
// sched.AssignmentLog over a single *bun.DB.
type Store struct {
	db *bun.DB
}

var (
	_ sched.JobQueue      = (*Store)(nil)
	_ sched.AgentRegistry = (*Store)(nil)
	_ sched.AssignmentLog = (*Store)(nil)
)

// Open dials db_url and returns a *Store bound to the dialect implied
// by its scheme: "sqlite://" (or a bare file path) selects
// modernc.org/sqlite + sqlitedialect; "postgres://" or "postgresql://"
// selects pgx/v5 + pgdialect. The caller must call InitDB before first
// use on a fresh database.
func Open(dbURL string) (*Store, error) {
	scheme := "sqlite"
	if u, err := url.Parse(dbURL); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}

	switch scheme {
	case "postgres", "postgresql":
		sqldb, err := sql.Open("pgx", dbURL)
		if err != nil {
			return nil, fmt.Errorf("store: open postgres: %w", err)
		}
		return &Store{db: bun.NewDB(sqldb, pgdialect.New())}, nil
	case "sqlite", "file", "":
		dsn := dbURL
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("store: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return &Store{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
	default:
		return nil, fmt.Errorf("store: unsupported db_url scheme %q", scheme)
	}
}

// DB returns the underlying *bun.DB, for schema init and health
// checks at process startup.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
