// Package sqlite implementa core.Store sobre sqlite (modernc, sin cgo).
// Pensado para instancias single-node chicas; la serialización por principal
// se resuelve con un mutex de proceso, que con el single-writer de sqlite
// alcanza.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/dropDatabas3/gatekeeper/internal/store/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS app_user (
    id            TEXT PRIMARY KEY,
    first_name    TEXT NOT NULL DEFAULT '',
    last_name     TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'USER',
    mfa_enabled   INTEGER NOT NULL DEFAULT 0,
    mfa_secret    TEXT,
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS issued_token (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL REFERENCES app_user(id),
    access_token  TEXT NOT NULL UNIQUE,
    refresh_token TEXT UNIQUE,
    kind          TEXT NOT NULL DEFAULT 'bearer',
    expired       INTEGER NOT NULL DEFAULT 0,
    revoked       INTEGER NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS issued_token_user_idx ON issued_token (user_id);
`

type Store struct {
	db *sql.DB
	mu sync.Mutex // serializa Rotate; sqlite es single-writer igual
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Un solo writer evita SQLITE_BUSY en las transacciones de rotación.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Users() core.UserRepository { return &userRepo{s: s} }
func (s *Store) Tokens() core.TokenLedger   { return &tokenLedger{s: s} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close() error                   { return s.db.Close() }

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
