// Package store persists organizations, projects, agents, debates, debate
// messages and LLM interaction logs in SQLite.
//
// Every operation is scoped to an organization passed explicitly by the
// caller; rows belonging to other organizations behave as if absent.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Errors returned by the store.
var (
	// ErrNotFound indicates the record does not exist in the organization.
	ErrNotFound = errors.New("not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store is closed")
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB

	// debateLocks serializes message creation per debate.
	debateLocks sync.Map // debate id -> *sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// New opens (creating if needed) the database at path and applies
// migrations.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// dsn applies the connection pragmas to every pooled connection: WAL for
// concurrent readers, a busy timeout so writers wait instead of failing
// with SQLITE_BUSY, and foreign keys for cascading deletes.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			org_id      TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,
			UNIQUE (org_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id               TEXT PRIMARY KEY,
			org_id           TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			project_id       TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			name             TEXT NOT NULL,
			role             TEXT NOT NULL DEFAULT '',
			goal             TEXT NOT NULL DEFAULT '',
			domain_expertise TEXT NOT NULL DEFAULT '',
			debate_style     TEXT NOT NULL DEFAULT '',
			backstory        TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT '',
			is_system_agent  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_project ON agents(org_id, project_id, name)`,
		`CREATE TABLE IF NOT EXISTS debates (
			id             TEXT PRIMARY KEY,
			org_id         TEXT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			name           TEXT NOT NULL DEFAULT '',
			topic          TEXT NOT NULL,
			summary        TEXT NOT NULL DEFAULT '',
			final_decision TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS debate_agents (
			debate_id  TEXT NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
			agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			PRIMARY KEY (debate_id, agent_id)
		)`,
		`CREATE TABLE IF NOT EXISTS debate_messages (
			id                 TEXT PRIMARY KEY,
			org_id             TEXT NOT NULL,
			debate_id          TEXT NOT NULL REFERENCES debates(id) ON DELETE CASCADE,
			agent_id           TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
			content            TEXT NOT NULL,
			msg_order          INTEGER NOT NULL,
			is_memory_disabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at         TEXT NOT NULL,
			UNIQUE (debate_id, msg_order)
		)`,
		`CREATE TABLE IF NOT EXISTS llm_interactions (
			id                TEXT PRIMARY KEY,
			org_id            TEXT NOT NULL DEFAULT '',
			project_id        TEXT NOT NULL DEFAULT '',
			debate_id         TEXT NOT NULL DEFAULT '',
			agent_id          TEXT NOT NULL DEFAULT '',
			model_name        TEXT NOT NULL DEFAULT '',
			input_messages    TEXT NOT NULL,
			output_response   TEXT NOT NULL DEFAULT '',
			status            TEXT NOT NULL,
			error             TEXT NOT NULL DEFAULT '',
			prompt_tokens     INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			duration_ms       INTEGER NOT NULL DEFAULT 0,
			created_at        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_debate ON llm_interactions(org_id, debate_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// lockDebate returns the unlock function of the debate's message mutex.
func (s *Store) lockDebate(debateID string) func() {
	v, _ := s.debateLocks.LoadOrStore(debateID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
