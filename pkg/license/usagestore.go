package license

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// UsageStore persists the cumulative analysis counter in SQLite so
// quota enforcement survives restarts. A single row holds the counter;
// increments are monotonic.
type UsageStore struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once
}

// NewUsageStore opens (or creates) the usage counter database at the
// given path.
func NewUsageStore(dbPath string) (*UsageStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("usage db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &UsageStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize usage schema: %w", err)
	}
	return store, nil
}

func (s *UsageStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_counter (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		analyses INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	INSERT OR IGNORE INTO usage_counter (id, analyses) VALUES (1, 0);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Increment adds one analysis to the counter and returns the new
// total.
func (s *UsageStore) Increment(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE usage_counter
		SET analyses = analyses + 1, updated_at = datetime('now')
		WHERE id = 1
		RETURNING analyses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment usage counter: %w", err)
	}
	return count, nil
}

// Count reads the current counter value.
func (s *UsageStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT analyses FROM usage_counter WHERE id = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("read usage counter: %w", err)
	}
	return count, nil
}

// Close closes the underlying database. Safe to call more than once.
func (s *UsageStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}
