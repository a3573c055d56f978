package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"continuum-hq/continuum/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite archive backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/events.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite. The archive
// stores only the already-scrubbed record, so it inherits the no-content
// guarantee from the builder; nothing here inspects or transforms content.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend and initializes the
// schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "evidence.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}
	return nil
}

// StoreEvent persists one analysis event. Content-free scalars are broken
// out into columns for aggregation; the full record rides along as JSON.
func (s *SQLiteStorage) StoreEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	record, err := json.Marshal(event)
	if err != nil {
		return evidence.NewStorageError("sqlite", "marshal", err)
	}

	freqType, _ := event.Evidence["freq_type"].(string)
	mode, _ := event.Evidence["mode"].(string)
	scenario, _ := event.Evidence["scenario"].(string)
	schemaValid := event.Evidence.SchemaValid()
	decision, _ := event.Metadata["decision_state"].(string)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, timestamp, input_fp_sha256, input_length,
			freq_type, mode, scenario, decision_state, schema_valid, record
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.UTC(),
		event.Input.SHA256,
		event.Input.Length,
		freqType,
		mode,
		scenario,
		decision,
		schemaValid,
		string(record),
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store_event", err)
	}
	return nil
}

// StoreFeedback persists one feedback event.
func (s *SQLiteStorage) StoreFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, timestamp, target_log_id, accuracy, helpful, accepted)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.UTC(),
		event.TargetLogID,
		event.Feedback.Accuracy,
		event.Feedback.Helpful,
		event.Feedback.Accepted,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store_feedback", err)
	}
	return nil
}

// Stats aggregates counts from the archive.
func (s *SQLiteStorage) Stats(ctx context.Context) (*evidence.StorageStats, error) {
	stats := &evidence.StorageStats{
		FreqTypes: make(map[string]int64),
		Decisions: make(map[string]int64),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&stats.TotalEvents); err != nil {
		return nil, evidence.NewStorageError("sqlite", "stats", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&stats.TotalFeedback); err != nil {
		return nil, evidence.NewStorageError("sqlite", "stats", err)
	}

	if err := s.countBy(ctx, "freq_type", stats.FreqTypes); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "decision_state", stats.Decisions); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *SQLiteStorage) countBy(ctx context.Context, column string, out map[string]int64) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM events WHERE %s != '' GROUP BY %s", column, column, column))
	if err != nil {
		return evidence.NewStorageError("sqlite", "stats", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return evidence.NewStorageError("sqlite", "stats", err)
		}
		out[key] = count
	}
	return rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// schema contains the SQL statements creating the event archive. Columns
// hold only fingerprints and verdict labels; raw text never reaches this
// layer.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,
    input_fp_sha256 TEXT NOT NULL,
    input_length INTEGER NOT NULL,
    freq_type TEXT,
    mode TEXT,
    scenario TEXT,
    decision_state TEXT,
    schema_valid BOOLEAN,
    record TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
    id TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,
    target_log_id TEXT NOT NULL,
    accuracy INTEGER,
    helpful INTEGER,
    accepted BOOLEAN
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_freq_type ON events(freq_type);
CREATE INDEX IF NOT EXISTS idx_events_decision ON events(decision_state);
CREATE INDEX IF NOT EXISTS idx_feedback_target ON feedback(target_log_id);
`
