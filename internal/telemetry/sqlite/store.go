// Package sqlite provides a SQLite-backed telemetry event store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	perrors "github.com/louisbranch/echowire/internal/platform/errors"
	"github.com/louisbranch/echowire/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/echowire/internal/telemetry"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis reverses toMillis for persisted millisecond timestamps.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is a SQLite-backed telemetry event store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite telemetry store at the provided path and applies
// embedded migrations before the store is handed to higher layers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every session goroutine appends through this handle; a single
	// connection keeps writers serialized instead of tripping SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEvent persists one telemetry event.
func (s *Store) AppendEvent(ctx context.Context, evt telemetry.Event) error {
	if s == nil || s.sqlDB == nil {
		return perrors.New(perrors.CodeStoreFailed, "telemetry store is not open")
	}
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO events (occurred_at, event_type, peer, detail) VALUES (?, ?, ?, ?)",
		toMillis(ts), string(evt.Type), evt.Peer, evt.Detail,
	)
	if err != nil {
		return perrors.Wrap(perrors.CodeStoreFailed, "append telemetry event", err)
	}
	return nil
}

// ListEvents returns all recorded events in insertion order.
func (s *Store) ListEvents(ctx context.Context) ([]telemetry.Event, error) {
	if s == nil || s.sqlDB == nil {
		return nil, perrors.New(perrors.CodeStoreFailed, "telemetry store is not open")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT occurred_at, event_type, peer, detail FROM events ORDER BY id",
	)
	if err != nil {
		return nil, perrors.Wrap(perrors.CodeStoreFailed, "list telemetry events", err)
	}
	defer rows.Close()

	var events []telemetry.Event
	for rows.Next() {
		var occurredAt int64
		var eventType, peer, detail string
		if err := rows.Scan(&occurredAt, &eventType, &peer, &detail); err != nil {
			return nil, perrors.Wrap(perrors.CodeStoreFailed, "scan telemetry event", err)
		}
		events = append(events, telemetry.Event{
			Timestamp: fromMillis(occurredAt),
			Type:      telemetry.EventType(eventType),
			Peer:      peer,
			Detail:    detail,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, perrors.Wrap(perrors.CodeStoreFailed, "iterate telemetry events", err)
	}
	return events, nil
}

// CountByType returns the number of recorded events of the given type.
func (s *Store) CountByType(ctx context.Context, eventType telemetry.EventType) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, perrors.New(perrors.CodeStoreFailed, "telemetry store is not open")
	}
	var count int
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE event_type = ?", string(eventType),
	)
	if err := row.Scan(&count); err != nil {
		return 0, perrors.Wrap(perrors.CodeStoreFailed, "count telemetry events", err)
	}
	return count, nil
}
