package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/river-radar-sim/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	tick          INTEGER NOT NULL,
	emitted_at    TEXT NOT NULL,
	hit_type      TEXT NOT NULL,
	velocity      REAL NOT NULL,
	discharge_m3s REAL NOT NULL,
	status        TEXT NOT NULL,
	reading_json  TEXT NOT NULL,
	UNIQUE (session_id, tick)
);

CREATE INDEX IF NOT EXISTS readings_session_tick ON readings (session_id, tick);
`

// MaxHistory caps how many rows Recent returns.
const MaxHistory = 1000

// Store persists sampled readings in SQLite. It implements pipeline.Sink.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Publish writes a batch of readings in one transaction. A reading already
// stored for the same session and tick is left untouched, so a retried batch
// does not create duplicates.
func (s *Store) Publish(ctx context.Context, records []domain.ReadingRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO readings
		 (session_id, tick, emitted_at, hit_type, velocity, discharge_m3s, status, reading_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		data, err := json.Marshal(rec.Reading)
		if err != nil {
			return fmt.Errorf("marshal reading %d: %w", rec.Reading.Tick, err)
		}
		r := rec.Reading
		if _, err := stmt.ExecContext(ctx,
			rec.SessionID, int64(r.Tick), r.Timestamp.UTC().Format(time.RFC3339Nano),
			string(r.HitType), r.Velocity, r.DischargeM3s, string(r.Status), string(data),
		); err != nil {
			return fmt.Errorf("insert reading %d: %w", r.Tick, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Recent returns up to limit stored readings, newest first. limit is
// clamped to [1, MaxHistory].
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.ReadingRecord, error) {
	limit = max(1, min(limit, MaxHistory))
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, reading_json FROM readings ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ReadingRecord, 0, limit)
	for rows.Next() {
		var (
			rec  domain.ReadingRecord
			data string
		)
		if err := rows.Scan(&rec.SessionID, &data); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Reading); err != nil {
			return nil, fmt.Errorf("decode reading: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

// Count returns the number of stored readings for a session.
func (s *Store) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM readings WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}
