// Package history archives received log records in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/itohio/tempmon/pkg/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session     TEXT    NOT NULL,
	received_at INTEGER NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	raw_c       REAL    NOT NULL,
	avg_c       REAL    NOT NULL,
	threshold_c REAL    NOT NULL,
	alarm       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS records_session ON records (session, elapsed_ms);
`

// Entry is a stored record.
type Entry struct {
	Session    string
	ReceivedAt time.Time
	report.Record
}

// DB is the record archive.
type DB struct {
	db *sql.DB
}

// Open opens or creates the archive at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*DB, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// A single writer; also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Insert stores one record.
func (d *DB) Insert(ctx context.Context, session string, receivedAt time.Time, rec report.Record) error {
	alarm := 0
	if rec.Alarm {
		alarm = 1
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO records (session, received_at, elapsed_ms, raw_c, avg_c, threshold_c, alarm)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session, receivedAt.UnixMilli(), rec.Elapsed.Milliseconds(),
		float64(rec.Raw), float64(rec.Avg), float64(rec.Threshold), alarm,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Recent returns up to n most recent entries, oldest first.
func (d *DB) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT session, received_at, elapsed_ms, raw_c, avg_c, threshold_c, alarm
		 FROM (SELECT * FROM records ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                     Entry
			receivedMs, elapsedMs int64
			raw, avg, thr         float64
			alarm                 int
		)
		if err := rows.Scan(&e.Session, &receivedMs, &elapsedMs, &raw, &avg, &thr, &alarm); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		e.ReceivedAt = time.UnixMilli(receivedMs)
		e.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		e.Raw = float32(raw)
		e.Avg = float32(avg)
		e.Threshold = float32(thr)
		e.Alarm = alarm != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Alarms counts stored records with the alarm raised in a session
// ("" counts all sessions).
func (d *DB) Alarms(ctx context.Context, session string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE alarm = 1 AND (? = '' OR session = ?)`,
		session, session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count alarms: %w", err)
	}
	return n, nil
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" {
		return "file::memory:?_busy_timeout=5000", nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
