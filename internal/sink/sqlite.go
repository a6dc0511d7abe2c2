package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/amishk599/ghboard/internal/model"
)

var _ model.Sink = (*SQLiteSink)(nil)

// SQLiteSink upserts records into a job_records table keyed by (company, id).
// Re-running a board refreshes rows in place instead of duplicating them.
type SQLiteSink struct {
	db     *sql.DB
	upsert string
}

// NewSQLiteSink opens (or creates) a SQLite database at dbPath and ensures the
// job_records table exists.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer at a time; parallel boards would otherwise hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS job_records (
		company      TEXT    NOT NULL,
		id           INTEGER NOT NULL,
		title        TEXT    NOT NULL,
		type         TEXT,
		description  TEXT    NOT NULL,
		location     TEXT    NOT NULL,
		locations    TEXT    NOT NULL,
		is_remote    BOOLEAN NOT NULL,
		is_hybrid    BOOLEAN NOT NULL,
		salary       TEXT,
		department   TEXT    NOT NULL,
		departments  TEXT    NOT NULL,
		metadata     TEXT    NOT NULL,
		posting_url  TEXT    NOT NULL,
		apply_url    TEXT    NOT NULL,
		published_at TEXT    NOT NULL,
		run_id       TEXT    NOT NULL,
		stored_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (company, id)
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating job_records table: %w", err)
	}

	return &SQLiteSink{db: db, upsert: upsertQuery("job_records", "?")}, nil
}

// Emit inserts the record or replaces the stored copy.
func (s *SQLiteSink) Emit(ctx context.Context, rec model.Record) error {
	args, err := recordRow(rec, model.RunID(ctx))
	if err != nil {
		return fmt.Errorf("storing %s: %w", rec.Key(), err)
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, args...); err != nil {
		return fmt.Errorf("storing %s: %w", rec.Key(), err)
	}
	return nil
}

// Size returns the number of stored records.
func (s *SQLiteSink) Size(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM job_records").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting job records: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// upsertQuery builds an INSERT ... ON CONFLICT (company, id) DO UPDATE over
// recordColumns. placeholder is "?" for SQLite; "$" yields $1..$n for Postgres.
func upsertQuery(table, placeholder string) string {
	marks := make([]string, len(recordColumns))
	var updates []string
	for i, col := range recordColumns {
		if placeholder == "$" {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = placeholder
		}
		if col != "company" && col != "id" {
			updates = append(updates, col+" = excluded."+col)
		}
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (company, id) DO UPDATE SET %s",
		table,
		strings.Join(recordColumns, ", "),
		strings.Join(marks, ", "),
		strings.Join(updates, ", "),
	)
}
