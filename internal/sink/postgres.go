package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/amishk599/ghboard/internal/model"
)

var _ model.Sink = (*PostgresSink)(nil)

// PostgresSink upserts records into a Postgres table keyed by (company, id).
type PostgresSink struct {
	db     *sql.DB
	table  string
	upsert string
}

// NewPostgresSink connects to dsn and ensures table exists. The table name
// is quoted as an identifier.
func NewPostgresSink(ctx context.Context, dsn, table string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	quoted := pq.QuoteIdentifier(table)
	s := &PostgresSink{db: db, table: quoted, upsert: upsertQuery(quoted, "$")}
	if err := s.ensureTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return s, nil
}

func (s *PostgresSink) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			company      TEXT    NOT NULL,
			id           BIGINT  NOT NULL,
			title        TEXT    NOT NULL,
			type         TEXT,
			description  TEXT    NOT NULL,
			location     TEXT    NOT NULL,
			locations    JSONB   NOT NULL,
			is_remote    BOOLEAN NOT NULL,
			is_hybrid    BOOLEAN NOT NULL,
			salary       JSONB,
			department   TEXT    NOT NULL,
			departments  JSONB   NOT NULL,
			metadata     JSONB   NOT NULL,
			posting_url  TEXT    NOT NULL,
			apply_url    TEXT    NOT NULL,
			published_at TEXT    NOT NULL,
			run_id       TEXT    NOT NULL,
			stored_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (company, id)
		)
	`, s.table)

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Emit inserts the record or replaces the stored copy.
func (s *PostgresSink) Emit(ctx context.Context, rec model.Record) error {
	args, err := recordRow(rec, model.RunID(ctx))
	if err != nil {
		return fmt.Errorf("storing %s: %w", rec.Key(), err)
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, args...); err != nil {
		return fmt.Errorf("storing %s: %w", rec.Key(), err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
