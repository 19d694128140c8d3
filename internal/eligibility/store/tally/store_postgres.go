package tally

import (
	"context"
	"database/sql"
	"fmt"

	"screening/internal/eligibility"
	"screening/internal/platform/device"
)

const createTallyTable = `
	CREATE TABLE IF NOT EXISTS outcome_tallies (
		outcome      TEXT   NOT NULL,
		device_class TEXT   NOT NULL,
		count        BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (outcome, device_class)
	)
`

// PostgresStore persists tallies in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tally table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTallyTable); err != nil {
		return fmt.Errorf("create outcome_tallies: %w", err)
	}
	return nil
}

// Increment upserts the row; concurrent increments serialize on the row lock.
func (s *PostgresStore) Increment(ctx context.Context, outcome eligibility.Outcome, class device.Class) error {
	query := `
		INSERT INTO outcome_tallies (outcome, device_class, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (outcome, device_class) DO UPDATE SET
			count = outcome_tallies.count + 1
	`
	if _, err := s.db.ExecContext(ctx, query, string(outcome), string(class)); err != nil {
		return fmt.Errorf("increment tally: %w", err)
	}
	return nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]eligibility.OutcomeCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, device_class, count FROM outcome_tallies`)
	if err != nil {
		return nil, fmt.Errorf("read tallies: %w", err)
	}
	defer rows.Close()

	counts := make(map[key]int64)
	for rows.Next() {
		var outcome, class string
		var n int64
		if err := rows.Scan(&outcome, &class, &n); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		counts[key{outcome: eligibility.Outcome(outcome), device: device.ParseClass(class)}] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tallies: %w", err)
	}
	return sorted(counts), nil
}
