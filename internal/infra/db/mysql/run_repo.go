package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

const schema = `
CREATE TABLE IF NOT EXISTS security_check_runs (
  id           VARCHAR(64)  NOT NULL PRIMARY KEY,
  batch_id     VARCHAR(64)  NOT NULL DEFAULT '',
  check_id     VARCHAR(128) NOT NULL,
  status       VARCHAR(16)  NOT NULL,
  message      TEXT         NOT NULL,
  details_json JSON         NOT NULL,
  oracle_error TEXT         NOT NULL,
  started_at   DATETIME(3)  NOT NULL,
  finished_at  DATETIME(3)  NOT NULL,
  duration_ms  BIGINT       NOT NULL DEFAULT 0,
  INDEX idx_check_runs_check (check_id, finished_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Migrate creates the journal table when missing.
func (r *RunRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create security_check_runs: %w", err)
	}
	return nil
}

// Append insert satu run record
func (r *RunRepository) Append(ctx context.Context, rec *domain.RunRecord) error {
	const q = `
INSERT INTO security_check_runs
(id, batch_id, check_id, status, message, details_json, oracle_error,
 started_at, finished_at, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	finished := rec.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	started := rec.StartedAt
	if started.IsZero() {
		started = finished
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.BatchID, string(rec.CheckID), stringOrDash(string(rec.Status)),
		stringOrDash(rec.Message), encodeDetails(rec.Details), rec.OracleError,
		started.UTC(), finished.UTC(), rec.DurationMS,
	)
	return err
}

// ListByCheck latest runs first
func (r *RunRepository) ListByCheck(ctx context.Context, id domain.CheckID, limit int) ([]*domain.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, batch_id, check_id, status, message, details_json, oracle_error,
       started_at, finished_at, duration_ms
FROM security_check_runs
WHERE check_id = ?
ORDER BY finished_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, string(id), limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	out := []*domain.RunRecord{}
	for rows.Next() {
		var rec domain.RunRecord
		var details string
		if err := rows.Scan(
			&rec.ID, &rec.BatchID, &rec.CheckID, &rec.Status, &rec.Message, &details, &rec.OracleError,
			&rec.StartedAt, &rec.FinishedAt, &rec.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec.Details = decodeDetails(details)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
