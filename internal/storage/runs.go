package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RunRecord is the audit entry for one dedup run.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Strategy   string
	Applied    bool
	Loaded     int
	TokensUsed int
	Errors     []string
	Removals   []RunRemoval
}

// RunRemoval is one record a run recommended for removal.
type RunRemoval struct {
	EventID    string
	KeepID     string
	Method     string
	Confidence string
	Reason     string
	Day        string
}

// SaveRun stores a run and its removals in one transaction.
func (db *DB) SaveRun(ctx context.Context, run RunRecord) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO dedup_runs (run_id, started_at, finished_at, strategy, applied, loaded, removed, tokens_used, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.RunID, run.StartedAt, run.FinishedAt, run.Strategy, run.Applied, run.Loaded, len(run.Removals), run.TokensUsed, errs)
	if err != nil {
		return fmt.Errorf("insert dedup run: %w", err)
	}

	if len(run.Removals) > 0 {
		rows := make([][]any, 0, len(run.Removals))
		for _, r := range run.Removals {
			rows = append(rows, []any{run.RunID, r.EventID, r.KeepID, r.Method, r.Confidence, SanitizeUTF8(r.Reason), r.Day})
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"dedup_run_removals"},
			[]string{"run_id", "event_id", "keep_id", "method", "confidence", "reason", "day"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("insert dedup run removals: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
