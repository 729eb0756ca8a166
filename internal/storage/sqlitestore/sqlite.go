// Package sqlitestore is a file-backed event store for working on catalog snapshots
// without a Postgres server.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	db "github.com/lueurxax/event-dedup/internal/storage"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Times are stored as fixed-width UTC text so string order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements the event store on SQLite.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
	now     func() time.Time
}

// New opens or creates a SQLite database at path.
func New(path string) (*Store, error) {
	dsn := MemoryPath

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}

		dsn = path + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One connection: every new connection to :memory: would be a fresh database.
	conn.SetMaxOpenConns(1)

	s := &Store{
		db:      conn,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // IDs are not secrets
		now:     time.Now,
	}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS events (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		organizer   TEXT,
		location    TEXT,
		start_date  TEXT NOT NULL,
		price       TEXT,
		source      TEXT NOT NULL,
		created_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);

	CREATE TABLE IF NOT EXISTS llm_usage (
		date              TEXT NOT NULL,
		provider          TEXT NOT NULL,
		model             TEXT NOT NULL,
		task              TEXT NOT NULL,
		prompt_tokens     INTEGER NOT NULL DEFAULT 0,
		completion_tokens INTEGER NOT NULL DEFAULT 0,
		request_count     INTEGER NOT NULL DEFAULT 0,
		cost_usd          REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (date, provider, model, task)
	);

	CREATE TABLE IF NOT EXISTS dedup_runs (
		run_id      TEXT PRIMARY KEY,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		strategy    TEXT NOT NULL,
		applied     INTEGER NOT NULL DEFAULT 0,
		loaded      INTEGER NOT NULL DEFAULT 0,
		removed     INTEGER NOT NULL DEFAULT 0,
		tokens_used INTEGER NOT NULL DEFAULT 0,
		errors      TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS dedup_run_removals (
		run_id     TEXT NOT NULL REFERENCES dedup_runs(run_id) ON DELETE CASCADE,
		event_id   TEXT NOT NULL,
		keep_id    TEXT NOT NULL DEFAULT '',
		method     TEXT NOT NULL,
		confidence TEXT NOT NULL,
		reason     TEXT NOT NULL DEFAULT '',
		day        TEXT NOT NULL,
		PRIMARY KEY (run_id, event_id)
	);
	`

	_, err := s.db.Exec(schema)

	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithApplyLock runs fn. A SQLite file has a single writer already.
func (s *Store) WithApplyLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// InsertEvents adds records to the catalog. Records without an ID get a new one,
// which is written back into the slice.
func (s *Store) InsertEvents(ctx context.Context, records []domain.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (id, title, description, organizer, location, start_date, price, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if r.ID == "" {
			r.ID = s.newID()
		}

		var createdAt any
		if r.CreatedAt != nil {
			createdAt = formatTime(*r.CreatedAt)
		}

		_, err := stmt.ExecContext(ctx, r.ID, r.Title, nullable(r.Description), nullable(r.Organizer),
			nullable(r.Location), formatTime(r.StartDate), nullable(r.Price), string(r.Source), createdAt)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func eventWhere(filter domain.EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !filter.From.IsZero() {
		conds = append(conds, "start_date >= ?")
		args = append(args, formatTime(filter.From))
	}

	if !filter.Until.IsZero() {
		conds = append(conds, "start_date < ?")
		args = append(args, formatTime(filter.Until))
	}

	if len(filter.Sources) > 0 {
		conds = append(conds, "source IN ("+placeholders(len(filter.Sources))+")")
		for _, src := range filter.Sources {
			args = append(args, string(src))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListEvents returns the events matching filter ordered by start time, then ID.
func (s *Store) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.EventRecord, error) {
	where, args := eventWhere(filter)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, organizer, location, start_date, price, source, created_at
		FROM events`+where+` ORDER BY start_date, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.EventRecord

	for rows.Next() {
		var (
			r                                       domain.EventRecord
			description, organizer, location, price sql.NullString
			createdAt                               sql.NullString
			startDate, source                       string
		)

		if err := rows.Scan(&r.ID, &r.Title, &description, &organizer, &location, &startDate, &price, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		r.Description = description.String
		r.Organizer = organizer.String
		r.Location = location.String
		r.Price = price.String
		r.Source = domain.Source(source)

		if r.StartDate, err = parseTime(startDate); err != nil {
			return nil, fmt.Errorf("event %s start_date: %w", r.ID, err)
		}

		if createdAt.Valid {
			t, err := parseTime(createdAt.String)
			if err != nil {
				return nil, fmt.Errorf("event %s created_at: %w", r.ID, err)
			}

			r.CreatedAt = &t
		}

		events = append(events, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}

// CountEvents returns how many events match filter.
func (s *Store) CountEvents(ctx context.Context, filter domain.EventFilter) (int, error) {
	where, args := eventWhere(filter)

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return count, nil
}

// DeleteEvents deletes the events with the given IDs and returns how many rows went.
func (s *Store) DeleteEvents(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}

// IncrementLLMUsage increments usage counters for the current UTC day.
func (s *Store) IncrementLLMUsage(ctx context.Context, provider, model, task string, promptTokens, completionTokens int, cost float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_usage (date, provider, model, task, prompt_tokens, completion_tokens, request_count, cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (date, provider, model, task) DO UPDATE SET
			prompt_tokens = prompt_tokens + excluded.prompt_tokens,
			completion_tokens = completion_tokens + excluded.completion_tokens,
			request_count = request_count + 1,
			cost_usd = cost_usd + excluded.cost_usd
	`, s.now().UTC().Format(db.DateLayout), provider, model, task, promptTokens, completionTokens, cost)
	if err != nil {
		return fmt.Errorf("increment llm usage: %w", err)
	}

	return nil
}

// GetDailyLLMUsage returns aggregated usage for the given calendar day.
func (s *Store) GetDailyLLMUsage(ctx context.Context, day time.Time) (*db.LLMUsageSummary, error) {
	date := day.Format(db.DateLayout)

	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, model, task, prompt_tokens, completion_tokens, request_count, cost_usd
		FROM llm_usage WHERE date = ? ORDER BY provider, model, task`, date)
	if err != nil {
		return nil, fmt.Errorf("get llm usage: %w", err)
	}
	defer rows.Close()

	summary := db.NewLLMUsageSummary(date)

	for rows.Next() {
		u := db.LLMUsage{Date: date}

		if err := rows.Scan(&u.Provider, &u.Model, &u.Task, &u.PromptTokens, &u.CompletionTokens, &u.RequestCount, &u.CostUSD); err != nil {
			return nil, fmt.Errorf("scan llm usage row: %w", err)
		}

		summary.Add(u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate llm usage rows: %w", err)
	}

	return summary, nil
}

// SaveRun stores a run and its removals in one transaction.
func (s *Store) SaveRun(ctx context.Context, run db.RunRecord) error {
	errs := run.Errors
	if errs == nil {
		errs = []string{}
	}

	errsJSON, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dedup_runs (run_id, started_at, finished_at, strategy, applied, loaded, removed, tokens_used, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Strategy, run.Applied,
		run.Loaded, len(run.Removals), run.TokensUsed, string(errsJSON))
	if err != nil {
		return fmt.Errorf("insert dedup run: %w", err)
	}

	for _, r := range run.Removals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dedup_run_removals (run_id, event_id, keep_id, method, confidence, reason, day)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, r.EventID, r.KeepID, r.Method, r.Confidence, r.Reason, r.Day)
		if err != nil {
			return fmt.Errorf("insert dedup run removal %s: %w", r.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}

	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
