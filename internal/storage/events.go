package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

// Events are listed by start time, then ID, so repeated runs see the same order.
const listEventsQuery = `
	SELECT id, title, description, organizer, location, start_date, price, source, created_at
	FROM events`

// eventWhere builds the WHERE clause for filter with positional arguments.
func eventWhere(filter domain.EventFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, fmt.Sprintf("start_date >= $%d", len(args)))
	}

	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		conds = append(conds, fmt.Sprintf("start_date < $%d", len(args)))
	}

	if len(filter.Sources) > 0 {
		sources := make([]string, len(filter.Sources))
		for i, s := range filter.Sources {
			sources[i] = string(s)
		}

		args = append(args, sources)
		conds = append(conds, fmt.Sprintf("source = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListEvents returns the events matching filter.
func (db *DB) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.EventRecord, error) {
	where, args := eventWhere(filter)

	rows, err := db.Pool.Query(ctx, listEventsQuery+where+" ORDER BY start_date, id", args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.EventRecord

	for rows.Next() {
		var (
			id                               pgtype.UUID
			title                            string
			description, organizer, location pgtype.Text
			price, source                    pgtype.Text
			startDate, createdAt             pgtype.Timestamptz
		)

		if err := rows.Scan(&id, &title, &description, &organizer, &location, &startDate, &price, &source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		events = append(events, domain.EventRecord{
			ID:          fromUUID(id),
			Title:       SanitizeUTF8(title),
			Description: fromText(description),
			Organizer:   fromText(organizer),
			Location:    fromText(location),
			StartDate:   startDate.Time,
			Price:       fromText(price),
			Source:      domain.Source(fromText(source)),
			CreatedAt:   fromTimestamptzPtr(createdAt),
		})
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate event rows: %w", rows.Err())
	}

	return events, nil
}

// CountEvents returns how many events match filter.
func (db *DB) CountEvents(ctx context.Context, filter domain.EventFilter) (int, error) {
	where, args := eventWhere(filter)

	var count int64
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM events"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return int(count), nil
}

// DeleteEvents deletes the events with the given IDs and returns how many rows went.
// Any malformed ID fails the whole call before anything is deleted.
func (db *DB) DeleteEvents(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	uuids, err := toUUIDs(ids)
	if err != nil {
		return 0, err
	}

	tag, err := db.Pool.Exec(ctx, "DELETE FROM events WHERE id = ANY($1)", uuids)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}

	return tag.RowsAffected(), nil
}
