package db

import (
	"context"
	"fmt"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
)

// WithApplyLock runs fn while holding a session advisory lock so two jobs never delete
// from the catalog at the same time. It fails with ErrLocked when another job holds it.
func (db *DB) WithApplyLock(ctx context.Context, fn func(ctx context.Context) error) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", applyLockID).Scan(&acquired); err != nil {
		return fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		return apperrors.ErrLocked
	}

	defer func() {
		//nolint:errcheck // lock is released with the session anyway
		_, _ = conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", applyLockID)
	}()

	return fn(ctx)
}
