package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/paddlelab/leaguesync/internal/domain/run"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func int64PtrToNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullToInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

// upsertRow is one prepared upsert statement inside a batch. The query must
// end with `RETURNING (xmax = 0)` so the scan distinguishes insert from
// update.
type upsertRow struct {
	index int
	key   string
	query string
	args  []any
}

// execUpsertBatch runs one batch inside a single transaction. Each row runs
// under a savepoint so a constraint violation rolls back that row alone and
// the rest of the batch still commits. Row failures come back in the outcome;
// only transaction-level failures return an error.
func execUpsertBatch(ctx context.Context, db *sqlx.DB, rows []upsertRow) (run.BatchOutcome, error) {
	out := run.BatchOutcome{}
	if len(rows) == 0 {
		return out, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return out, fmt.Errorf("begin upsert batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, "SAVEPOINT upsert_row"); err != nil {
			return out, fmt.Errorf("savepoint: %w", err)
		}

		var inserted bool
		if err := tx.QueryRowxContext(ctx, row.query, row.args...).Scan(&inserted); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT upsert_row"); rbErr != nil {
				return out, fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			out.Errors = append(out.Errors, run.RowError{
				Index: row.index,
				Key:   row.key,
				Err:   rowErrorMessage(err),
			})
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT upsert_row"); err != nil {
			return out, fmt.Errorf("release savepoint: %w", err)
		}
		if inserted {
			out.Inserted++
		} else {
			out.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return run.BatchOutcome{}, fmt.Errorf("commit upsert batch: %w", err)
	}

	return out, nil
}

func rowErrorMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "23" {
			return fmt.Sprintf("%s on %s: %s", pqErr.Code.Name(), pqErr.Constraint, pqErr.Message)
		}
		return pqErr.Message
	}
	return err.Error()
}
