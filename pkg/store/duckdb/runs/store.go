package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/funding-atlas/pkg/models/store"
	"github.com/de-tools/funding-atlas/pkg/store/duckdb"
)

var ErrRunNotFound = errors.New("run not found")

// Store is the ledger of country runs.
type Store interface {
	CreateRun(ctx context.Context, run *store.Run) error
	// FinishRun records the final status, error and tables of a run.
	FinishRun(ctx context.Context, run *store.Run) error
	ListRuns(ctx context.Context, countries []string, limit int) ([]*store.Run, error)
}

type runStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &runStore{
		db: db,
	}, nil
}

func (s *runStore) CreateRun(ctx context.Context, run *store.Run) error {
	query := `
		INSERT INTO country_runs (id, country, year, status, started_at)
		VALUES (?, ?, ?, ?, ?)`

	var stmt *sql.Stmt
	var err error
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		stmt, err = tx.PrepareContext(ctx, query)
	} else {
		stmt, err = s.db.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, run.ID, run.Country, run.Year, run.Status, run.StartedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *runStore) FinishRun(ctx context.Context, run *store.Run) error {
	tx := duckdb.GetTransaction(ctx)
	if tx != nil {
		return s.finish(ctx, tx, run)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := s.finish(duckdb.WithTransaction(ctx, tx), tx, run); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *runStore) finish(ctx context.Context, tx *sql.Tx, run *store.Run) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE country_runs
		SET status = ?, finished_at = ?, recommended = ?, error = ?
		WHERE id = ?`,
		run.Status, nullTime(run.FinishedAt), nullString(run.Recommended), nullString(run.Error), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_tables WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("clear run tables: %w", err)
	}
	if len(run.Tables) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_tables (run_id, name, row_count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range run.Tables {
		if _, err := stmt.ExecContext(ctx, run.ID, t.Name, t.Rows); err != nil {
			return fmt.Errorf("insert run table: %w", err)
		}
	}
	return nil
}

func (s *runStore) ListRuns(ctx context.Context, countries []string, limit int) ([]*store.Run, error) {
	var where string
	args := make([]interface{}, 0, len(countries)+1)
	if len(countries) > 0 {
		placeholders := make([]string, 0, len(countries))
		for _, c := range countries {
			placeholders = append(placeholders, "?")
			args = append(args, strings.ToUpper(c))
		}
		where = fmt.Sprintf("WHERE r.country IN (%s)", strings.Join(placeholders, ","))
	}
	var limitClause string
	if limit > 0 {
		limitClause = "LIMIT ?"
		args = append(args, limit)
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.country, r.year, r.status, r.started_at, r.finished_at, r.recommended, r.error,
			t.name, t.row_count
		FROM (
			SELECT * FROM country_runs r %s ORDER BY started_at DESC, id %s
		) r
		LEFT JOIN run_tables t ON t.run_id = r.id
		ORDER BY r.started_at DESC, r.id, t.name`, where, limitClause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]*store.Run, error) {
	runs := make([]*store.Run, 0)
	byID := make(map[string]*store.Run)
	for rows.Next() {
		var (
			run         store.Run
			finishedAt  sql.NullTime
			recommended sql.NullString
			runErr      sql.NullString
			tableName   sql.NullString
			rowCount    sql.NullInt64
		)
		if err := rows.Scan(
			&run.ID, &run.Country, &run.Year, &run.Status, &run.StartedAt,
			&finishedAt, &recommended, &runErr, &tableName, &rowCount,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		current, ok := byID[run.ID]
		if !ok {
			if finishedAt.Valid {
				t := finishedAt.Time
				run.FinishedAt = &t
			}
			if recommended.Valid {
				run.Recommended = &recommended.String
			}
			if runErr.Valid {
				run.Error = &runErr.String
			}
			current = &run
			byID[run.ID] = current
			runs = append(runs, current)
		}
		if tableName.Valid {
			current.Tables = append(current.Tables, store.RunTable{Name: tableName.String, Rows: int(rowCount.Int64)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
