package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const CountryRunsSchema = `
	CREATE TABLE IF NOT EXISTS country_runs (
		id VARCHAR PRIMARY KEY,
		country VARCHAR NOT NULL,
		year INTEGER NOT NULL,
		status VARCHAR NOT NULL,
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP NULL,
		recommended VARCHAR NULL,
		error VARCHAR NULL
	);
`

const RunTablesSchema = `
	CREATE TABLE IF NOT EXISTS run_tables (
		run_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		row_count INTEGER NOT NULL,
		PRIMARY KEY (run_id, name)
	);
`

var bootQueries = []string{
	CountryRunsSchema,
	RunTablesSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return fmt.Errorf("boot query: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
