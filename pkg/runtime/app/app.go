package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/funding-atlas/pkg/services/catalog"
	"github.com/de-tools/funding-atlas/pkg/services/config"
	"github.com/de-tools/funding-atlas/pkg/services/reconcile"
	"github.com/de-tools/funding-atlas/pkg/services/workflow"
	"github.com/de-tools/funding-atlas/pkg/store/client"
	"github.com/de-tools/funding-atlas/pkg/store/duckdb"
	"github.com/de-tools/funding-atlas/pkg/store/duckdb/runs"
	"github.com/de-tools/funding-atlas/pkg/store/fts"
	"github.com/de-tools/funding-atlas/pkg/store/s3"
)

type Options struct {
	// ProfilesPath is the ini file with FTS source profiles. A missing file
	// falls back to the public API.
	ProfilesPath string
	Profile      string
	AWSProfile   string
	Settings     config.Settings
	// WriteFiles exports tables as CSV files into Settings.OutputDir.
	WriteFiles bool
}

// App holds the services shared by the CLI and the web server.
type App struct {
	Catalog  catalog.Service
	Ledger   runs.Store
	Settings config.Settings

	opts   Options
	source fts.Store
	db     *sql.DB

	once       sync.Once
	controller *workflow.DefaultController
	err        error
}

func New(ctx context.Context, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	registry, err := newRegistry(opts.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create config registry: %w", err)
	}
	src, err := registry.GetSource(ctx, opts.Profile)
	if err != nil {
		return nil, err
	}

	s := opts.Settings
	apiClient, err := client.NewClient(client.Config{
		BaseURL:      src.BaseURL,
		ClientID:     src.ClientID,
		Password:     src.Password,
		RetryMax:     s.Retry.Max,
		RetryWaitMin: s.Retry.WaitMin,
		RetryWaitMax: s.Retry.WaitMax,
		Timeout:      s.Timeout,
	}, *logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	source, err := fts.NewStore(apiClient)
	if err != nil {
		return nil, err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: s.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	ledger, err := runs.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run store: %w", err)
	}

	logger.Debug().Str("base_url", src.BaseURL).Str("db", s.DBPath).Msg("application configured")

	return &App{
		Catalog:  catalog.NewService(source),
		Ledger:   ledger,
		Settings: s,
		opts:     opts,
		source:   source,
		db:       db,
	}, nil
}

func newRegistry(path string) (config.Registry, error) {
	if path == "" {
		return config.NewEmptyRegistry(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.NewEmptyRegistry(), nil
	}
	return config.NewRegistry(path)
}

// Controller builds the country pipeline on first use. It loads the
// location catalog, so it needs the API to be reachable.
func (a *App) Controller(ctx context.Context) (*workflow.DefaultController, error) {
	a.once.Do(func() {
		a.controller, a.err = a.buildController(ctx)
	})
	return a.controller, a.err
}

func (a *App) buildController(ctx context.Context) (*workflow.DefaultController, error) {
	resolver, err := a.Catalog.Resolver(ctx)
	if err != nil {
		return nil, err
	}
	generator := reconcile.NewGenerator(a.source, resolver, reconcile.Options{Year: a.Settings.Year})

	var sinks []workflow.Sink
	if a.opts.WriteFiles {
		sinks = append(sinks, export.NewCSVWriter(a.Settings.OutputDir))
	}
	if a.Settings.Bucket != "" {
		awsCfg, err := s3.LoadConfig(ctx, a.opts.AWSProfile, a.Settings.Region)
		if err != nil {
			return nil, err
		}
		publisher, err := s3.NewPublisherFromConfig(*awsCfg, a.Settings.Bucket, a.Settings.Prefix)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, publisher)
	}

	return workflow.NewController(generator, a.Ledger, sinks...), nil
}

func (a *App) Close() error {
	return a.db.Close()
}
