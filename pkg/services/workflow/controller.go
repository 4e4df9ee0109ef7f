package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/reconcile"
	"github.com/de-tools/funding-atlas/pkg/store/duckdb/runs"
)

var ErrRunInProgress = errors.New("country run already in progress")

// Generator produces the tables of one country.
type Generator interface {
	Generate(ctx context.Context, country domain.Country) (*domain.CountryResult, error)
	Year() int
}

// Sink receives the result of a successful country run.
type Sink interface {
	Export(ctx context.Context, result *domain.CountryResult) ([]string, error)
}

type Controller interface {
	RunCountry(ctx context.Context, country domain.Country) (*domain.CountryResult, domain.Run, error)
	Start(ctx context.Context, countries []domain.Country) *Runner
	ListRuns(ctx context.Context, countries []string, limit int) ([]domain.Run, error)
}

type DefaultController struct {
	generator Generator
	ledger    runs.Store
	sinks     []Sink
	now       func() time.Time

	mu      sync.Mutex
	running map[string]struct{}
}

func NewController(generator Generator, ledger runs.Store, sinks ...Sink) *DefaultController {
	return &DefaultController{
		generator: generator,
		ledger:    ledger,
		sinks:     sinks,
		now:       time.Now,
		running:   make(map[string]struct{}),
	}
}

func (ctrl *DefaultController) Start(ctx context.Context, countries []domain.Country) *Runner {
	runner := NewRunner(ctrl, countries)
	go runner.Run(ctx)
	return runner
}

func (ctrl *DefaultController) ListRuns(ctx context.Context, countries []string, limit int) ([]domain.Run, error) {
	stored, err := ctrl.ledger.ListRuns(ctx, countries, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	res := make([]domain.Run, 0, len(stored))
	for _, r := range stored {
		res = append(res, *adapters.MapStoreRunToDomain(r))
	}
	return res, nil
}

// RunCountry generates and exports one country and records the outcome in the ledger.
// The returned run is filled even when an error is returned.
func (ctrl *DefaultController) RunCountry(
	ctx context.Context,
	country domain.Country,
) (*domain.CountryResult, domain.Run, error) {
	iso3 := strings.ToUpper(country.ISO3)
	run := domain.Run{
		ID:        uuid.NewString(),
		Country:   iso3,
		Year:      ctrl.generator.Year(),
		Status:    domain.RunStatusPending,
		StartedAt: ctrl.now().UTC(),
	}

	if err := ctrl.acquire(iso3); err != nil {
		return nil, ctrl.fail(run, domain.RunStatusFailed, err), err
	}
	defer ctrl.release(iso3)

	logger := zerolog.Ctx(ctx).With().Str("run", run.ID).Logger()
	ctx = logger.WithContext(ctx)

	if err := ctrl.ledger.CreateRun(ctx, adapters.MapDomainRunToStore(&run)); err != nil {
		err = fmt.Errorf("failed to record run: %w", err)
		return nil, ctrl.fail(run, domain.RunStatusFailed, err), err
	}

	result, err := ctrl.generator.Generate(ctx, country)
	if err != nil {
		status := domain.RunStatusFailed
		if errors.Is(err, reconcile.ErrNoData) {
			status = domain.RunStatusSkipped
			logger.Warn().Err(err).Str("country", iso3).Msg("country skipped")
		} else {
			logger.Error().Err(err).Str("country", iso3).Msg("country run failed")
		}
		run = ctrl.fail(run, status, err)
		ctrl.finish(ctx, run)
		return nil, run, err
	}

	for _, sink := range ctrl.sinks {
		written, err := sink.Export(ctx, result)
		if err != nil {
			logger.Error().Err(err).Str("country", iso3).Msg("export failed")
			run = ctrl.fail(run, domain.RunStatusFailed, err)
			ctrl.finish(ctx, run)
			return result, run, err
		}
		logger.Debug().Str("country", iso3).Strs("files", written).Msg("exported")
	}

	finished := ctrl.now().UTC()
	run.Status = domain.RunStatusFinished
	run.FinishedAt = &finished
	run.Recommended = result.Recommended
	for _, t := range result.Tables {
		run.Tables = append(run.Tables, domain.RunTable{Name: t.Name, Rows: len(t.Rows)})
	}
	ctrl.finish(ctx, run)

	logger.Info().Str("country", iso3).Int("tables", len(run.Tables)).Str("recommended", run.Recommended).Msg("country finished")
	return result, run, nil
}

func (ctrl *DefaultController) acquire(iso3 string) error {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.running[iso3]; ok {
		return fmt.Errorf("%w: %s", ErrRunInProgress, iso3)
	}
	ctrl.running[iso3] = struct{}{}
	return nil
}

func (ctrl *DefaultController) release(iso3 string) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	delete(ctrl.running, iso3)
}

func (ctrl *DefaultController) fail(run domain.Run, status domain.RunStatus, err error) domain.Run {
	finished := ctrl.now().UTC()
	msg := err.Error()
	run.Status = status
	run.FinishedAt = &finished
	run.Error = &msg
	return run
}

func (ctrl *DefaultController) finish(ctx context.Context, run domain.Run) {
	if err := ctrl.ledger.FinishRun(ctx, adapters.MapDomainRunToStore(&run)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to record run outcome")
	}
}
