package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/models/store"
	"github.com/de-tools/funding-atlas/pkg/services/reconcile"
)

type fakeGenerator struct {
	results map[string]*domain.CountryResult
	errs    map[string]error
	block   chan struct{}
}

func (f *fakeGenerator) Year() int {
	return 2024
}

func (f *fakeGenerator) Generate(_ context.Context, c domain.Country) (*domain.CountryResult, error) {
	if f.block != nil {
		<-f.block
	}
	if err, ok := f.errs[c.ISO3]; ok {
		return nil, err
	}
	return f.results[c.ISO3], nil
}

type fakeLedger struct {
	mu      sync.Mutex
	created []*store.Run
	done    map[string]*store.Run
	failOn  string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{done: map[string]*store.Run{}}
}

func (f *fakeLedger) CreateRun(_ context.Context, run *store.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if run.Country == f.failOn {
		return errors.New("disk full")
	}
	f.created = append(f.created, run)
	return nil
}

func (f *fakeLedger) FinishRun(_ context.Context, run *store.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[run.Country] = run
	return nil
}

func (f *fakeLedger) ListRuns(_ context.Context, countries []string, _ int) ([]*store.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*store.Run
	for _, c := range countries {
		if r, ok := f.done[c]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSink struct {
	exported []string
	err      error
}

func (f *fakeSink) Export(_ context.Context, result *domain.CountryResult) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.exported = append(f.exported, result.Country.ISO3)
	return []string{result.Country.ISO3 + ".csv"}, nil
}

func chadResult() *domain.CountryResult {
	return &domain.CountryResult{
		Country: domain.Country{ID: "43", Name: "Chad", ISO3: "TCD"},
		Tables: []domain.Table{
			{Name: "fts_funding_tcd.csv", Rows: [][]string{{"a"}, {"b"}}},
			{Name: "fts_requirements_funding_tcd.csv", Rows: [][]string{{"c"}}},
		},
		Recommended: "fts_requirements_funding_tcd.csv",
	}
}

func countries(iso3 ...string) []domain.Country {
	out := make([]domain.Country, 0, len(iso3))
	for _, c := range iso3 {
		out = append(out, domain.Country{ISO3: c, Name: c})
	}
	return out
}

func TestController_RunCountry_Finished(t *testing.T) {
	// Given
	ledger := newFakeLedger()
	sink := &fakeSink{}
	ctrl := NewController(&fakeGenerator{results: map[string]*domain.CountryResult{"TCD": chadResult()}}, ledger, sink)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ctrl.now = func() time.Time { return fixed }

	// When
	result, run, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "tcd"})

	// Then
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, domain.RunStatusFinished, run.Status)
	assert.Equal(t, "TCD", run.Country)
	assert.Equal(t, 2024, run.Year)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, []domain.RunTable{{Name: "fts_funding_tcd.csv", Rows: 2}, {Name: "fts_requirements_funding_tcd.csv", Rows: 1}}, run.Tables)
	assert.Equal(t, []string{"TCD"}, sink.exported)

	require.Len(t, ledger.created, 1)
	assert.Equal(t, "pending", ledger.created[0].Status)
	recorded := ledger.done["TCD"]
	require.NotNil(t, recorded)
	assert.Equal(t, "finished", recorded.Status)
	assert.Equal(t, fixed, *recorded.FinishedAt)
	assert.Equal(t, "fts_requirements_funding_tcd.csv", *recorded.Recommended)
}

func TestController_RunCountry_Outcomes(t *testing.T) {
	gen := &fakeGenerator{errs: map[string]error{
		"ATA": fmt.Errorf("%w for ATA", reconcile.ErrNoData),
		"CMR": fmt.Errorf("plan 7: %w", reconcile.ErrInvalidPlan),
	}}
	ledger := newFakeLedger()
	ctrl := NewController(gen, ledger)

	_, skipped, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "ATA"})
	assert.ErrorIs(t, err, reconcile.ErrNoData)
	assert.Equal(t, domain.RunStatusSkipped, skipped.Status)

	_, failed, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "CMR"})
	assert.ErrorIs(t, err, reconcile.ErrInvalidPlan)
	assert.Equal(t, domain.RunStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Contains(t, *failed.Error, "plan 7")
	assert.Equal(t, "failed", ledger.done["CMR"].Status)
}

func TestController_RunCountry_SinkFailure(t *testing.T) {
	ledger := newFakeLedger()
	sink := &fakeSink{err: errors.New("bucket missing")}
	ctrl := NewController(&fakeGenerator{results: map[string]*domain.CountryResult{"TCD": chadResult()}}, ledger, sink)

	result, run, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "TCD"})

	assert.Error(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	assert.Equal(t, "failed", ledger.done["TCD"].Status)
}

func TestController_RunCountry_LedgerFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.failOn = "TCD"
	ctrl := NewController(&fakeGenerator{}, ledger)

	_, run, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "TCD"})

	assert.ErrorContains(t, err, "failed to record run")
	assert.Equal(t, domain.RunStatusFailed, run.Status)
}

func TestController_RunCountry_RejectsConcurrentRun(t *testing.T) {
	// Given: a run for Chad blocked inside the generator
	gen := &fakeGenerator{results: map[string]*domain.CountryResult{"TCD": chadResult()}, block: make(chan struct{})}
	ctrl := NewController(gen, newFakeLedger())
	first := make(chan error, 1)
	go func() {
		_, _, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "TCD"})
		first <- err
	}()
	require.Eventually(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		_, ok := ctrl.running["TCD"]
		return ok
	}, time.Second, 5*time.Millisecond)

	// When
	_, _, err := ctrl.RunCountry(context.Background(), domain.Country{ISO3: "TCD"})

	// Then
	assert.ErrorIs(t, err, ErrRunInProgress)
	close(gen.block)
	assert.NoError(t, <-first)
}

func TestRunner_ProcessesCountriesInOrder(t *testing.T) {
	// Given
	gen := &fakeGenerator{
		results: map[string]*domain.CountryResult{"TCD": chadResult()},
		errs:    map[string]error{"ATA": reconcile.ErrNoData, "CMR": errors.New("boom")},
	}
	ledger := newFakeLedger()
	ctrl := NewController(gen, ledger)

	// When
	runner := ctrl.Start(context.Background(), countries("TCD", "ATA", "CMR"))
	var progress []RunnerProgress
	for p := range runner.Progress() {
		progress = append(progress, p)
	}
	<-runner.Done()

	// Then
	require.Len(t, progress, 3)
	assert.Equal(t, RunnerProgress{Processed: 1, Total: 3, Country: "TCD", Status: domain.RunStatusFinished}, progress[0])
	assert.Equal(t, domain.RunStatusSkipped, progress[1].Status)
	assert.Equal(t, RunnerProgress{Processed: 3, Total: 3, Country: "CMR", Status: domain.RunStatusFailed}, progress[2])
	require.Len(t, runner.Runs(), 3)

	listed, err := ctrl.ListRuns(context.Background(), []string{"TCD", "CMR"}, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, domain.RunStatusFinished, listed[0].Status)
	assert.Equal(t, domain.RunStatusFailed, listed[1].Status)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(NewController(&fakeGenerator{}, newFakeLedger()), countries("TCD", "CMR"))

	runner.Run(ctx)

	<-runner.Done()
	assert.Empty(t, runner.Runs())
}
