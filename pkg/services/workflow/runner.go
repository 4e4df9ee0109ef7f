package workflow

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

// Runner processes countries one after another.
type Runner struct {
	ctrl      Controller
	countries []domain.Country
	runs      []domain.Run
	done      chan struct{}
	progress  chan RunnerProgress
}

type RunnerProgress struct {
	Processed int
	Total     int
	Country   string
	Status    domain.RunStatus
}

func NewRunner(ctrl Controller, countries []domain.Country) *Runner {
	return &Runner{
		ctrl:      ctrl,
		countries: countries,
		done:      make(chan struct{}),
		progress:  make(chan RunnerProgress, len(countries)),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

// Runs returns the outcome of every processed country. Read it after Done.
func (r *Runner) Runs() []domain.Run {
	return r.runs
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	defer close(r.done)
	defer close(r.progress)

	for i, country := range r.countries {
		select {
		case <-ctx.Done():
			logger.Info().Int("processed", i).Int("total", len(r.countries)).Msg("run stopped")
			return
		default:
		}

		_, run, err := r.ctrl.RunCountry(ctx, country)
		if err != nil {
			logger.Debug().Err(err).Str("country", country.ISO3).Msg("country not published")
		}
		r.runs = append(r.runs, run)
		r.progress <- RunnerProgress{
			Processed: i + 1,
			Total:     len(r.countries),
			Country:   country.ISO3,
			Status:    run.Status,
		}
	}
}
