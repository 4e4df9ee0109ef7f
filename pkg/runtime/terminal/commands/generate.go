package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/runtime/app"
	"github.com/de-tools/funding-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/funding-atlas/pkg/services/catalog"
)

// Opener builds the application services for a command.
type Opener func(ctx context.Context, writeFiles bool) (*app.App, error)

type GenerateCmd struct {
	countries []string
	all       bool
	open      Opener
	reporter  *export.Reporter
}

func NewGenerateCmd(v *viper.Viper, open Opener, reporter *export.Reporter) *cobra.Command {
	gc := &GenerateCmd{open: open, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate requirements and funding tables for countries",
		RunE:  gc.run,
	}

	cmd.Flags().StringArrayVar(&gc.countries, "country", nil, "Country ISO3 code or name (repeatable)")
	cmd.Flags().BoolVar(&gc.all, "all", false, "Process every country of the FTS location catalog")
	cmd.Flags().String("output", "", "Output directory for CSV files")
	cmd.Flags().Int("year", 0, "Year of the detailed funding flows")
	cmd.Flags().String("bucket", "", "S3 bucket to publish the tables to")

	_ = v.BindPFlag("output_dir", cmd.Flags().Lookup("output"))
	_ = v.BindPFlag("year", cmd.Flags().Lookup("year"))
	_ = v.BindPFlag("bucket", cmd.Flags().Lookup("bucket"))

	cmd.MarkFlagsMutuallyExclusive("country", "all")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	a, err := gc.open(ctx, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close run ledger")
		}
	}()

	queries := gc.countries
	if len(queries) == 0 {
		queries = a.Settings.Countries
	}
	selected, err := selectCountries(ctx, a.Catalog, queries, gc.all)
	if err != nil {
		return err
	}

	ctrl, err := a.Controller(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare pipeline: %w", err)
	}

	started := time.Now()
	bar := progressbar.NewOptions(len(selected),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Generating"),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	runner := ctrl.Start(ctx, selected)
	for p := range runner.Progress() {
		bar.Describe(fmt.Sprintf("Generating %s", p.Country))
		if err := bar.Add(1); err != nil {
			logger.Debug().Err(err).Msg("failed to update progress bar")
		}
	}
	<-runner.Done()

	summary := export.Summary{
		Year:      a.Settings.Year,
		OutputDir: a.Settings.OutputDir,
		Runs:      runner.Runs(),
		Elapsed:   time.Since(started).Round(time.Millisecond),
	}
	if err := gc.reporter.Handle(summary); err != nil {
		return err
	}

	if failed := summary.Count(domain.RunStatusFailed); failed > 0 {
		return fmt.Errorf("%d of %d countries failed", failed, len(selected))
	}
	return nil
}

var errNoSelection = errors.New("no countries selected: use --country, --all or the countries setting")

func selectCountries(ctx context.Context, svc catalog.Service, queries []string, all bool) ([]domain.Country, error) {
	if all {
		return svc.ListCountries(ctx)
	}
	if len(queries) == 0 {
		return nil, errNoSelection
	}

	selected := make([]domain.Country, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		c, err := svc.Lookup(ctx, q)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[c.ISO3]; ok {
			continue
		}
		seen[c.ISO3] = struct{}{}
		selected = append(selected, c)
	}
	return selected, nil
}
