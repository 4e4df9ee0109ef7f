package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/runtime/terminal/export"
)

type RunsCmd struct {
	countries []string
	limit     int
	open      Opener
}

func NewRunsCmd(open Opener) *cobra.Command {
	rc := &RunsCmd{open: open}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded country runs",
		RunE:  rc.run,
	}

	cmd.Flags().StringArrayVar(&rc.countries, "country", nil, "Only runs of this ISO3 code (repeatable)")
	cmd.Flags().IntVar(&rc.limit, "limit", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func (rc *RunsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := rc.open(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close run ledger")
		}
	}()

	stored, err := a.Ledger.ListRuns(ctx, rc.countries, rc.limit)
	if err != nil {
		return err
	}
	runs := make([]domain.Run, 0, len(stored))
	for _, r := range stored {
		runs = append(runs, *adapters.MapStoreRunToDomain(r))
	}

	return export.NewReporter(cmd.OutOrStdout()).HandleRuns(runs)
}
