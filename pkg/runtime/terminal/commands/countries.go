package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type CountriesCmd struct {
	open Opener
}

func NewCountriesCmd(open Opener) *cobra.Command {
	cc := &CountriesCmd{open: open}
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries of the FTS location catalog",
		RunE:  cc.run,
	}
}

func (cc *CountriesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := cc.open(ctx, false)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close run ledger")
		}
	}()

	countries, err := a.Catalog.ListCountries(ctx)
	if err != nil {
		return err
	}
	if len(countries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No countries found")
		return nil
	}

	for _, c := range countries {
		fmt.Fprintf(cmd.OutOrStdout(), "%-4s %6s  %s\n", c.ISO3, c.ID, c.Name)
	}
	return nil
}
