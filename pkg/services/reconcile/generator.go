package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/location"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
	"github.com/de-tools/funding-atlas/pkg/store/fts"
)

type Options struct {
	// Year selects the flows of the detail table. Defaults to the current year.
	Year int
}

// Generator builds the tables of one country at a time.
type Generator struct {
	source   fts.Store
	resolver location.Resolver
	year     int
}

func NewGenerator(source fts.Store, resolver location.Resolver, opts Options) *Generator {
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}
	return &Generator{
		source:   source,
		resolver: resolver,
		year:     year,
	}
}

func (g *Generator) Year() int {
	return g.year
}

// Generate runs the whole pipeline for country. It returns ErrNoData when
// the country has neither requirements, funding nor flows.
func (g *Generator) Generate(ctx context.Context, country domain.Country) (*domain.CountryResult, error) {
	logger := zerolog.Ctx(ctx).With().Str("country", country.ISO3).Logger()
	ctx = logger.WithContext(ctx)
	iso3 := country.ISO3
	codes := NewPlanCodes()

	result := &domain.CountryResult{
		Country: country,
		Dataset: NewDataset(country, g.year),
	}

	rawFlows, err := g.source.GetCountryFlows(ctx, iso3, g.year)
	if err != nil {
		return nil, fmt.Errorf("country flows: %w", err)
	}
	flows := make([]domain.FundingFlow, 0, len(rawFlows))
	for _, f := range rawFlows {
		flows = append(flows, adapters.MapStoreFlowToDomain(f))
	}
	detail := DetailRecords(ctx, iso3, flows, g.resolver)

	rawPlans, err := g.source.GetCountryPlans(ctx, iso3)
	if err != nil {
		return nil, fmt.Errorf("country plans: %w", err)
	}
	plans := make([]domain.Plan, 0, len(rawPlans))
	for _, p := range rawPlans {
		plans = append(plans, adapters.MapStorePlanToDomain(p, iso3))
	}

	grouped, err := g.source.GetCountryPlanFunding(ctx, iso3)
	if err != nil {
		return nil, fmt.Errorf("country plan funding: %w", err)
	}
	var funding []domain.PlanFundingTotal
	if breakdown, ok := grouped.Breakdown(); ok {
		for _, obj := range breakdown.ObjectsBreakdown {
			funding = append(funding, adapters.MapStoreFundingObjectToDomainTotal(obj))
		}
	}

	rows, err := ReconcileCountry(ctx, iso3, plans, funding, codes)
	if errors.Is(err, ErrNoData) {
		if len(detail) == 0 {
			logger.Warn().Msg("no requirements or funding data available")
			return nil, err
		}
		logger.Error().Msg("latest year funding data available but no overall funding data")
		table, ferr := tabular.Finish(FundingSpec(country, g.year), detail)
		if ferr != nil {
			return nil, fmt.Errorf("funding table: %w", ferr)
		}
		result.Tables = append(result.Tables, *table)
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	rows = withoutTestPlans(rows)
	eligible, err := g.CrossCheck(ctx, iso3, rows, plans, codes)
	if err != nil {
		return nil, err
	}
	clusters, err := g.ReconcileClusters(ctx, rows, eligible)
	if err != nil {
		return nil, err
	}

	if len(detail) > 0 {
		FillPlanCodes(detail, codes)
		table, err := tabular.Finish(FundingSpec(country, g.year), detail)
		if err != nil {
			return nil, fmt.Errorf("funding table: %w", err)
		}
		result.Tables = append(result.Tables, *table)
	}

	table, err := tabular.Finish(CountrySpec(country), countryRecords(rows))
	switch {
	case errors.Is(err, tabular.ErrTableUnavailable):
		logger.Warn().Msg("no requirements and funding rows left")
	case err != nil:
		return nil, fmt.Errorf("requirements table: %w", err)
	default:
		result.Tables = append(result.Tables, *table)
	}

	if len(clusters) == 0 {
		logger.Warn().Msg("no cluster data available")
		return result, nil
	}
	table, err = tabular.Finish(ClusterSpec(country), clusterRecords(clusters))
	switch {
	case errors.Is(err, tabular.ErrTableUnavailable):
		logger.Warn().Msg("no cluster rows left")
	case err != nil:
		return nil, fmt.Errorf("cluster table: %w", err)
	default:
		result.Tables = append(result.Tables, *table)
		result.Recommended = Recommend(table)
	}

	return result, nil
}
