package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

const undefinedPlanID = "undefined"

// CrossCheck replaces plan figures with the ones grouped by location for the
// country under processing and returns the rows eligible for the cluster
// breakdown. Rows are updated in place.
func (g *Generator) CrossCheck(
	ctx context.Context,
	iso3 string,
	rows []*domain.ReconciledRow,
	plans []domain.Plan,
	codes *PlanCodes,
) ([]*domain.ReconciledRow, error) {
	var requirementPlans map[string]domain.Plan
	if len(plans) > 0 {
		requirementPlans = make(map[string]domain.Plan, len(plans))
		for _, p := range plans {
			requirementPlans[p.ID] = p
		}
	}

	eligible := make([]*domain.ReconciledRow, 0, len(rows))
	for _, row := range rows {
		if !row.Linked {
			continue
		}
		if row.ID == "" || row.ID == undefinedPlanID {
			if row.Name == domain.NotSpecified {
				continue
			}
			return nil, fmt.Errorf("%w: plan name %q has no id", ErrInvalidPlan, row.Name)
		}

		logger := zerolog.Ctx(ctx).With().Str("plan", row.ID).Logger()
		planCtx := logger.WithContext(ctx)

		g.applyLocationFigures(planCtx, iso3, row)

		ok, reason, err := g.singleCountry(planCtx, iso3, row, requirementPlans, codes)
		if err != nil {
			var planErr *PlanError
			if errors.As(err, &planErr) {
				logger.Error().Err(err).Msg("skipping plan")
				continue
			}
			return nil, err
		}
		if !ok {
			logger.Warn().Str("reason", reason).Msg("plan spans multiple locations, ignoring in cluster breakdown")
			continue
		}
		eligible = append(eligible, row)
	}
	return eligible, nil
}

func (g *Generator) applyLocationFigures(ctx context.Context, iso3 string, row *domain.ReconciledRow) {
	logger := zerolog.Ctx(ctx)

	grouped, err := g.source.GetPlanLocationFunding(ctx, row.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve location funding")
		return
	}

	funding := []Candidate{{Value: row.Funding, Source: row.FundingSource}}
	if breakdown, ok := grouped.Breakdown(); ok {
		for _, obj := range breakdown.ObjectsBreakdown {
			if !g.isCountry(obj.Name, iso3) {
				continue
			}
			total := adapters.MapStoreFundingObjectToDomainTotal(obj)
			if total.TotalFunding.Valid {
				funding = append(funding, Candidate{Value: total.Total(), Source: domain.ProvenanceLocationGrouped})
			}
			break
		}
	}

	requirements := []Candidate{{Value: row.Requirements, Source: row.RequirementsSource}}
	for _, obj := range grouped.Requirements.Objects {
		if !g.isCountry(obj.Name, iso3) {
			continue
		}
		value := adapters.MapStoreAmountToDomain(obj.RevisedRequirements)
		if value.Valid {
			requirements = append(requirements, Candidate{Value: value, Source: domain.ProvenanceLocationGrouped})
		}
		break
	}

	f := Resolve(funding...)
	if f.Diverged {
		logger.Info().
			Str("plan", row.ID).
			Str("current", amountText(row.Funding)).
			Str("location", amountText(f.Value)).
			Msg("funding differs between plan and location figures")
	}
	if f.Overridden {
		logger.Info().
			Str("from", amountText(row.Funding)).
			Str("to", amountText(f.Value)).
			Str("source", string(f.Source)).
			Msg("overriding funding")
	}
	row.Funding, row.FundingSource = f.Value, f.Source

	r := Resolve(requirements...)
	if r.Diverged {
		logger.Info().
			Str("plan", row.ID).
			Str("current", amountText(row.Requirements)).
			Str("location", amountText(r.Value)).
			Msg("requirements differ between plan and location figures")
	}
	if r.Overridden {
		logger.Info().
			Str("from", amountText(row.Requirements)).
			Str("to", amountText(r.Value)).
			Str("source", string(r.Source)).
			Msg("overriding requirements")
	}
	row.Requirements, row.RequirementsSource = r.Value, r.Source

	row.PercentFunded = PercentFundedOrZero(row.Funding, row.Requirements)
}

func (g *Generator) isCountry(name, iso3 string) bool {
	if g.resolver == nil {
		return false
	}
	resolved, ok := g.resolver.ResolveISO3(name)
	return ok && resolved == iso3
}

// singleCountry reports whether the plan can be attributed to iso3 alone.
func (g *Generator) singleCountry(
	ctx context.Context,
	iso3 string,
	row *domain.ReconciledRow,
	requirementPlans map[string]domain.Plan,
	codes *PlanCodes,
) (bool, string, error) {
	if requirementPlans != nil {
		if plan, ok := requirementPlans[row.ID]; ok {
			if len(plan.Locations) > 1 {
				return false, ">1 locations in req plan info", nil
			}
			return true, "", nil
		}
		ok, err := g.fillRow(ctx, iso3, row, codes)
		return ok, "no locations in req plan info", err
	}
	ok, err := g.fillRow(ctx, iso3, row, codes)
	return ok, "no req plan info", err
}

// fillRow completes the row from a direct plan lookup and reports whether the
// plan is tied to iso3 only.
func (g *Generator) fillRow(ctx context.Context, iso3 string, row *domain.ReconciledRow, codes *PlanCodes) (bool, error) {
	logger := zerolog.Ctx(ctx)

	raw, err := g.source.GetPlan(ctx, row.ID)
	if err != nil {
		return false, &PlanError{PlanID: row.ID, Err: err}
	}
	if raw.Message != "" {
		return false, &PlanError{PlanID: row.ID, Message: raw.Message}
	}

	plan := adapters.MapStorePlanToDomain(*raw, iso3)
	codes.Record(row.ID, plan.Code)
	row.Code = plan.Code
	row.StartDate = plan.StartDate
	row.EndDate = plan.EndDate
	if len(plan.Years) > 1 {
		logger.Error().Strs("years", plan.Years).Msg("more than one year listed in plan")
	}
	row.Year = plan.Year()

	if len(plan.Locations) == 0 {
		return false, nil
	}
	for _, loc := range plan.Locations {
		if loc.AdminLevel == 0 && loc.ISO3 != iso3 {
			return false, nil
		}
	}
	return true, nil
}
