package reconcile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
)

// ReconcileCountry joins the requirement plans of a country with the funding
// grouped by plan. Requirement rows come first, in plan order, followed by
// funding rows that matched no plan.
func ReconcileCountry(
	ctx context.Context,
	iso3 string,
	plans []domain.Plan,
	funding []domain.PlanFundingTotal,
	codes *PlanCodes,
) ([]*domain.ReconciledRow, error) {
	logger := zerolog.Ctx(ctx)

	if len(plans) == 0 && len(funding) == 0 {
		return nil, ErrNoData
	}

	for _, p := range plans {
		codes.Record(p.ID, p.Code)
		if len(p.Years) > 1 {
			logger.Error().Str("plan", p.ID).Strs("years", p.Years).Msg("more than one year listed in a plan")
		}
	}

	if len(plans) == 0 {
		logger.Warn().Msg("no requirements data, only funding data available")
		rows := make([]*domain.ReconciledRow, 0, len(funding))
		for _, f := range funding {
			rows = append(rows, fundingRow(iso3, f, true))
		}
		return rows, nil
	}

	if len(funding) == 0 {
		logger.Warn().Msg("no funding data, only requirements data available")
		rows := make([]*domain.ReconciledRow, 0, len(plans))
		for _, p := range plans {
			row := planRow(iso3, p)
			row.Funding = decimal.NewNullDecimal(decimal.Zero)
			row.FundingSource = domain.ProvenanceDefault
			row.PercentFunded = "0"
			rows = append(rows, row)
		}
		return rows, nil
	}

	if !hasPlanIDs(funding) {
		logger.Info().Msg("funding data lacks plan ids")
		rows := make([]*domain.ReconciledRow, 0, len(plans)+len(funding))
		for _, p := range plans {
			row := planRow(iso3, p)
			row.PercentFunded = "0"
			rows = append(rows, row)
		}
		for _, f := range funding {
			rows = append(rows, fundingRow(iso3, f, false))
		}
		return rows, nil
	}

	return outerJoin(iso3, plans, funding)
}

func outerJoin(iso3 string, plans []domain.Plan, funding []domain.PlanFundingTotal) ([]*domain.ReconciledRow, error) {
	planIDs := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		if _, dup := planIDs[p.ID]; dup {
			return nil, fmt.Errorf("%w: plan %q listed twice in requirements", ErrCardinality, p.ID)
		}
		planIDs[p.ID] = struct{}{}
	}
	byID := make(map[string]domain.PlanFundingTotal, len(funding))
	for _, f := range funding {
		if _, dup := byID[f.PlanID]; dup {
			return nil, fmt.Errorf("%w: plan %q listed twice in funding", ErrCardinality, f.PlanID)
		}
		byID[f.PlanID] = f
	}

	rows := make([]*domain.ReconciledRow, 0, len(plans)+len(funding))
	for _, p := range plans {
		row := planRow(iso3, p)
		if f, ok := byID[p.ID]; ok {
			row.Funding = f.Total()
			row.FundingSource = domain.ProvenancePlanGrouped
			if row.Name == "" {
				row.Name = f.Name
			}
		}
		row.PercentFunded = PercentFunded(row.Funding, row.Requirements)
		rows = append(rows, row)
	}
	for _, f := range funding {
		if _, ok := planIDs[f.PlanID]; ok {
			continue
		}
		row := fundingRow(iso3, f, true)
		row.PercentFunded = PercentFunded(row.Funding, row.Requirements)
		rows = append(rows, row)
	}
	return rows, nil
}

func planRow(iso3 string, p domain.Plan) *domain.ReconciledRow {
	row := &domain.ReconciledRow{
		CountryCode:  iso3,
		ID:           p.ID,
		Name:         p.Name,
		Code:         p.Code,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Year:         p.Year(),
		Requirements: p.RevisedRequirements,
		Linked:       true,
	}
	if row.Requirements.Valid {
		row.RequirementsSource = domain.ProvenanceRequirements
	}
	return row
}

func fundingRow(iso3 string, f domain.PlanFundingTotal, linked bool) *domain.ReconciledRow {
	row := &domain.ReconciledRow{
		CountryCode: iso3,
		ID:          f.PlanID,
		Name:        f.Name,
		Funding:     f.Total(),
		Linked:      linked,
	}
	if !linked {
		row.ID = ""
	}
	if row.Funding.Valid {
		row.FundingSource = domain.ProvenancePlanGrouped
	}
	return row
}

func hasPlanIDs(funding []domain.PlanFundingTotal) bool {
	for _, f := range funding {
		if f.PlanID != "" {
			return true
		}
	}
	return false
}

// withoutTestPlans drops rows of sandbox plans before any drill-down.
func withoutTestPlans(rows []*domain.ReconciledRow) []*domain.ReconciledRow {
	out := make([]*domain.ReconciledRow, 0, len(rows))
	for _, row := range rows {
		if tabular.ContainsWord(row.Name, testWord) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func countryRecords(rows []*domain.ReconciledRow) []tabular.Record {
	records := make([]tabular.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, tabular.Record{
			"countryCode":         row.CountryCode,
			"id":                  row.ID,
			"name":                row.Name,
			"code":                row.Code,
			"startDate":           row.StartDate,
			"endDate":             row.EndDate,
			"year":                row.Year,
			"revisedRequirements": amountText(row.Requirements),
			"totalFunding":        amountText(row.Funding),
			"percentFunded":       row.PercentFunded,
		})
	}
	return records
}
