package reconcile

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/location"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
)

// DetailRecords flattens the flows of a country into transaction detail rows.
func DetailRecords(ctx context.Context, iso3 string, flows []domain.FundingFlow, resolver location.Resolver) []tabular.Record {
	logger := zerolog.Ctx(ctx)

	records := make([]tabular.Record, 0, len(flows))
	for _, f := range flows {
		rec := tabular.Record{
			"id":                f.ID,
			"date":              f.Date,
			"budgetYear":        f.BudgetYear,
			"description":       f.Description,
			"amountUSD":         f.AmountUSD,
			"contributionType":  f.ContributionType,
			"flowType":          f.FlowType,
			"method":            f.Method,
			"boundary":          f.Boundary,
			"status":            f.Status,
			"firstReportedDate": f.FirstReportedDate,
			"decisionDate":      f.DecisionDate,
			"keywords":          strings.Join(f.Keywords, ","),
			"originalAmount":    f.OriginalAmount,
			"originalCurrency":  f.OriginalCurrency,
			"exchangeRate":      f.ExchangeRate,
			"refCode":           f.RefCode,
			"createdAt":         f.CreatedAt,
			"updatedAt":         f.UpdatedAt,
		}

		for _, role := range []domain.Role{domain.RoleSource, domain.RoleDestination} {
			flat, collapses := Flatten(f.Objects(role), role, resolver)
			for k, v := range flat {
				rec[k] = v
			}
			for _, c := range collapses {
				logger.Error().
					Str("flow", f.ID).
					Str("field", c.Field).
					Strs("values", c.Values).
					Msg("multiple values collapsed")
			}
		}

		if rec["boundary"] == "" {
			direction := domain.ClassifyDirection("", iso3, splitList(rec["srcLocations"]), splitList(rec["destLocations"]))
			rec["boundary"] = string(direction)
		}
		records = append(records, rec)
	}
	return records
}

// FillPlanCodes sets destPlanCode from the codes collected during the run,
// keeping the flow's own value for unknown plans.
func FillPlanCodes(records []tabular.Record, codes *PlanCodes) {
	for _, rec := range records {
		if code, ok := codes.Code(rec["destPlanId"]); ok {
			rec["destPlanCode"] = code
		}
	}
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}
