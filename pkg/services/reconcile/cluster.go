package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
)

const (
	// SharedFundingKey sorts the shared funding row after every cluster.
	SharedFundingKey   = "zzz"
	SharedFundingLabel = "Shared Funding"
)

// ReconcileClusters fetches the cluster breakdown of every eligible plan, one
// plan at a time, and joins it back to the country rows.
func (g *Generator) ReconcileClusters(
	ctx context.Context,
	rows []*domain.ReconciledRow,
	eligible []*domain.ReconciledRow,
) ([]domain.ClusterRow, error) {
	var breakdown []domain.ClusterBreakdown
	for _, row := range eligible {
		logger := zerolog.Ctx(ctx).With().Str("plan", row.ID).Logger()
		planCtx := logger.WithContext(ctx)

		grouped, err := g.source.GetPlanClusterFunding(planCtx, row.ID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to retrieve cluster funding")
			continue
		}

		var funding []domain.ClusterBreakdown
		var shared decimal.NullDecimal
		if b, ok := grouped.Breakdown(); ok {
			for _, obj := range b.ObjectsBreakdown {
				funding = append(funding, adapters.MapStoreFundingObjectToDomainCluster(row.ID, obj))
			}
			shared = adapters.MapStoreAmountToDomain(b.TotalBreakdown.SharedFunding)
		} else {
			logger.Warn().Msg("cluster query returned no funding objects")
		}

		var requirements []domain.ClusterBreakdown
		for _, obj := range grouped.Requirements.Objects {
			requirements = append(requirements, adapters.MapStoreRequirementObjectToDomainCluster(row.ID, obj))
		}

		merged, err := MergeClusters(row.ID, requirements, funding, shared)
		if errors.Is(err, ErrNoClusterData) {
			logger.Error().Err(err).Msg("no cluster data for plan")
			continue
		}
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, merged...)
	}

	return JoinClusters(rows, breakdown), nil
}

// MergeClusters joins the cluster requirements and funding of one plan on the
// cluster code. Funding clusters come first with their own name, followed by
// requirement-only clusters. A non-zero shared amount adds a trailing row.
func MergeClusters(
	planID string,
	requirements []domain.ClusterBreakdown,
	funding []domain.ClusterBreakdown,
	shared decimal.NullDecimal,
) ([]domain.ClusterBreakdown, error) {
	hasShared := shared.Valid && !shared.Decimal.IsZero()
	if len(requirements) == 0 && len(funding) == 0 && !hasShared {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrNoClusterData)
	}

	var merged []domain.ClusterBreakdown
	switch {
	case len(requirements) > 0 && len(funding) > 0:
		reqByCode := make(map[string]domain.ClusterBreakdown, len(requirements))
		for _, r := range requirements {
			if _, dup := reqByCode[r.Code]; dup {
				return nil, fmt.Errorf("%w: cluster %q listed twice in requirements of plan %s", ErrCardinality, r.Code, planID)
			}
			reqByCode[r.Code] = r
		}
		fundCodes := make(map[string]struct{}, len(funding))
		for _, f := range funding {
			if _, dup := fundCodes[f.Code]; dup {
				return nil, fmt.Errorf("%w: cluster %q listed twice in funding of plan %s", ErrCardinality, f.Code, planID)
			}
			fundCodes[f.Code] = struct{}{}

			if r, ok := reqByCode[f.Code]; ok {
				f.Requirements = r.Requirements
				if f.Name == "" {
					f.Name = r.Name
				}
			}
			merged = append(merged, f)
		}
		for _, r := range requirements {
			if _, ok := fundCodes[r.Code]; ok {
				continue
			}
			merged = append(merged, r)
		}
	case len(requirements) > 0:
		for _, r := range requirements {
			r.Funding = decimal.NullDecimal{}
			merged = append(merged, r)
		}
	default:
		for _, f := range funding {
			f.Requirements = decimal.NullDecimal{}
			merged = append(merged, f)
		}
	}

	for i := range merged {
		merged[i].PlanID = planID
	}
	if hasShared {
		merged = append(merged, domain.ClusterBreakdown{
			PlanID:  planID,
			Code:    "",
			Name:    SharedFundingKey,
			Funding: shared,
			Shared:  true,
		})
	}
	return merged, nil
}

// JoinClusters attaches plan fields to the breakdown rows. Breakdown rows of
// plans missing from rows are dropped. The percentage is computed from the
// cluster figures.
func JoinClusters(rows []*domain.ReconciledRow, breakdown []domain.ClusterBreakdown) []domain.ClusterRow {
	byID := make(map[string]*domain.ReconciledRow, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		if _, ok := byID[row.ID]; !ok {
			byID[row.ID] = row
		}
	}

	out := make([]domain.ClusterRow, 0, len(breakdown))
	for _, b := range breakdown {
		row, ok := byID[b.PlanID]
		if !ok {
			continue
		}
		out = append(out, domain.ClusterRow{
			CountryCode:   row.CountryCode,
			PlanID:        row.ID,
			PlanName:      row.Name,
			PlanCode:      row.Code,
			StartDate:     row.StartDate,
			EndDate:       row.EndDate,
			Year:          row.Year,
			ClusterCode:   b.Code,
			ClusterName:   b.Name,
			Requirements:  b.Requirements,
			Funding:       b.Funding,
			PercentFunded: PercentFunded(b.Funding, b.Requirements),
			Shared:        b.Shared,
		})
	}
	return out
}

func clusterRecords(rows []domain.ClusterRow) []tabular.Record {
	records := make([]tabular.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, tabular.Record{
			"countryCode":         row.CountryCode,
			"id":                  row.PlanID,
			"name":                row.PlanName,
			"code":                row.PlanCode,
			"startDate":           row.StartDate,
			"endDate":             row.EndDate,
			"year":                row.Year,
			"clusterCode":         row.ClusterCode,
			"clusterName":         row.ClusterName,
			"revisedRequirements": amountText(row.Requirements),
			"totalFunding":        amountText(row.Funding),
			"percentFunded":       row.PercentFunded,
		})
	}
	return records
}
