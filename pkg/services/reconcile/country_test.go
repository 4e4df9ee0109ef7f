package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

func domainPlan(id, code, name string, req int64) domain.Plan {
	return domain.Plan{
		ID:                  id,
		Code:                code,
		Name:                name,
		Years:               []string{"2024"},
		StartDate:           "2024-01-01",
		EndDate:             "2024-12-31",
		RevisedRequirements: nd(req),
	}
}

func total(id, name string, funding int64) domain.PlanFundingTotal {
	return domain.PlanFundingTotal{PlanID: id, Name: name, TotalFunding: nd(funding)}
}

func TestReconcileCountry_NoData(t *testing.T) {
	_, err := ReconcileCountry(context.Background(), "TCD", nil, nil, NewPlanCodes())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReconcileCountry_FundingOnly(t *testing.T) {
	// Given
	funding := []domain.PlanFundingTotal{
		{PlanID: "10", Name: "Flash Appeal", TotalFunding: nd(90), OnBoundaryFunding: nd(10)},
	}

	// When
	rows, err := ReconcileCountry(context.Background(), "TCD", nil, funding, NewPlanCodes())

	// Then
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100", amountText(rows[0].Funding), "on-boundary funding is added")
	assert.False(t, rows[0].Requirements.Valid)
	assert.Equal(t, "", rows[0].PercentFunded)
	assert.True(t, rows[0].Linked)
	assert.Equal(t, "TCD", rows[0].CountryCode)
}

func TestReconcileCountry_RequirementsOnly(t *testing.T) {
	codes := NewPlanCodes()
	plans := []domain.Plan{domainPlan("1", "HTCD24", "Chad HRP", 1000)}

	rows, err := ReconcileCountry(context.Background(), "TCD", plans, nil, codes)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0", amountText(rows[0].Funding))
	assert.Equal(t, domain.ProvenanceDefault, rows[0].FundingSource)
	assert.Equal(t, "0", rows[0].PercentFunded)
	assert.Equal(t, "2024", rows[0].Year)
	code, ok := codes.Code("1")
	assert.True(t, ok)
	assert.Equal(t, "HTCD24", code)
}

func TestReconcileCountry_ScenarioA_OuterJoin(t *testing.T) {
	// Given: requirements for two plans, funding for one of them
	plans := []domain.Plan{
		domainPlan("1", "HTCD24", "Chad HRP", 1000),
		domainPlan("2", "FTCD24", "Chad Flash", 400),
	}
	funding := []domain.PlanFundingTotal{total("1", "Chad HRP (funding side)", 250)}

	// When
	rows, err := ReconcileCountry(context.Background(), "TCD", plans, funding, NewPlanCodes())

	// Then
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Chad HRP", rows[0].Name, "requirement name wins")
	assert.Equal(t, "250", amountText(rows[0].Funding))
	assert.Equal(t, "25", rows[0].PercentFunded)
	assert.Equal(t, domain.ProvenancePlanGrouped, rows[0].FundingSource)

	assert.Equal(t, "Chad Flash", rows[1].Name)
	assert.False(t, rows[1].Funding.Valid)
	assert.Equal(t, "", rows[1].PercentFunded)
}

func TestReconcileCountry_OuterJoinKeepsUnmatchedFunding(t *testing.T) {
	plans := []domain.Plan{domainPlan("1", "HTCD24", "Chad HRP", 1000)}
	funding := []domain.PlanFundingTotal{
		total("1", "Chad HRP", 100),
		{Name: domain.NotSpecified, TotalFunding: nd(70)},
	}

	rows, err := ReconcileCountry(context.Background(), "TCD", plans, funding, NewPlanCodes())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.NotSpecified, rows[1].Name)
	assert.Equal(t, "", rows[1].ID)
	assert.True(t, rows[1].Linked)
	assert.Equal(t, "", rows[1].PercentFunded)
}

func TestReconcileCountry_CardinalityViolation(t *testing.T) {
	plans := []domain.Plan{domainPlan("1", "A", "Plan", 10)}

	t.Run("duplicate funding ids", func(t *testing.T) {
		funding := []domain.PlanFundingTotal{total("1", "Plan", 1), total("1", "Plan", 2)}
		_, err := ReconcileCountry(context.Background(), "TCD", plans, funding, NewPlanCodes())
		assert.ErrorIs(t, err, ErrCardinality)
	})

	t.Run("duplicate plan ids", func(t *testing.T) {
		dup := append(plans, domainPlan("1", "B", "Plan again", 20))
		funding := []domain.PlanFundingTotal{total("1", "Plan", 1)}
		_, err := ReconcileCountry(context.Background(), "TCD", dup, funding, NewPlanCodes())
		assert.ErrorIs(t, err, ErrCardinality)
	})
}

func TestReconcileCountry_FundingWithoutPlanIDs(t *testing.T) {
	// Given
	plans := []domain.Plan{domainPlan("1", "HTCD24", "Chad HRP", 1000)}
	funding := []domain.PlanFundingTotal{{Name: "Unattributed", TotalFunding: nd(40)}}

	// When
	rows, err := ReconcileCountry(context.Background(), "TCD", plans, funding, NewPlanCodes())

	// Then: requirement rows then appended funding rows that cannot be joined
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].Funding.Valid)
	assert.Equal(t, "0", rows[0].PercentFunded)
	assert.True(t, rows[0].Linked)
	assert.Equal(t, "Unattributed", rows[1].Name)
	assert.Equal(t, "40", amountText(rows[1].Funding))
	assert.False(t, rows[1].Linked)
	assert.Equal(t, "", rows[1].PercentFunded)
}

func TestWithoutTestPlans(t *testing.T) {
	rows := []*domain.ReconciledRow{{Name: "Chad HRP"}, {Name: "TEST plan"}, {Name: "Contest"}}
	out := withoutTestPlans(rows)
	require.Len(t, out, 2)
	assert.Equal(t, "Contest", out[1].Name)
}
