package reconcile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/models/store"
)

func cluster(code, name string, req, funding decimal.NullDecimal) domain.ClusterBreakdown {
	return domain.ClusterBreakdown{Code: code, Name: name, Requirements: req, Funding: funding}
}

func TestMergeClusters_BothSides(t *testing.T) {
	// Given
	requirements := []domain.ClusterBreakdown{
		cluster("1", "Health (req)", nd(100), blank),
		cluster("2", "Education", nd(50), blank),
	}
	funding := []domain.ClusterBreakdown{
		cluster("1", "Health", blank, nd(40)),
		cluster("3", "", blank, nd(5)),
	}

	// When
	merged, err := MergeClusters("P", requirements, funding, blank)

	// Then
	require.NoError(t, err)
	require.Len(t, merged, 3)
	assert.Equal(t, "Health", merged[0].Name, "funding name wins")
	assert.Equal(t, "100", amountText(merged[0].Requirements))
	assert.Equal(t, "40", amountText(merged[0].Funding))
	assert.Equal(t, "3", merged[1].Code)
	assert.False(t, merged[1].Requirements.Valid)
	assert.Equal(t, "Education", merged[2].Name)
	assert.False(t, merged[2].Funding.Valid)
	for _, m := range merged {
		assert.Equal(t, "P", m.PlanID)
	}
}

func TestMergeClusters_FundingNameFallsBackToRequirement(t *testing.T) {
	merged, err := MergeClusters("P",
		[]domain.ClusterBreakdown{cluster("1", "Protection", nd(10), blank)},
		[]domain.ClusterBreakdown{cluster("1", "", blank, nd(3))},
		blank)

	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "Protection", merged[0].Name)
}

func TestMergeClusters_OneSided(t *testing.T) {
	t.Run("requirements only", func(t *testing.T) {
		merged, err := MergeClusters("P", []domain.ClusterBreakdown{cluster("1", "WASH", nd(10), nd(99))}, nil, blank)
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.False(t, merged[0].Funding.Valid)
	})

	t.Run("funding only", func(t *testing.T) {
		merged, err := MergeClusters("P", nil, []domain.ClusterBreakdown{cluster("1", "WASH", nd(10), nd(7))}, blank)
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.False(t, merged[0].Requirements.Valid)
		assert.Equal(t, "7", amountText(merged[0].Funding))
	})
}

func TestMergeClusters_NeitherSide(t *testing.T) {
	_, err := MergeClusters("P", nil, nil, nd(0))
	assert.ErrorIs(t, err, ErrNoClusterData)
}

func TestMergeClusters_ScenarioC_SharedFundingOnly(t *testing.T) {
	// Given: shared funding of 50 and no cluster objects
	merged, err := MergeClusters("P", nil, nil, nd(50))

	// Then
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "", merged[0].Code)
	assert.Equal(t, SharedFundingKey, merged[0].Name)
	assert.Equal(t, "50", amountText(merged[0].Funding))
	assert.False(t, merged[0].Requirements.Valid)
	assert.True(t, merged[0].Shared)
}

func TestMergeClusters_SharedRowIsAppendedLast(t *testing.T) {
	merged, err := MergeClusters("P", nil, []domain.ClusterBreakdown{cluster("1", "WASH", blank, nd(7))}, nd(20))

	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.True(t, merged[1].Shared)
}

func TestMergeClusters_Cardinality(t *testing.T) {
	_, err := MergeClusters("P",
		[]domain.ClusterBreakdown{cluster("1", "A", nd(1), blank)},
		[]domain.ClusterBreakdown{cluster("1", "A", blank, nd(1)), cluster("1", "A", blank, nd(2))},
		blank)
	assert.ErrorIs(t, err, ErrCardinality)
}

func TestJoinClusters_InnerJoinAndClusterPercent(t *testing.T) {
	// Given
	rows := []*domain.ReconciledRow{
		{CountryCode: "TCD", ID: "1", Name: "Chad HRP", Code: "HTCD24", EndDate: "2024-12-31", Year: "2024", PercentFunded: "99"},
	}
	breakdown := []domain.ClusterBreakdown{
		{PlanID: "1", Code: "10", Name: "Health", Requirements: nd(200), Funding: nd(50)},
		{PlanID: "1", Code: "11", Name: "Logistics", Requirements: nd(0), Funding: nd(50)},
		{PlanID: "2", Code: "12", Name: "Orphan", Requirements: nd(10), Funding: nd(5)},
	}

	// When
	out := JoinClusters(rows, breakdown)

	// Then
	require.Len(t, out, 2)
	assert.Equal(t, "Chad HRP", out[0].PlanName)
	assert.Equal(t, "HTCD24", out[0].PlanCode)
	assert.Equal(t, "25", out[0].PercentFunded)
	assert.Equal(t, "", out[1].PercentFunded)
}

func TestReconcileClusters_SkipsFailingPlans(t *testing.T) {
	// Given
	src := &stubSource{
		byCluster: map[string]*store.GroupedFlows{
			"1": groupedFlows([]store.FundingObject{fundingObject("10", "Health", 30)}, 20,
				requirementObject("10", "Health", 60)),
			"3": {},
		},
		failing: map[string]bool{"cluster/2": true},
	}
	g := newTestGenerator(src)
	rows := []*domain.ReconciledRow{
		{ID: "1", Name: "Chad HRP", CountryCode: "TCD"},
		{ID: "2", Name: "Chad Flash", CountryCode: "TCD"},
		{ID: "3", Name: "Chad Other", CountryCode: "TCD"},
	}

	// When
	out, err := g.ReconcileClusters(context.Background(), rows, rows)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, src.clusterCalls)
	require.Len(t, out, 2)
	assert.Equal(t, "Health", out[0].ClusterName)
	assert.Equal(t, "50", out[0].PercentFunded)
	assert.True(t, out[1].Shared)
	assert.Equal(t, "20", amountText(out[1].Funding))
}

func TestReconcileClusters_CardinalityAbortsCountry(t *testing.T) {
	src := &stubSource{
		byCluster: map[string]*store.GroupedFlows{
			"1": groupedFlows([]store.FundingObject{fundingObject("10", "A", 1), fundingObject("10", "A", 2)}, 0,
				requirementObject("10", "A", 5)),
		},
	}
	g := newTestGenerator(src)
	rows := []*domain.ReconciledRow{{ID: "1", Name: "Chad HRP"}}

	_, err := g.ReconcileClusters(context.Background(), rows, rows)

	assert.ErrorIs(t, err, ErrCardinality)
}
