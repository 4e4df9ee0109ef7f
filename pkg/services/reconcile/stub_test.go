package reconcile

import (
	"context"
	"fmt"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/models/store"
	"github.com/de-tools/funding-atlas/pkg/services/location"
	"github.com/de-tools/funding-atlas/pkg/store/client"
)

// stubSource serves canned FTS payloads keyed by country or plan id.
type stubSource struct {
	locations   []store.Location
	flows       []store.Flow
	plans       []store.Plan
	planFunding *store.GroupedFlows
	planByID    map[string]*store.Plan
	byLocation  map[string]*store.GroupedFlows
	byCluster   map[string]*store.GroupedFlows
	failing     map[string]bool

	clusterCalls []string
}

func (s *stubSource) ListLocations(context.Context) ([]store.Location, error) {
	return s.locations, nil
}

func (s *stubSource) GetCountryFlows(context.Context, string, int) ([]store.Flow, error) {
	return s.flows, nil
}

func (s *stubSource) GetCountryPlans(context.Context, string) ([]store.Plan, error) {
	return s.plans, nil
}

func (s *stubSource) GetCountryPlanFunding(context.Context, string) (*store.GroupedFlows, error) {
	if s.planFunding == nil {
		return &store.GroupedFlows{}, nil
	}
	return s.planFunding, nil
}

func (s *stubSource) GetPlan(_ context.Context, planID string) (*store.Plan, error) {
	if s.failing["plan/"+planID] {
		return nil, fmt.Errorf("%w: plan/id/%s", client.ErrRetrieval, planID)
	}
	p, ok := s.planByID[planID]
	if !ok {
		return &store.Plan{Message: "Plan not found"}, nil
	}
	return p, nil
}

func (s *stubSource) GetPlanLocationFunding(_ context.Context, planID string) (*store.GroupedFlows, error) {
	if s.failing["location/"+planID] {
		return nil, fmt.Errorf("%w: location %s", client.ErrRetrieval, planID)
	}
	if g, ok := s.byLocation[planID]; ok {
		return g, nil
	}
	return &store.GroupedFlows{}, nil
}

func (s *stubSource) GetPlanClusterFunding(_ context.Context, planID string) (*store.GroupedFlows, error) {
	s.clusterCalls = append(s.clusterCalls, planID)
	if s.failing["cluster/"+planID] {
		return nil, fmt.Errorf("%w: cluster %s", client.ErrRetrieval, planID)
	}
	if g, ok := s.byCluster[planID]; ok {
		return g, nil
	}
	return &store.GroupedFlows{}, nil
}

var testCountry = domain.Country{ID: "43", Name: "Chad", ISO3: "TCD"}

func testResolver() location.Resolver {
	return location.NewResolver([]domain.Country{
		testCountry,
		{ID: "1", Name: "Cameroon", ISO3: "CMR"},
		{ID: "2", Name: "Niger", ISO3: "NER"},
		{ID: "3", Name: "Nigeria", ISO3: "NGA"},
	})
}

func amount(v int64) store.Amount {
	return store.NewAmount(v)
}

func fundingObject(id, name string, total int64) store.FundingObject {
	return store.FundingObject{ID: store.ID(id), Name: name, TotalFunding: amount(total)}
}

func requirementObject(id, name string, req int64) store.RequirementObject {
	return store.RequirementObject{ID: store.ID(id), Name: name, RevisedRequirements: amount(req)}
}

func groupedFlows(objects []store.FundingObject, shared int64, reqs ...store.RequirementObject) *store.GroupedFlows {
	g := &store.GroupedFlows{}
	g.Report3.FundingTotals.Objects = []store.FundingTotalsObject{{
		ObjectsBreakdown: objects,
		TotalBreakdown:   store.TotalBreakdown{SharedFunding: amount(shared)},
	}}
	g.Requirements.Objects = reqs
	return g
}

func requirementsOnly(reqs ...store.RequirementObject) *store.GroupedFlows {
	g := &store.GroupedFlows{}
	g.Requirements.Objects = reqs
	return g
}

func adminLevel(v int) *int {
	return &v
}

func storePlan(id, code, name string, req int64, locations ...store.PlanLocation) store.Plan {
	return store.Plan{
		ID:                  store.ID(id),
		Code:                code,
		Name:                name,
		StartDate:           "2024-01-01T00:00:00.000Z",
		EndDate:             "2024-12-31T00:00:00.000Z",
		Years:               []store.PlanYear{{Year: "2024"}},
		RevisedRequirements: amount(req),
		Locations:           locations,
	}
}

func chadLocation() store.PlanLocation {
	return store.PlanLocation{ID: "43", Name: "Chad", ISO3: "TCD", AdminLevel: adminLevel(0)}
}

func newTestGenerator(src *stubSource) *Generator {
	return NewGenerator(src, testResolver(), Options{Year: 2024})
}
