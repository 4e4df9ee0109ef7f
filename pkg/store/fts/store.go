package fts

import (
	"context"
	"fmt"
	"net/url"

	"github.com/de-tools/funding-atlas/pkg/models/store"
	"github.com/de-tools/funding-atlas/pkg/store/client"
)

// Store reads the public FTS API.
type Store interface {
	ListLocations(ctx context.Context) ([]store.Location, error)
	GetCountryFlows(ctx context.Context, iso3 string, year int) ([]store.Flow, error)
	GetCountryPlans(ctx context.Context, iso3 string) ([]store.Plan, error)
	GetCountryPlanFunding(ctx context.Context, iso3 string) (*store.GroupedFlows, error)
	GetPlan(ctx context.Context, planID string) (*store.Plan, error)
	GetPlanLocationFunding(ctx context.Context, planID string) (*store.GroupedFlows, error)
	GetPlanClusterFunding(ctx context.Context, planID string) (*store.GroupedFlows, error)
}

type apiStore struct {
	fetcher client.Fetcher
}

func NewStore(fetcher client.Fetcher) (Store, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is nil")
	}
	return &apiStore{fetcher: fetcher}, nil
}

func (s *apiStore) ListLocations(ctx context.Context) ([]store.Location, error) {
	var env store.Envelope[[]store.Location]
	if err := s.fetcher.Fetch(ctx, "location", &env); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return env.Data, nil
}

func (s *apiStore) GetCountryFlows(ctx context.Context, iso3 string, year int) ([]store.Flow, error) {
	q := url.Values{}
	q.Set("countryISO3", iso3)
	q.Set("year", fmt.Sprintf("%d", year))

	var env store.Envelope[store.FlowSearch]
	if err := s.fetcher.Fetch(ctx, "fts/flow?"+q.Encode(), &env); err != nil {
		return nil, fmt.Errorf("get flows for %s: %w", iso3, err)
	}
	return env.Data.Flows, nil
}

func (s *apiStore) GetCountryPlans(ctx context.Context, iso3 string) ([]store.Plan, error) {
	var env store.Envelope[[]store.Plan]
	if err := s.fetcher.Fetch(ctx, "plan/country/"+url.PathEscape(iso3), &env); err != nil {
		return nil, fmt.Errorf("get plans for %s: %w", iso3, err)
	}
	return env.Data, nil
}

func (s *apiStore) GetCountryPlanFunding(ctx context.Context, iso3 string) (*store.GroupedFlows, error) {
	q := url.Values{}
	q.Set("groupby", "plan")
	q.Set("countryISO3", iso3)
	return s.grouped(ctx, q, "plan funding for "+iso3)
}

func (s *apiStore) GetPlan(ctx context.Context, planID string) (*store.Plan, error) {
	var env store.Envelope[store.Plan]
	if err := s.fetcher.Fetch(ctx, "plan/id/"+url.PathEscape(planID), &env); err != nil {
		return nil, fmt.Errorf("get plan %s: %w", planID, err)
	}
	return &env.Data, nil
}

func (s *apiStore) GetPlanLocationFunding(ctx context.Context, planID string) (*store.GroupedFlows, error) {
	q := url.Values{}
	q.Set("planid", planID)
	q.Set("groupby", "location")
	return s.grouped(ctx, q, "location funding for plan "+planID)
}

func (s *apiStore) GetPlanClusterFunding(ctx context.Context, planID string) (*store.GroupedFlows, error) {
	q := url.Values{}
	q.Set("planid", planID)
	q.Set("groupby", "cluster")
	return s.grouped(ctx, q, "cluster funding for plan "+planID)
}

func (s *apiStore) grouped(ctx context.Context, q url.Values, what string) (*store.GroupedFlows, error) {
	var env store.Envelope[store.GroupedFlows]
	if err := s.fetcher.Fetch(ctx, "fts/flow?"+q.Encode(), &env); err != nil {
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return &env.Data, nil
}
