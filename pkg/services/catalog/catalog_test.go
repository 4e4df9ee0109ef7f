package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/funding-atlas/pkg/models/store"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListLocations(ctx context.Context) ([]store.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Location), args.Error(1)
}

func (m *mockSource) GetCountryFlows(context.Context, string, int) ([]store.Flow, error) {
	return nil, nil
}

func (m *mockSource) GetCountryPlans(context.Context, string) ([]store.Plan, error) {
	return nil, nil
}

func (m *mockSource) GetCountryPlanFunding(context.Context, string) (*store.GroupedFlows, error) {
	return nil, nil
}

func (m *mockSource) GetPlan(context.Context, string) (*store.Plan, error) {
	return nil, nil
}

func (m *mockSource) GetPlanLocationFunding(context.Context, string) (*store.GroupedFlows, error) {
	return nil, nil
}

func (m *mockSource) GetPlanClusterFunding(context.Context, string) (*store.GroupedFlows, error) {
	return nil, nil
}

func locations() []store.Location {
	return []store.Location{
		{ID: "43", Name: "Chad", ISO3: "TCD"},
		{ID: "5", Name: "Cameroon", ISO3: "CMR"},
		{ID: "900", Name: "Sahel Region", ISO3: ""},
	}
}

func TestListCountries_SkipsLocationsWithoutCode(t *testing.T) {
	// Given
	src := new(mockSource)
	src.On("ListLocations", mock.Anything).Return(locations(), nil).Once()
	svc := NewService(src)

	// When
	first, err := svc.ListCountries(context.Background())
	require.NoError(t, err)
	second, err := svc.ListCountries(context.Background())
	require.NoError(t, err)

	// Then
	require.Len(t, first, 2)
	assert.Equal(t, "43", first[0].ID)
	assert.Equal(t, "TCD", first[0].ISO3)
	assert.Equal(t, first, second)
	src.AssertExpectations(t)
}

func TestListCountries_Error(t *testing.T) {
	src := new(mockSource)
	src.On("ListLocations", mock.Anything).Return(nil, errors.New("boom"))
	svc := NewService(src)

	_, err := svc.ListCountries(context.Background())

	assert.ErrorContains(t, err, "failed to list locations")
}

func TestLookup(t *testing.T) {
	src := new(mockSource)
	src.On("ListLocations", mock.Anything).Return(locations(), nil)
	svc := NewService(src)

	tests := []struct {
		query string
		want  string
	}{
		{"TCD", "Chad"},
		{"tcd", "Chad"},
		{"Cameroon", "Cameroon"},
		{"Republic of Chad", "Chad"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, err := svc.Lookup(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name)
		})
	}

	_, err := svc.Lookup(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrUnknownCountry)
}

func TestResolver(t *testing.T) {
	src := new(mockSource)
	src.On("ListLocations", mock.Anything).Return(locations(), nil)
	svc := NewService(src)

	r, err := svc.Resolver(context.Background())

	require.NoError(t, err)
	iso3, ok := r.ResolveISO3("Cameroon")
	assert.True(t, ok)
	assert.Equal(t, "CMR", iso3)
}

func TestCatalog_ConcurrentFirstUseListsOnce(t *testing.T) {
	// Given
	src := new(mockSource)
	src.On("ListLocations", mock.Anything).Return(locations(), nil).Once()
	svc := NewService(src)

	// When
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = svc.Lookup(context.Background(), "Chad")
				return
			}
			_, _ = svc.Resolver(context.Background())
		}(i)
	}
	wg.Wait()

	// Then
	countries, err := svc.ListCountries(context.Background())
	require.NoError(t, err)
	assert.Len(t, countries, 2)
	src.AssertNumberOfCalls(t, "ListLocations", 1)
}

func TestListCountries_RetriesAfterFailure(t *testing.T) {
	src := new(mockSource)
	src.On("ListLocations", mock.Anything).Return(nil, errors.New("boom")).Once()
	src.On("ListLocations", mock.Anything).Return(locations(), nil).Once()
	svc := NewService(src)

	_, err := svc.ListCountries(context.Background())
	require.Error(t, err)

	countries, err := svc.ListCountries(context.Background())
	require.NoError(t, err)
	assert.Len(t, countries, 2)
}
