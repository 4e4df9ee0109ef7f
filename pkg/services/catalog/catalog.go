package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/de-tools/funding-atlas/pkg/adapters"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/location"
	"github.com/de-tools/funding-atlas/pkg/store/fts"
)

var ErrUnknownCountry = errors.New("unknown country")

type Service interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
	// Lookup finds a country by ISO3 code or by name.
	Lookup(ctx context.Context, query string) (domain.Country, error)
	Resolver(ctx context.Context) (location.Resolver, error)
}

type catalogService struct {
	source fts.Store

	mu        sync.Mutex
	countries []domain.Country
	resolver  *location.CatalogResolver
}

func NewService(source fts.Store) Service {
	return &catalogService{source: source}
}

func (s *catalogService) ListCountries(ctx context.Context) ([]domain.Country, error) {
	countries, _, err := s.load(ctx)
	return countries, err
}

// load fills the cache on first use. A failed listing is not cached.
func (s *catalogService) load(ctx context.Context) ([]domain.Country, *location.CatalogResolver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countries != nil {
		return s.countries, s.resolver, nil
	}

	locations, err := s.source.ListLocations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list locations: %w", err)
	}

	countries := make([]domain.Country, 0, len(locations))
	for _, l := range locations {
		c := adapters.MapStoreLocationToDomainCountry(l)
		if c.ISO3 == "" {
			continue
		}
		countries = append(countries, c)
	}

	s.countries = countries
	s.resolver = location.NewResolver(countries)
	return s.countries, s.resolver, nil
}

func (s *catalogService) Lookup(ctx context.Context, query string) (domain.Country, error) {
	countries, resolver, err := s.load(ctx)
	if err != nil {
		return domain.Country{}, err
	}

	iso3, ok := resolver.ResolveISO3(query)
	if !ok {
		return domain.Country{}, fmt.Errorf("%w: %s", ErrUnknownCountry, query)
	}
	for _, c := range countries {
		if strings.EqualFold(c.ISO3, iso3) {
			return c, nil
		}
	}
	return domain.Country{}, fmt.Errorf("%w: %s", ErrUnknownCountry, query)
}

func (s *catalogService) Resolver(ctx context.Context) (location.Resolver, error) {
	_, resolver, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return resolver, nil
}
