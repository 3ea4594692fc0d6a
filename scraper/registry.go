package scraper

import (
	"sort"
	"strings"

	"opencourt.dev/availability"
)

// Registry resolves city names to their scrapers.
type Registry struct {
	sources map[string]func() Source
}

// NewRegistry creates a registry with every supported city registered.
func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]func() Source),
	}

	r.Register("Albany", func() Source { return NewAlbanyScraper() })
	// TODO: Berkeley and Oakland run the same WebTrac product; add them
	// once their search URLs and court name markers are confirmed.

	return r
}

// Register adds a scraper factory for a city. Lookup is case-insensitive.
func (r *Registry) Register(city string, factory func() Source) {
	r.sources[strings.ToLower(city)] = factory
}

// ForCity returns a new scraper for the city, or nil when the city is not
// supported.
func (r *Registry) ForCity(city string) availability.Source {
	factory, ok := r.sources[strings.ToLower(city)]
	if !ok {
		return nil
	}
	return factory()
}

// Cities returns the supported city keys in sorted order.
func (r *Registry) Cities() []string {
	cities := make([]string, 0, len(r.sources))
	for city := range r.sources {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
