// Package scraper defines the portal-scraper capability and the registry the
// orchestrator resolves enabled portals from.
package scraper

import (
	"context"
	"fmt"

	"tenderscan/internal/domain"
)

// Scraper is one portal's acquisition strategy. Run returns whatever could
// be collected; page-level failures degrade to a shorter batch and are
// never surfaced as errors.
type Scraper interface {
	// Key is the profile toggle identifier, e.g. "cppp".
	Key() string
	// PortalName is the display identity stored on every Tender; the filter
	// engine also keys its portal-priority bonus on it.
	PortalName() string
	Run(ctx context.Context) []domain.Tender
}

// Registry keeps scrapers in registration order so runs are deterministic.
type Registry struct {
	order    []string
	scrapers map[string]Scraper
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: map[string]Scraper{}}
}

// Register adds or replaces a scraper implementation.
func (r *Registry) Register(s Scraper) {
	if _, exists := r.scrapers[s.Key()]; !exists {
		r.order = append(r.order, s.Key())
	}
	r.scrapers[s.Key()] = s
}

// Resolve returns a scraper by key or an error if it is absent.
func (r *Registry) Resolve(key string) (Scraper, error) {
	if s, ok := r.scrapers[key]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scraper %s is not registered", key)
}

// Enabled returns the scrapers switched on in the profile, in registration
// order.
func (r *Registry) Enabled(profile domain.Profile) []Scraper {
	var out []Scraper
	for _, key := range r.order {
		if profile.PortalEnabled(key) {
			out = append(out, r.scrapers[key])
		}
	}
	return out
}
