package domain

// Profile captures what the contractor wants to win. It is loaded once per
// run and never mutated while a pipeline execution is in flight.
type Profile struct {
	Name            string
	Locations       []string
	WorkKeywords    []string
	BudgetMin       float64
	BudgetMax       float64 // 0 means unbounded; config substitutes a ceiling
	ExcludeKeywords []string
	MinScore        int
	Portals         map[string]bool
}

// PortalEnabled reports whether the adapter registered under key should run.
func (p Profile) PortalEnabled(key string) bool {
	enabled, ok := p.Portals[key]
	return ok && enabled
}
