package portal

import (
	"strings"
	"time"
)

// Date layouts observed across the portals, most specific first. NIC sites
// mix "02-Jan-2006" styles; GeM uses "14-01-2026 1:26 PM"; the HSL main
// site occasionally spells the month out.
var dateLayouts = []string{
	"02-01-2006 3:04 PM",
	"02-01-2006 15:04",
	"02-Jan-2006 3:04 PM",
	"02-Jan-2006 15:04",
	"02/01/2006 3:04 PM",
	"02/01/2006 15:04",
	"2006-01-02T15:04:05",
	"02-Jan-2006",
	"02/01/2006",
	"02-01-2006",
	"January 2, 2006",
}

// parseDate tries every known layout and returns nil when none match.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if dt, err := time.Parse(layout, raw); err == nil {
			return &dt
		}
	}
	return nil
}

// scanDates walks cell texts in markup order: the first value that parses
// as a date becomes "published", the second becomes "deadline". Source
// tables do not reliably label their columns, so position is the contract.
func scanDates(cells []string) (published, deadline *time.Time) {
	for _, txt := range cells {
		dt := parseDate(txt)
		if dt == nil {
			continue
		}
		if published == nil {
			published = dt
			continue
		}
		deadline = dt
		break
	}
	return published, deadline
}
