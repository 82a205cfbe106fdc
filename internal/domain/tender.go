package domain

import (
	"fmt"
	"time"
)

// Tender is the canonical procurement-notice record. Portal scrapers create
// tenders, the filter engine sets the match fields exactly once, and
// everything downstream treats the record as read-only.
type Tender struct {
	TenderID string
	Title    string
	Portal   string

	Department string
	Location   string

	// Budget bounds in rupees; nil when the portal did not publish a figure.
	BudgetMin *float64
	BudgetMax *float64
	BudgetRaw string

	PublishedDate *time.Time
	Deadline      *time.Time

	Category    string
	Description string

	URL string

	// Set by the filter engine.
	MatchScore      int
	MatchedKeywords []string
	BudgetInRange   *bool // nil = budget unknown
	LocationMatch   bool
}

// DedupKey identifies the same notice across fallback paths and portals:
// the portal reference number when present, otherwise the title.
func (t Tender) DedupKey() string {
	if t.TenderID != "" {
		return t.TenderID
	}
	return t.Title
}

// DisplayBudget renders the budget for reports and the dashboard.
func (t Tender) DisplayBudget() string {
	if t.BudgetRaw != "" {
		return t.BudgetRaw
	}
	if t.BudgetMax != nil {
		return "₹" + groupDigits(*t.BudgetMax)
	}
	if t.BudgetMin != nil {
		return "₹" + groupDigits(*t.BudgetMin) + "+"
	}
	return "Not disclosed"
}

func groupDigits(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg, s = true, s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

// DisplayDeadline renders the deadline or an em dash when unknown.
func (t Tender) DisplayDeadline() string {
	if t.Deadline != nil {
		return t.Deadline.Format("02 Jan 2006 15:04")
	}
	return "—"
}

// DisplayPublished renders the publish date or an em dash when unknown.
func (t Tender) DisplayPublished() string {
	if t.PublishedDate != nil {
		return t.PublishedDate.Format("02 Jan 2006")
	}
	return "—"
}
