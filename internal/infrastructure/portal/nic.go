// Package portal implements one scraper per procurement portal. The NIC
// eProcure family (CPPP, AP, defproc, HSL) shares its markup layout and
// pagination convention, so those adapters configure the common core below.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tenderscan/internal/domain"
	"tenderscan/internal/fetch"
	"tenderscan/internal/money"
	"tenderscan/internal/ports"
)

// Deps bundles the collaborators and bounds shared by all portal scrapers.
type Deps struct {
	Fetch        *fetch.Client
	Browser      ports.Browser
	Log          *slog.Logger
	MaxPages     int
	LookbackDays int
	Now          func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) cutoff() time.Time {
	return d.now().AddDate(0, 0, -d.LookbackDays)
}

func (d Deps) debug(msg string, args ...any) {
	if d.Log != nil {
		d.Log.Debug(msg, args...)
	}
}

func (d Deps) info(msg string, args ...any) {
	if d.Log != nil {
		d.Log.Info(msg, args...)
	}
}

func (d Deps) warn(msg string, args ...any) {
	if d.Log != nil {
		d.Log.Warn(msg, args...)
	}
}

var budgetHint = regexp.MustCompile(`\d[\d,]+`)

// nicPortal paginates a FrontEndLatestActiveTenders listing and parses the
// standard NIC tender table.
type nicPortal struct {
	key      string
	name     string
	base     string
	listURL  string
	location string // fixed location override; empty means "use department"
	// NIC sometimes publishes a value column; only portals observed doing
	// so scan for it.
	scanBudget bool
	deps       Deps
}

func (p *nicPortal) Key() string        { return p.key }
func (p *nicPortal) PortalName() string { return p.name }

// Run walks listing pages until one of the stop conditions fires: an empty
// batch, the lookback cutoff, the page cap, or a failed fetch. Whatever was
// accumulated by then is returned.
func (p *nicPortal) Run(ctx context.Context) []domain.Tender {
	cutoff := p.deps.cutoff()
	var tenders []domain.Tender

	for pageIndex := 1; pageIndex <= p.deps.MaxPages; pageIndex++ {
		url := fmt.Sprintf("%s&pageIndex=%d", p.listURL, pageIndex)
		html, err := p.deps.Fetch.Get(ctx, url)
		if err != nil {
			p.deps.warn("page fetch failed", "portal", p.name, "page", pageIndex, "error", err)
			break
		}

		if fetch.IsJSShell(html) {
			p.deps.info("JS-rendered listing, switching to browser", "portal", p.name)
			return p.runWithBrowser(ctx, cutoff)
		}

		batch := p.parseListing(html, pageIndex)
		if len(batch) == 0 {
			p.deps.info("no more tenders", "portal", p.name, "page", pageIndex)
			break
		}
		tenders = append(tenders, batch...)

		if batchBeforeCutoff(batch, cutoff) {
			p.deps.info("reached lookback cutoff", "portal", p.name, "page", pageIndex)
			break
		}
	}

	return tenders
}

// runWithBrowser repeats the pagination loop through the rendering fallback.
func (p *nicPortal) runWithBrowser(ctx context.Context, cutoff time.Time) []domain.Tender {
	if p.deps.Browser == nil {
		p.deps.warn("browser fallback not configured", "portal", p.name)
		return nil
	}
	session, err := p.deps.Browser.NewSession(ctx)
	if err != nil {
		p.deps.warn("browser session failed", "portal", p.name, "error", err)
		return nil
	}
	defer session.Close()

	var tenders []domain.Tender
	for pageIndex := 1; pageIndex <= p.deps.MaxPages; pageIndex++ {
		url := fmt.Sprintf("%s&pageIndex=%d", p.listURL, pageIndex)
		if err := session.Navigate(url, "table"); err != nil {
			p.deps.warn("browser navigation failed", "portal", p.name, "page", pageIndex, "error", err)
			break
		}
		html, err := session.HTML()
		if err != nil {
			p.deps.warn("browser content read failed", "portal", p.name, "error", err)
			break
		}

		batch := p.parseListing(html, pageIndex)
		if len(batch) == 0 {
			break
		}
		tenders = append(tenders, batch...)

		if batchBeforeCutoff(batch, cutoff) {
			break
		}
	}
	return tenders
}

// parseListing extracts tenders from one page of the NIC table markup.
func (p *nicPortal) parseListing(html string, pageIndex int) []domain.Tender {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	table := findListingTable(doc)
	if table == nil {
		if hasNoResultsMarker(html) {
			return nil
		}
		p.deps.debug("listing table not found", "portal", p.name, "page", pageIndex)
		return nil
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		// A rendered table shell can carry no rows at all; slicing past the
		// header would panic then.
		if all := table.Find("tr"); all.Length() > 1 {
			rows = all.Slice(1, goquery.ToEnd)
		}
	}

	var tenders []domain.Tender
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		if row.Find("th").Length() > 0 || isHeaderLabel(cellText(cells, 0)) {
			return
		}

		// Typical columns: S.No | Ref No | Title | Organisation | ...
		// remaining columns vary per NIC release, so dates are scanned.
		tenderID := cellText(cells, 1)
		title := cellText(cells, 2)
		dept := cellText(cells, 3)
		if title == "" {
			return
		}

		var trailing []string
		for i := 4; i < cells.Length(); i++ {
			trailing = append(trailing, cellText(cells, i))
		}
		published, deadline := scanDates(trailing)

		t := domain.Tender{
			TenderID:      tenderID,
			Title:         title,
			Portal:        p.name,
			Department:    dept,
			Location:      p.rowLocation(dept),
			PublishedDate: published,
			Deadline:      deadline,
			URL:           p.resolveRowLink(cells),
		}
		if p.scanBudget {
			t.BudgetRaw, t.BudgetMax = scanBudget(trailing)
		}
		tenders = append(tenders, t)
	})

	return tenders
}

func (p *nicPortal) rowLocation(dept string) string {
	if p.location != "" {
		return p.location
	}
	// Organisation names usually carry the city, e.g. "Eastern Naval
	// Command, Visakhapatnam".
	return dept
}

// resolveRowLink prefers the anchor nearest the reference number, then the
// title, and falls back to the listing URL itself.
func (p *nicPortal) resolveRowLink(cells *goquery.Selection) string {
	for _, idx := range []int{1, 2} {
		if cells.Length() <= idx {
			continue
		}
		href, ok := cells.Eq(idx).Find("a[href]").First().Attr("href")
		if ok && href != "" {
			return absoluteURL(p.base, href)
		}
	}
	return p.listURL
}

// findListingTable tries the known NIC table shapes in order of confidence.
func findListingTable(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"table#table1", "table.list_table", "table.tablesorter"} {
		if table := doc.Find(sel).First(); table.Length() > 0 {
			return table
		}
	}
	var table *goquery.Selection
	doc.Find("table[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		if strings.Contains(strings.ToLower(id), "table") {
			table = s
			return false
		}
		return true
	})
	if table != nil {
		return table
	}
	// Last resort: any table with enough rows to plausibly be a listing.
	doc.Find("table").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Find("tr").Length() > 5 {
			table = s
			return false
		}
		return true
	})
	return table
}

func hasNoResultsMarker(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "no tender") || strings.Contains(lower, "no records")
}

func isHeaderLabel(text string) bool {
	switch strings.ToLower(text) {
	case "s.no", "sno", "#":
		return true
	}
	return false
}

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return strings.Join(strings.Fields(cells.Eq(i).Text()), " ")
}

func scanBudget(cellTexts []string) (raw string, max *float64) {
	for _, txt := range cellTexts {
		if txt == "" {
			continue
		}
		if parseDate(txt) != nil {
			continue
		}
		if !strings.Contains(txt, "₹") && !strings.Contains(strings.ToLower(txt), "rs") && !budgetHint.MatchString(txt) {
			continue
		}
		if val, ok := money.ParseINR(txt); ok {
			return txt, &val
		}
		return txt, nil
	}
	return "", nil
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}

// batchBeforeCutoff reports whether the earliest known date in the batch
// precedes cutoff. Early exit only: the batch itself is always kept.
func batchBeforeCutoff(batch []domain.Tender, cutoff time.Time) bool {
	var earliest *time.Time
	for _, t := range batch {
		for _, dt := range []*time.Time{t.PublishedDate, t.Deadline} {
			if dt == nil {
				continue
			}
			if earliest == nil || dt.Before(*earliest) {
				earliest = dt
			}
		}
	}
	return earliest != nil && earliest.Before(cutoff)
}
