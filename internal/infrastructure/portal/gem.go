package portal

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tenderscan/internal/domain"
	"tenderscan/internal/ports"
)

const (
	gemBase        = "https://bidplus.gem.gov.in"
	gemAllBidsURL  = gemBase + "/all-bids"
	gemSearchInput = "input#searchBid"
	gemCardMarker  = "div.card"
	gemNextLink    = "a.page-link.next"

	// GeM lists thousands of catalog pages; three result pages per search
	// term keeps a run tractable without losing relevant bids.
	gemPagesPerSearch = 3
)

// GeM scrapes the Government e-Marketplace bid listing. The catalog is far
// too large to paginate, so each configured work keyword drives a separate
// search and the per-search results are merged on the bid number.
type GeM struct {
	deps        Deps
	searchTerms []string
}

// NewGeM returns the marketplace scraper driven by the profile's work
// keywords.
func NewGeM(deps Deps, searchTerms []string) *GeM {
	return &GeM{deps: deps, searchTerms: searchTerms}
}

func (g *GeM) Key() string        { return "gem" }
func (g *GeM) PortalName() string { return domain.PortalGeM }

// Run performs one keyword search at a time in a single browser session.
// GeM renders everything client side, so the plain fetch path is skipped.
func (g *GeM) Run(ctx context.Context) []domain.Tender {
	if g.deps.Browser == nil {
		g.deps.warn("browser not configured, skipping GeM")
		return nil
	}
	if len(g.searchTerms) == 0 {
		g.deps.warn("no work keywords configured, skipping GeM search")
		return nil
	}

	session, err := g.deps.Browser.NewSession(ctx)
	if err != nil {
		g.deps.warn("browser session failed", "portal", g.PortalName(), "error", err)
		return nil
	}
	defer session.Close()

	var tenders []domain.Tender
	seen := map[string]struct{}{}

	for _, term := range g.searchTerms {
		g.deps.info("searching", "portal", g.PortalName(), "term", term)
		if err := g.searchAndCollect(session, term, &tenders, seen); err != nil {
			g.deps.warn("search failed", "portal", g.PortalName(), "term", term, "error", err)
		}
	}

	g.deps.info("collected unique bids", "portal", g.PortalName(), "count", len(tenders))
	return tenders
}

func (g *GeM) searchAndCollect(
	session ports.BrowserSession,
	term string,
	tenders *[]domain.Tender,
	seen map[string]struct{},
) error {
	if err := session.Navigate(gemAllBidsURL, gemCardMarker); err != nil {
		return err
	}

	if err := session.FillAndSubmit(gemSearchInput, term); err != nil {
		// Without the search box only the front-page bids are reachable.
		g.deps.warn("bid search input not found, collecting front page only",
			"portal", g.PortalName(), "error", err)
	}

	for page := 1; page <= gemPagesPerSearch; page++ {
		html, err := session.HTML()
		if err != nil {
			return err
		}

		batch := parseGemCards(html)
		added := 0
		for _, t := range batch {
			if t.TenderID == "" {
				continue
			}
			if _, dup := seen[t.TenderID]; dup {
				continue
			}
			seen[t.TenderID] = struct{}{}
			*tenders = append(*tenders, t)
			added++
		}
		g.deps.debug("search page parsed", "term", term, "page", page, "total", len(batch), "new", added)

		if len(batch) == 0 {
			break
		}
		if err := session.Click(gemNextLink); err != nil {
			break
		}
	}

	return nil
}

// parseGemCards extracts bids from the rendered card markup.
func parseGemCards(html string) []domain.Tender {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var tenders []domain.Tender
	doc.Find(gemCardMarker).Each(func(_ int, card *goquery.Selection) {
		bidLink := card.Find("a.bid_no_hover").First()
		if bidLink.Length() == 0 {
			return
		}
		tenderID := strings.TrimSpace(bidLink.Text())
		href, _ := bidLink.Attr("href")
		url := gemAllBidsURL
		if href != "" {
			url = absoluteURL(gemBase, href)
		}

		title := gemCardTitle(card)
		department := gemCardDepartment(card)

		published := parseDate(strings.TrimSpace(card.Find("span.start_date").First().Text()))
		deadline := parseDate(strings.TrimSpace(card.Find("span.end_date").First().Text()))

		tenders = append(tenders, domain.Tender{
			TenderID:      tenderID,
			Title:         title,
			Portal:        domain.PortalGeM,
			Department:    department,
			Location:      department, // the address block carries state/city
			Category:      title,
			PublishedDate: published,
			Deadline:      deadline,
			URL:           url,
		})
	})

	return tenders
}

// gemCardTitle reads the full item description: the visible text is
// truncated, the complete value sits in the data-content attribute.
func gemCardTitle(card *goquery.Selection) string {
	col := card.Find(".col-md-4").First()
	if content, ok := col.Find("a[data-content]").First().Attr("data-content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	var title string
	col.Find(".row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		txt := strings.TrimSpace(row.Text())
		if strings.HasPrefix(txt, "Items:") {
			title = strings.TrimSpace(strings.TrimPrefix(txt, "Items:"))
			return false
		}
		return true
	})
	return title
}

// gemCardDepartment reads the row after the "Department" label, flattening
// the <br/>-separated ministry and organisation lines.
func gemCardDepartment(card *goquery.Selection) string {
	rows := card.Find(".col-md-5").First().Find(".row")
	department := ""
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if !strings.Contains(row.Text(), "Department") {
			return true
		}
		if i+1 < rows.Length() {
			dept := rows.Eq(i + 1)
			dept.Find("br").ReplaceWithHtml(", ")
			department = strings.Join(strings.Fields(dept.Text()), " ")
		}
		return false
	})
	return department
}
