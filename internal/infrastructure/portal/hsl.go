package portal

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tenderscan/internal/dedup"
	"tenderscan/internal/domain"
)

const (
	hslBase        = "https://eprocurehsl.nic.in"
	hslTendersURL  = hslBase + "/nicgep/app?page=FrontEndLatestActiveTenders&service=page"
	hslMainTenders = "https://www.hslvizag.in/tenders.aspx"
	hslMainBase    = "https://www.hslvizag.in"
)

// HSL scrapes Hindustan Shipyard's NIC portal and, as a fallback path, the
// simpler notice table on the shipyard's own website. The two batches are
// merged on the dedup key.
type HSL struct {
	nic nicPortal
}

// NewHSL returns the Hindustan Shipyard scraper. The yard is in
// Visakhapatnam, so the location is fixed.
func NewHSL(deps Deps) *HSL {
	return &HSL{
		nic: nicPortal{
			key:      "hsl",
			name:     domain.PortalHSL,
			base:     hslBase,
			listURL:  hslTendersURL,
			location: "Visakhapatnam",
			deps:     deps,
		},
	}
}

func (h *HSL) Key() string        { return h.nic.key }
func (h *HSL) PortalName() string { return h.nic.name }

// Run collects both sources and deduplicates, NIC records first.
func (h *HSL) Run(ctx context.Context) []domain.Tender {
	nicBatch := h.nic.Run(ctx)
	siteBatch := h.scrapeMainSite(ctx)
	return dedup.Merge(nicBatch, siteBatch)
}

// scrapeMainSite reads the notice table on hslvizag.in. Notices there carry
// no reference number, so a stable synthetic one is derived from the title.
func (h *HSL) scrapeMainSite(ctx context.Context) []domain.Tender {
	html, err := h.nic.deps.Fetch.Get(ctx, hslMainTenders)
	if err != nil {
		h.nic.deps.debug("main site unavailable", "portal", h.nic.name, "error", err)
		return nil
	}

	tenders := parseHSLMainSite(html)
	h.nic.deps.info("main site notices", "portal", h.nic.name, "count", len(tenders))
	return tenders
}

func parseHSLMainSite(html string) []domain.Tender {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var tenders []domain.Tender
	doc.Find("table tr, .tender-row, .notice-item").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}

		title := strings.TrimSpace(row.Find("td:nth-child(2), .tender-title, a").First().Text())
		if len(title) < 5 {
			return
		}

		dateText := strings.TrimSpace(row.Find("td:nth-child(3), .tender-date, .due-date").First().Text())
		deadline := parseDate(dateText)

		href, _ := row.Find("a[href]").First().Attr("href")
		url := hslMainTenders
		if href != "" {
			url = absoluteURL(hslMainBase, href)
		}

		tenders = append(tenders, domain.Tender{
			TenderID:   syntheticHSLID(title),
			Title:      title,
			Portal:     domain.PortalHSL,
			Department: "Hindustan Shipyard Limited",
			Location:   "Visakhapatnam",
			Deadline:   deadline,
			URL:        url,
		})
	})

	return tenders
}

func syntheticHSLID(title string) string {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(title))
	return fmt.Sprintf("HSL-%04X", hash.Sum32()&0xFFFF)
}
