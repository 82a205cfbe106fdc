package portal

import (
	"context"

	"tenderscan/internal/dedup"
	"tenderscan/internal/domain"
)

const (
	cpppBase       = "https://eprocure.gov.in"
	cpppTendersURL = cpppBase + "/eprocure/app?page=FrontEndLatestActiveTenders&service=page"
	cpppFeedURL    = cpppBase + "/eprocure/app?page=rssfeed&service=page"
)

// FeedReader supplies tenders from a portal's RSS listing, degrading to an
// empty batch on any failure.
type FeedReader interface {
	Fetch(ctx context.Context, feedURL, portalName string) []domain.Tender
}

// CPPP scrapes the Central Public Procurement Portal. NIC also publishes an
// RSS feed of the latest notices; its items are merged with the table scrape
// so feed-only records are not lost when the listing lags.
type CPPP struct {
	nic  nicPortal
	feed FeedReader
}

// NewCPPP returns the central eProcure scraper. feed may be nil.
func NewCPPP(deps Deps, feed FeedReader) *CPPP {
	return &CPPP{
		nic: nicPortal{
			key:     "cppp",
			name:    domain.PortalCPPP,
			base:    cpppBase,
			listURL: cpppTendersURL,
			deps:    deps,
		},
		feed: feed,
	}
}

func (c *CPPP) Key() string        { return c.nic.key }
func (c *CPPP) PortalName() string { return c.nic.name }

// Run merges the paginated table scrape with the RSS feed, table first so
// the richer records win on duplicate keys.
func (c *CPPP) Run(ctx context.Context) []domain.Tender {
	tenders := c.nic.Run(ctx)

	if c.feed != nil {
		feedBatch := c.feed.Fetch(ctx, cpppFeedURL, c.nic.name)
		c.nic.deps.debug("feed supplement", "portal", c.nic.name, "items", len(feedBatch))
		tenders = dedup.Merge(tenders, feedBatch)
	}

	return tenders
}
