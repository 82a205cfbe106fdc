// Package rss supplements table scraping with a portal's RSS feed of freshly
// published notices. Entries carry less detail than listing rows, so merging
// happens after the table batch and only fills gaps.
package rss

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"tenderscan/internal/domain"
)

// Reader parses tender notice feeds. It degrades to an empty result on any
// failure: feeds are a bonus channel, never a required one.
type Reader struct {
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewReader(log *slog.Logger) *Reader {
	return &Reader{parser: gofeed.NewParser(), log: log}
}

// Fetch downloads feedURL and maps its items to tenders for portalName.
func (r *Reader) Fetch(ctx context.Context, feedURL, portalName string) []domain.Tender {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		if r.log != nil {
			r.log.Warn("feed fetch failed", "url", feedURL, "error", err)
		}
		return nil
	}

	tenders := make([]domain.Tender, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		t := domain.Tender{
			Title:       title,
			Portal:      portalName,
			Description: strings.TrimSpace(item.Description),
			URL:         item.Link,
		}
		if item.PublishedParsed != nil {
			published := item.PublishedParsed.In(time.Local)
			t.PublishedDate = &published
		}
		tenders = append(tenders, t)
	}

	if r.log != nil {
		r.log.Debug("feed parsed", "url", feedURL, "items", len(tenders))
	}
	return tenders
}
