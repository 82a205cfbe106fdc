package ports

import (
	"context"
	"time"

	"tenderscan/internal/domain"
)

// Reporter renders the two result sets to a persisted report and returns the
// file path. The pipeline makes no assumption about the format.
type Reporter interface {
	Export(matched, all []domain.Tender) (string, error)
}

// Mailer delivers a finished report to the operator.
type Mailer interface {
	SendReport(path string, matched, total int) error
}

// TenderArchive persists scored tenders for history and cross-run dedup.
// Implementations must tolerate a nil receiver being skipped by the caller.
type TenderArchive interface {
	SeenKeys(ctx context.Context, keys []string) (map[string]bool, error)
	SaveRun(ctx context.Context, tenders []domain.Tender) error
}

// Browser opens rendering sessions for portals that serve JS-only shells.
type Browser interface {
	NewSession(ctx context.Context) (BrowserSession, error)
}

// BrowserSession drives one headless page. All waits are bounded by the
// session's configured timeout.
type BrowserSession interface {
	// Navigate loads url and, when waitSelector is non-empty, blocks until
	// the selector appears or the timeout elapses.
	Navigate(url, waitSelector string) error
	// Fill types text into the element at selector and submits it.
	FillAndSubmit(selector, text string) error
	// Click presses the element at selector; returns an error when absent.
	Click(selector string) error
	// HTML returns the current fully rendered markup.
	HTML() (string, error)
	Close() error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
