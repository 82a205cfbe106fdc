package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"tenderscan/internal/dedup"
	"tenderscan/internal/domain"
	"tenderscan/internal/ports"
	"tenderscan/internal/scraper"
	"tenderscan/internal/status"
)

// RunOptions are per-run overrides. Zero values defer to the profile.
type RunOptions struct {
	MinScore int
	// DryRun skips the report, email and archive write.
	DryRun bool
}

// PipelineDeps wires all driven adapters into the run orchestration.
type PipelineDeps struct {
	Registry *scraper.Registry
	Archive  ports.TenderArchive
	Reporter ports.Reporter
	Mailer   ports.Mailer
	Tracker  *status.Tracker
	Log      *slog.Logger
}

// Pipeline executes one scrape-score-report cycle. Only one run may be
// active at a time; a second trigger is rejected through the tracker.
type Pipeline struct {
	registry *scraper.Registry
	archive  ports.TenderArchive
	reporter ports.Reporter
	mailer   ports.Mailer
	tracker  *status.Tracker
	log      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = status.NewTracker()
	}
	return &Pipeline{
		registry: deps.Registry,
		archive:  deps.Archive,
		reporter: deps.Reporter,
		mailer:   deps.Mailer,
		tracker:  tracker,
		log:      deps.Log,
	}
}

// Tracker exposes the shared run state for the dashboard.
func (p *Pipeline) Tracker() *status.Tracker {
	return p.tracker
}

// Run scrapes every enabled portal, scores and filters the merged results,
// and hands them to the reporter and mailer. It returns the matched and the
// full result sets.
func (p *Pipeline) Run(ctx context.Context, profile domain.Profile, opts RunOptions) (matched, all []domain.Tender, err error) {
	if err := p.tracker.Begin(); err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			p.tracker.Fail(err)
		}
	}()

	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = profile.MinScore
	}

	scrapers := p.registry.Enabled(profile)
	if len(scrapers) == 0 {
		err = fmt.Errorf("no portals enabled in profile %q", profile.Name)
		return nil, nil, err
	}

	batches := make([][]domain.Tender, 0, len(scrapers))
	for i, s := range scrapers {
		p.tracker.Set(5+(60*i)/len(scrapers), "scraping "+s.PortalName())
		p.info("scraping portal", "portal", s.PortalName())
		batch := p.runScraper(ctx, s)
		p.info("portal finished", "portal", s.PortalName(), "tenders", len(batch))
		batches = append(batches, batch)
	}

	p.tracker.Set(65, "deduplicating")
	all = dedup.Merge(batches...)
	all = p.dropArchived(ctx, all)

	p.tracker.Set(70, "scoring")
	for i := range all {
		ScoreTender(&all[i], profile)
	}

	matched = FilterAndSort(all, minScore)
	p.info("scoring finished", "total", len(all), "matched", len(matched), "min_score", minScore)

	if opts.DryRun {
		p.tracker.Done(len(matched), len(all), "")
		return matched, all, nil
	}

	if p.archive != nil {
		if saveErr := p.archive.SaveRun(ctx, all); saveErr != nil {
			p.warn("archive write failed", "error", saveErr)
		}
	}

	reportPath := ""
	if p.reporter != nil && len(all) > 0 {
		p.tracker.Set(85, "writing report")
		reportPath, err = p.reporter.Export(matched, all)
		if err != nil {
			err = fmt.Errorf("export report: %w", err)
			return nil, nil, err
		}
	}
	if len(all) == 0 {
		p.warn("no tenders collected, skipping report")
	}

	if p.mailer != nil && reportPath != "" {
		p.tracker.Set(95, "sending email")
		if mailErr := p.mailer.SendReport(reportPath, len(matched), len(all)); mailErr != nil {
			// A missed email must not fail the run; the report is on disk.
			p.warn("report email failed", "error", mailErr)
		}
	}

	p.tracker.Done(len(matched), len(all), reportPath)
	return matched, all, nil
}

// runScraper isolates one portal: a panicking adapter degrades to an empty
// batch instead of killing the run.
func (p *Pipeline) runScraper(ctx context.Context, s scraper.Scraper) (batch []domain.Tender) {
	defer func() {
		if r := recover(); r != nil {
			p.warn("scraper panicked", "portal", s.PortalName(), "panic", r)
			batch = nil
		}
	}()
	return s.Run(ctx)
}

// dropArchived removes tenders already seen in earlier runs. A broken
// archive degrades to "everything is new".
func (p *Pipeline) dropArchived(ctx context.Context, tenders []domain.Tender) []domain.Tender {
	if p.archive == nil || len(tenders) == 0 {
		return tenders
	}

	keys := make([]string, len(tenders))
	for i, t := range tenders {
		keys[i] = t.DedupKey()
	}
	seen, err := p.archive.SeenKeys(ctx, keys)
	if err != nil {
		p.warn("archive lookup failed", "error", err)
		return tenders
	}

	fresh := tenders[:0]
	dropped := 0
	for _, t := range tenders {
		if seen[t.DedupKey()] {
			dropped++
			continue
		}
		fresh = append(fresh, t)
	}
	if dropped > 0 {
		p.info("skipped previously seen tenders", "count", dropped)
	}
	return fresh
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.log != nil {
		p.log.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.log != nil {
		p.log.Warn(msg, args...)
	}
}
