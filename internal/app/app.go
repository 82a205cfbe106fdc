// Package app wires configuration to the scrapers, pipeline and delivery
// surfaces.
package app

import (
	"context"
	"log/slog"
	"time"

	"tenderscan/internal/config"
	"tenderscan/internal/domain"
	"tenderscan/internal/fetch"
	"tenderscan/internal/infrastructure/browser"
	"tenderscan/internal/infrastructure/dashboard"
	"tenderscan/internal/infrastructure/mail"
	"tenderscan/internal/infrastructure/portal"
	"tenderscan/internal/infrastructure/report"
	"tenderscan/internal/infrastructure/rss"
	"tenderscan/internal/infrastructure/scheduler"
	"tenderscan/internal/infrastructure/storage"
	"tenderscan/internal/logging"
	"tenderscan/internal/ports"
	"tenderscan/internal/scraper"
	"tenderscan/internal/usecase"
)

// Application owns every long-lived component of one process.
type Application struct {
	cfg      config.Config
	log      *slog.Logger
	pipeline *usecase.Pipeline
	browser  *browser.Rod
	archive  *storage.PostgresArchive
	server   *dashboard.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	policy := fetch.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Scraper.RetryAttempts
	client := fetch.NewClient(
		time.Duration(cfg.Scraper.RequestDelaySeconds*float64(time.Second)),
		policy,
		baseLogger.With("component", "fetch"),
	)

	rod := browser.New(
		cfg.Scraper.HeadlessBrowser,
		time.Duration(cfg.Scraper.BrowserTimeoutMS)*time.Millisecond,
		baseLogger.With("component", "browser"),
	)

	deps := portal.Deps{
		Fetch:        client,
		Browser:      rod,
		Log:          baseLogger.With("component", "portal"),
		MaxPages:     cfg.Scraper.MaxPagesPerPortal,
		LookbackDays: cfg.LookbackDays,
	}
	feed := rss.NewReader(baseLogger.With("component", "rss"))

	registry := scraper.NewRegistry()
	registry.Register(portal.NewGeM(deps, cfg.WorkTypes))
	registry.Register(portal.NewCPPP(deps, feed))
	registry.Register(portal.NewAP(deps))
	registry.Register(portal.NewHSL(deps))
	registry.Register(portal.NewDefproc(deps))

	var archive *storage.PostgresArchive
	var archivePort ports.TenderArchive
	if cfg.Database.DSN != "" {
		a, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("tender archive unavailable", "error", err)
		} else if err := a.EnsureSchema(context.Background()); err != nil {
			baseLogger.Warn("tender archive schema failed", "error", err)
			_ = a.Close()
		} else {
			archive = a
			archivePort = a
		}
	}

	reporter := report.NewExcelExporter(cfg.Output.Dir, cfg.Output.Filename,
		baseLogger.With("component", "report"))

	var mailer ports.Mailer
	if cfg.Email.SendEmail && cfg.Email.AppPassword != "" {
		mailer = mail.NewSMTPMailer(
			cfg.Email.SMTPServer,
			cfg.Email.SMTPPort,
			cfg.Email.GmailAddress,
			cfg.Email.AppPassword,
			cfg.Email.SendReportTo,
			baseLogger.With("component", "mail"),
		)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry: registry,
		Archive:  archivePort,
		Reporter: reporter,
		Mailer:   mailer,
		Log:      baseLogger.With("component", "pipeline"),
	})

	srv := dashboard.NewServer(pipeline, cfg.Profile(), cfg.Output.Dir,
		baseLogger.With("component", "dashboard"))

	return &Application{
		cfg:      cfg,
		log:      baseLogger,
		pipeline: pipeline,
		browser:  rod,
		archive:  archive,
		server:   srv,
	}
}

// Profile returns the scoring profile built from the loaded config.
func (a *Application) Profile() domain.Profile {
	return a.cfg.Profile()
}

// RunOnce executes a single scrape-score-report cycle.
func (a *Application) RunOnce(ctx context.Context, opts usecase.RunOptions) (matched, all []domain.Tender, err error) {
	matched, all, err = a.pipeline.Run(ctx, a.cfg.Profile(), opts)
	if err == nil {
		a.server.SetResults(matched, all)
	}
	return matched, all, err
}

// Serve runs the dashboard until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	a.log.Info("dashboard listening", "addr", a.cfg.Dashboard.Addr)
	return a.server.Run(ctx, a.cfg.Dashboard.Addr)
}

// Schedule runs the pipeline at the configured daily time until ctx is
// cancelled.
func (a *Application) Schedule(ctx context.Context, opts usecase.RunOptions) error {
	sched, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.RunEveryDayAt, a.cfg.Scheduler.Timezone)
	if err != nil {
		return err
	}

	a.log.Info("scheduler armed",
		"at", a.cfg.Scheduler.RunEveryDayAt, "tz", a.cfg.Scheduler.Timezone)

	// First run happens right away; the timer covers the following days.
	if _, _, err := a.RunOnce(ctx, opts); err != nil {
		a.log.Error("initial run failed", "error", err)
	}

	if err := sched.Start(ctx, func(t time.Time) {
		a.log.Info("scheduled run starting", "time", t)
		if _, _, err := a.RunOnce(ctx, opts); err != nil {
			a.log.Error("scheduled run failed", "error", err)
		}
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases the browser and database resources.
func (a *Application) Close() {
	a.browser.Shutdown()
	if a.archive != nil {
		_ = a.archive.Close()
	}
}
