package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tenderscan/internal/app"
	"tenderscan/internal/config"
	"tenderscan/internal/domain"
	"tenderscan/internal/logging"
	"tenderscan/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	var (
		schedule = flag.Bool("schedule", false, "run daily at the configured time instead of once")
		serve    = flag.Bool("serve", false, "serve the dashboard API")
		days     = flag.Int("days", 0, "override the lookback window in days")
		score    = flag.Int("score", 0, "override the minimum match score")
		dryRun   = flag.Bool("dry-run", false, "scrape and score without writing the report or sending email")
		confPath = flag.String("config", "", "profile path (default my_profile.yaml or $TENDERSCAN_CONFIG)")
	)
	flag.Parse()

	if *confPath != "" {
		os.Setenv("TENDERSCAN_CONFIG", *confPath)
	}

	cfg := config.Load()
	if *days > 0 {
		cfg.LookbackDays = *days
	}
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := usecase.RunOptions{MinScore: *score, DryRun: *dryRun}

	switch {
	case *serve:
		if err := application.Serve(ctx); err != nil {
			logger.Error("dashboard stopped", "error", err)
			os.Exit(1)
		}
	case *schedule:
		if err := application.Schedule(ctx, opts); err != nil {
			logger.Error("scheduler stopped", "error", err)
			os.Exit(1)
		}
	default:
		matched, all, err := application.RunOnce(ctx, opts)
		if err != nil {
			logger.Error("run failed", "error", err)
			os.Exit(1)
		}
		printSummary(matched, all)
	}
}

// printSummary writes the ranked shortlist to the console, mirroring the
// report's matched sheet.
func printSummary(matched, all []domain.Tender) {
	fmt.Printf("\nCollected %d tenders, %d matched your profile.\n\n", len(all), len(matched))

	top := matched
	if len(top) > 10 {
		top = top[:10]
	}
	for i, t := range top {
		fmt.Printf("%2d. [%3d] %s\n", i+1, t.MatchScore, t.Title)
		fmt.Printf("          %s | %s | deadline %s\n", t.Portal, t.DisplayBudget(), t.DisplayDeadline())
		if t.URL != "" {
			fmt.Printf("          %s\n", t.URL)
		}
	}
	if len(matched) > len(top) {
		fmt.Printf("\n...and %d more in the report.\n", len(matched)-len(top))
	}
}
