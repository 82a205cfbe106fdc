package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my_profile.yaml")

	profile := `
your_name: "Test Builder"
locations: ["Visakhapatnam", "AP"]
my_work_types: ["painting", "civil works"]
budget:
  minimum: 100000
  maximum: 5000000
exclude_these_work_types: ["underwater"]
minimum_match_score: 40
look_back_days: 7
portals:
  gem: true
  cppp: true
  hsl: true
`
	if err := os.WriteFile(path, []byte(profile), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	t.Setenv("TENDERSCAN_CONFIG", path)

	cfg := Load()

	if cfg.YourName != "Test Builder" {
		t.Errorf("YourName = %q, want Test Builder", cfg.YourName)
	}
	if cfg.MinScore != 40 {
		t.Errorf("MinScore = %d, want 40", cfg.MinScore)
	}
	if cfg.LookbackDays != 7 {
		t.Errorf("LookbackDays = %d, want 7", cfg.LookbackDays)
	}

	p := cfg.Profile()
	if !p.PortalEnabled("hsl") {
		t.Error("hsl portal should be enabled")
	}
	if p.PortalEnabled("ap_eprocurement") {
		t.Error("ap_eprocurement should be disabled by default")
	}
	if p.BudgetMax != 5000000 {
		t.Errorf("BudgetMax = %v, want 5000000", p.BudgetMax)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TENDERSCAN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	if cfg.MinScore != 30 {
		t.Errorf("default MinScore = %d, want 30", cfg.MinScore)
	}
	if cfg.Budget.Maximum != 999_999_999 {
		t.Errorf("default BudgetMax = %v, want unbounded ceiling", cfg.Budget.Maximum)
	}
	if cfg.Scraper.MaxPagesPerPortal != 20 {
		t.Errorf("default MaxPagesPerPortal = %d, want 20", cfg.Scraper.MaxPagesPerPortal)
	}
	if !cfg.Portals.CPPP || !cfg.Portals.GeM {
		t.Error("gem and cppp should be on by default")
	}
	if cfg.Scheduler.Location().String() != "Asia/Kolkata" {
		t.Errorf("timezone = %s, want Asia/Kolkata", cfg.Scheduler.Location())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TENDERSCAN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DATABASE_DSN", "postgres://archive")
	t.Setenv("SMTP_APP_PASSWORD", "secret")

	cfg := Load()

	if cfg.Database.DSN != "postgres://archive" {
		t.Errorf("DSN = %q, want env override", cfg.Database.DSN)
	}
	if cfg.Email.AppPassword != "secret" {
		t.Errorf("AppPassword = %q, want env override", cfg.Email.AppPassword)
	}
}
