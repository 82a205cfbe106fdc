package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tenderscan/internal/domain"
)

const (
	defaultTimezone  = "Asia/Kolkata"
	configPathEnv    = "TENDERSCAN_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	smtpPasswordEnv  = "SMTP_APP_PASSWORD"
	smtpAddressEnv   = "SMTP_ADDRESS"
	unboundedBudget  = 999_999_999
	defaultMinScore  = 30
	defaultLookback  = 1
	defaultMaxPages  = 20
	defaultDelaySec  = 2.5
	defaultBrowserMS = 30_000
)

// Config holds everything one pipeline run needs: the contractor profile
// plus scraper behaviour, output, email, dashboard and scheduler settings.
type Config struct {
	YourName     string        `yaml:"your_name"`
	Locations    []string      `yaml:"locations"`
	WorkTypes    []string      `yaml:"my_work_types"`
	Budget       BudgetConfig  `yaml:"budget"`
	ExcludeTypes []string      `yaml:"exclude_these_work_types"`
	MinScore     int           `yaml:"minimum_match_score"`
	LookbackDays int           `yaml:"look_back_days"`
	Portals      PortalConfig  `yaml:"portals"`
	Scraper      ScraperConfig `yaml:"scraper"`
	Output       OutputConfig  `yaml:"output"`
	Email        EmailConfig   `yaml:"email"`
	Dashboard    DashConfig    `yaml:"dashboard"`
	Scheduler    SchedConfig   `yaml:"scheduler"`
	Database     DBConfig      `yaml:"database"`
	Logging      LogConfig     `yaml:"logging"`
}

// BudgetConfig is the rupee range the contractor can take on.
type BudgetConfig struct {
	Minimum float64 `yaml:"minimum"`
	Maximum float64 `yaml:"maximum"`
}

// PortalConfig toggles individual portal scrapers.
type PortalConfig struct {
	GeM     bool `yaml:"gem"`
	CPPP    bool `yaml:"cppp"`
	AP      bool `yaml:"ap_eprocurement"`
	HSL     bool `yaml:"hsl"`
	Defproc bool `yaml:"defproc"`
}

// ScraperConfig governs politeness and bounds shared by all scrapers.
type ScraperConfig struct {
	RequestDelaySeconds float64 `yaml:"request_delay_seconds"`
	MaxPagesPerPortal   int     `yaml:"max_pages_per_portal"`
	RetryAttempts       int     `yaml:"retry_attempts"`
	HeadlessBrowser     bool    `yaml:"headless_browser"`
	BrowserTimeoutMS    int     `yaml:"browser_timeout_ms"`
}

// OutputConfig locates the Excel reports.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Filename string `yaml:"filename"` // {date} expands to YYYY-MM-DD
}

// EmailConfig wires the optional report mail.
type EmailConfig struct {
	SendEmail    bool   `yaml:"send_email"`
	GmailAddress string `yaml:"gmail_address"`
	AppPassword  string `yaml:"app_password"`
	SendReportTo string `yaml:"send_report_to"`
	SMTPServer   string `yaml:"smtp_server"`
	SMTPPort     int    `yaml:"smtp_port"`
}

// DashConfig configures the local dashboard server.
type DashConfig struct {
	Addr string `yaml:"addr"`
}

// SchedConfig defines the daily run time.
type SchedConfig struct {
	RunEveryDayAt string         `yaml:"run_every_day_at"`
	Timezone      string         `yaml:"timezone"`
	location      *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DBConfig describes the optional tender archive.
type DBConfig struct {
	DSN string `yaml:"dsn"`
}

// LogConfig sets the slog level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML profile (path from TENDERSCAN_CONFIG or
// ./my_profile.yaml) over built-in defaults and applies env overrides.
func Load() Config {
	cfg := defaultConfig()

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = "my_profile.yaml"
	}
	if raw, err := os.ReadFile(path); err != nil {
		log.Printf("config: cannot read %s: %v (using defaults)", path, err)
	} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Printf("config: cannot parse %s: %v (using defaults)", path, err)
		cfg = defaultConfig()
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Email.AppPassword = v
	}
	if v := os.Getenv(smtpAddressEnv); v != "" {
		c.Email.GmailAddress = v
	}
}

func (c *Config) normalize() {
	if c.Budget.Maximum <= 0 {
		c.Budget.Maximum = unboundedBudget
	}
	if c.MinScore <= 0 {
		c.MinScore = defaultMinScore
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = defaultLookback
	}
	if c.Scraper.MaxPagesPerPortal <= 0 {
		c.Scraper.MaxPagesPerPortal = defaultMaxPages
	}
	if c.Scraper.RequestDelaySeconds <= 0 {
		c.Scraper.RequestDelaySeconds = defaultDelaySec
	}
	if c.Scraper.RetryAttempts <= 0 {
		c.Scraper.RetryAttempts = 3
	}
	if c.Scraper.BrowserTimeoutMS <= 0 {
		c.Scraper.BrowserTimeoutMS = defaultBrowserMS
	}
	if c.Email.SendReportTo == "" {
		c.Email.SendReportTo = c.Email.GmailAddress
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = "tenders_{date}.xlsx"
	}

	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// Profile builds the immutable scoring profile for one run.
func (c Config) Profile() domain.Profile {
	return domain.Profile{
		Name:            c.YourName,
		Locations:       c.Locations,
		WorkKeywords:    c.WorkTypes,
		BudgetMin:       c.Budget.Minimum,
		BudgetMax:       c.Budget.Maximum,
		ExcludeKeywords: c.ExcludeTypes,
		MinScore:        c.MinScore,
		Portals: map[string]bool{
			"gem":             c.Portals.GeM,
			"cppp":            c.Portals.CPPP,
			"ap_eprocurement": c.Portals.AP,
			"hsl":             c.Portals.HSL,
			"defproc":         c.Portals.Defproc,
		},
	}
}

func defaultConfig() Config {
	return Config{
		YourName:     "Contractor",
		MinScore:     defaultMinScore,
		LookbackDays: defaultLookback,
		Budget:       BudgetConfig{Minimum: 0, Maximum: unboundedBudget},
		Portals:      PortalConfig{GeM: true, CPPP: true},
		Scraper: ScraperConfig{
			RequestDelaySeconds: defaultDelaySec,
			MaxPagesPerPortal:   defaultMaxPages,
			RetryAttempts:       3,
			HeadlessBrowser:     true,
			BrowserTimeoutMS:    defaultBrowserMS,
		},
		Output: OutputConfig{Dir: "reports", Filename: "tenders_{date}.xlsx"},
		Email: EmailConfig{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		Dashboard: DashConfig{Addr: ":5000"},
		Scheduler: SchedConfig{RunEveryDayAt: "08:00", Timezone: defaultTimezone},
		Logging:   LogConfig{Level: "info"},
	}
}
