/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults below
  2. A .env file in the working directory, if present
  3. Process environment
  4. Command-line flags (applied by cmd/server)

KEYS:
  PORT                     HTTP listen port (8080)
  DB_PATH                  SQLite path, ":memory:" for ephemeral (payroll.db)
  LOG_LEVEL                debug, info, warn, error (info)
  LOG_FORMAT               text or json (text)
  CORS_ORIGINS             Comma-separated allowed origins (*)
  RATE_LIMIT               ulule/limiter rate, e.g. "100-M"; empty disables
  PAYROLL_WORKERS          Parallel employees per run (4)
  SCHEDULER_ENABLED        Run last month's payroll automatically (false)
  SCHEDULER_INTERVAL       How often the scheduler checks (1h)
  SCHEDULER_RUN_DAY        Day of month from which the run is due (1)
  DEFAULT_COMPONENTS_FILE  JSON or YAML component set loaded at startup
  COMPANY_NAME             Printed on payslips (Warp)
  CURRENCY                 Printed next to payslip amounts (INR)
*/
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                  string
	DBPath                string
	LogLevel              string
	LogFormat             string
	CORSOrigins           []string
	RateLimit             string
	PayrollWorkers        int
	SchedulerEnabled      bool
	SchedulerInterval     time.Duration
	SchedulerRunDay       int
	DefaultComponentsFile string
	CompanyName           string
	Currency              string
}

// Load reads configuration from defaults, the given .env files (".env" when
// none are given) and the environment. Missing .env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "payroll.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT", "")
	v.SetDefault("PAYROLL_WORKERS", 4)
	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_INTERVAL", "1h")
	v.SetDefault("SCHEDULER_RUN_DAY", 1)
	v.SetDefault("DEFAULT_COMPONENTS_FILE", "")
	v.SetDefault("COMPANY_NAME", "Warp")
	v.SetDefault("CURRENCY", "INR")
	v.AutomaticEnv()

	interval, err := time.ParseDuration(v.GetString("SCHEDULER_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL %q: %w", v.GetString("SCHEDULER_INTERVAL"), err)
	}

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		DBPath:                v.GetString("DB_PATH"),
		LogLevel:              strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:             strings.ToLower(v.GetString("LOG_FORMAT")),
		CORSOrigins:           splitList(v.GetString("CORS_ORIGINS")),
		RateLimit:             v.GetString("RATE_LIMIT"),
		PayrollWorkers:        v.GetInt("PAYROLL_WORKERS"),
		SchedulerEnabled:      v.GetBool("SCHEDULER_ENABLED"),
		SchedulerInterval:     interval,
		SchedulerRunDay:       v.GetInt("SCHEDULER_RUN_DAY"),
		DefaultComponentsFile: v.GetString("DEFAULT_COMPONENTS_FILE"),
		CompanyName:           v.GetString("COMPANY_NAME"),
		Currency:              v.GetString("CURRENCY"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.PayrollWorkers < 1 {
		return fmt.Errorf("PAYROLL_WORKERS must be at least 1, got %d", c.PayrollWorkers)
	}
	if c.SchedulerRunDay < 1 || c.SchedulerRunDay > 28 {
		return fmt.Errorf("SCHEDULER_RUN_DAY must be between 1 and 28, got %d", c.SchedulerRunDay)
	}
	if c.SchedulerInterval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
