package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // SUMMARY_TIMEZONE must resolve in minimal containers

	"go.uber.org/multierr"
)

type Config struct {
	ConfigPath string // YAML registry, e.g. config/targets.yml
	Addr       string // API bind address, e.g. "127.0.0.1:8000" or ":8000" (Docker)
	LogLevel   string
	LogDir     string // empty: stdout only
	LogFormat  string // json, console or empty for auto

	HighLatencyMS    int64 // ok probes at or above this latency are warned about
	CheckConcurrency int   // probes in flight per tick, 1 = sequential

	SummaryInterval time.Duration // <= 0 disables the interval summary
	DailySummaryAt  string        // "HH:MM", empty disables the daily summary
	SummaryTimezone string        // IANA name

	TelegramToken    string
	TelegramChatID   string
	TelegramAPIURL   string
	TelegramCommands bool
	SlackWebhook     string

	PublicAPIKeys  []string
	AdminAPIKeys   []string
	AllowedOrigins []string
	PublicRPM      int
	AdminRPM       int
}

func FromEnv() Config {
	return Config{
		ConfigPath: getEnv("CONFIG_PATH", "config/targets.yml"),
		Addr:       getEnv("API_ADDR", "127.0.0.1:8000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogDir:     os.Getenv("LOG_DIR"),
		LogFormat:  strings.TrimSpace(os.Getenv("LOG_FORMAT")),

		HighLatencyMS:    int64(getInt("HIGH_LATENCY_MS", 800, 0)),
		CheckConcurrency: getInt("CHECK_CONCURRENCY", 1, 1),

		// Negative values are kept: they mean "disabled", same as 0.
		SummaryInterval: time.Duration(getInt("SUMMARY_INTERVAL_SECONDS", 0, math.MinInt)) * time.Second,
		DailySummaryAt:  strings.TrimSpace(os.Getenv("DAILY_SUMMARY_AT")),
		SummaryTimezone: getEnv("SUMMARY_TIMEZONE", "UTC"),

		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:   strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramCommands: getBool("TELEGRAM_COMMANDS", true),
		SlackWebhook:     strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),

		PublicAPIKeys:  splitList(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:   splitList(os.Getenv("ADMIN_API_KEYS")),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		PublicRPM:      getInt("PUBLIC_RPM", 600, math.MinInt),
		AdminRPM:       getInt("ADMIN_RPM", 60, math.MinInt),
	}
}

// Validate checks the settings that cannot fall back to a default.
func (c Config) Validate() error {
	var err error
	if c.DailySummaryAt != "" {
		if _, _, perr := ParseClock(c.DailySummaryAt); perr != nil {
			err = multierr.Append(err, perr)
		}
	}
	if _, lerr := time.LoadLocation(c.SummaryTimezone); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("SUMMARY_TIMEZONE %q: %w", c.SummaryTimezone, lerr))
	}
	return err
}

// Location resolves SummaryTimezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SummaryTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseClock parses "HH:MM" in 24h form.
func ParseClock(s string) (hour, minute int, err error) {
	t, perr := time.Parse("15:04", strings.TrimSpace(s))
	if perr != nil {
		return 0, 0, fmt.Errorf("DAILY_SUMMARY_AT %q: want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= min {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
