// Command preflight checks the monitor's environment before a deploy.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/repo/yamlfile"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(config.FromEnv(), os.Getenv))
}

func run(cfg config.Config, getenv func(string) string) int {
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	var errs error
	if err := cfg.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if reg, err := yamlfile.Load(cfg.ConfigPath); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		ok(fmt.Sprintf("%s: %d targets, every %ds", cfg.ConfigPath, len(reg.Targets), reg.IntervalSeconds))
	}

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; POST /api/targets is open to anyone who can reach API_ADDR.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("no API keys configured; /api routes are unauthenticated.")
	}
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS", "ALLOWED_ORIGINS"} {
		if strings.Contains(getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if (cfg.TelegramToken == "") != (cfg.TelegramChatID == "") {
		errs = multierr.Append(errs, fmt.Errorf("set both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID or neither"))
	}
	if cfg.TelegramToken == "" && cfg.SlackWebhook == "" {
		warn("no notification transport configured; down/recovered alerts are only logged.")
	} else {
		ok("notifications enabled")
	}
	if cfg.SummaryInterval <= 0 && cfg.DailySummaryAt == "" {
		warn("summaries disabled (SUMMARY_INTERVAL_SECONDS<=0, DAILY_SUMMARY_AT empty)")
	}

	ok("API_ADDR=" + cfg.Addr)

	if errs != nil {
		for _, err := range multierr.Errors(errs) {
			fmt.Fprintln(os.Stderr, "✖", err)
		}
		return 1
	}
	ok("preflight passed")
	return 0
}
