package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/httpapi"
	apimw "github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/logging"
	"github.com/hamed0406/uptimemonitor/internal/metrics"
	"github.com/hamed0406/uptimemonitor/internal/notify"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo/memory"
	"github.com/hamed0406/uptimemonitor/internal/repo/yamlfile"
	"github.com/hamed0406/uptimemonitor/internal/scheduler"
)

var version = "dev"

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.FromEnv()
	pflag.StringVarP(&cfg.ConfigPath, "config", "c", cfg.ConfigPath, "path to the targets YAML file")
	pflag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	pflag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	pflag.Parse()

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Dir: cfg.LogDir, Format: cfg.LogFormat})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid_config", zap.Error(err))
	}
	reg, err := yamlfile.Load(cfg.ConfigPath)
	if err != nil {
		logger.Fatal("config_load_failed", zap.String("path", cfg.ConfigPath), zap.Error(err))
	}

	probe.UserAgent = "uptimemonitor/" + version
	checker := probe.NewHTTPChecker()
	settings := memory.NewSettings(reg)
	results := memory.NewResults()
	gauges := metrics.New()

	tg := notify.NewTelegram(cfg.TelegramAPIURL, cfg.TelegramToken, cfg.TelegramChatID)
	slack := notify.NewSlack(cfg.SlackWebhook)
	dispatcher := notify.NewDispatcher(logger, tg, slack)
	if !dispatcher.Enabled() {
		logger.Info("notifications_disabled")
	}

	loop := scheduler.NewCheckLoop(logger, settings, results, checker, dispatcher, cfg.HighLatencyMS, cfg.CheckConcurrency)
	loop.Metrics = gauges
	summaries := scheduler.NewSummaries(logger, results, dispatcher)

	api := httpapi.NewServer(logger, settings, results, checker, probe.NewDNSDiagnoser(), gauges.Handler())
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Router(httpapi.Options{
			Keys:           apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys},
			AllowedOrigins: cfg.AllowedOrigins,
			PublicRPM:      cfg.PublicRPM,
			AdminRPM:       cfg.AdminRPM,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return loop.Run(ctx) })
	for _, task := range summaries.Tasks(cfg) {
		task := task
		logger.Info("summary_scheduled", zap.String("task", task.Name))
		g.Go(func() error { return task.Run(ctx) })
	}
	if tg.Enabled() && cfg.TelegramCommands {
		listener := notify.NewListener(tg, summaries.Render, logger)
		g.Go(func() error { return listener.Run(ctx) })
	}
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("monitor_started",
		zap.String("version", version),
		zap.Int("targets", len(reg.Targets)),
		zap.Int("interval_seconds", reg.IntervalSeconds),
		zap.Int("timeout_seconds", reg.TimeoutSeconds),
	)

	err = g.Wait()
	dispatcher.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("monitor_stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("monitor_stopped")
}
