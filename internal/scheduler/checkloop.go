package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/metrics"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Alerter is the sink for down and recovered messages. Implementations must
// not block the caller.
type Alerter interface {
	Go(ctx context.Context, text string)
}

type CheckLoop struct {
	Logger        *zap.Logger
	Settings      repo.SettingsStore
	Results       repo.ResultStore
	Checker       probe.Checker
	Alerts        Alerter
	Metrics       *metrics.Gauges
	HighLatencyMS int64
	Concurrency   int
	Sleep         Sleeper
}

func NewCheckLoop(
	logger *zap.Logger,
	settings repo.SettingsStore,
	results repo.ResultStore,
	checker probe.Checker,
	alerts Alerter,
	highLatencyMS int64,
	concurrency int,
) *CheckLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &CheckLoop{
		Logger:        logger,
		Settings:      settings,
		Results:       results,
		Checker:       checker,
		Alerts:        alerts,
		HighLatencyMS: highLatencyMS,
		Concurrency:   concurrency,
		Sleep:         sleepCtx,
	}
}

// Run probes every target, sleeps for the registry interval and repeats. The
// registry is re-read each tick so added targets are picked up. It only
// returns once ctx is cancelled.
func (c *CheckLoop) Run(ctx context.Context) error {
	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	for {
		reg := c.Settings.Get()
		c.safeRunOnce(ctx, reg)
		if err := sleep(ctx, reg.Interval()); err != nil {
			c.Logger.Info("check_loop_stopped")
			return err
		}
	}
}

func (c *CheckLoop) safeRunOnce(ctx context.Context, reg domain.Registry) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error("check_tick_panic", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	c.RunOnce(ctx, reg)
}

// RunOnce performs one tick against reg and returns the derived events in
// target order. At most Concurrency probes are in flight; the call returns
// after every probe of the tick has finished. Outcomes of probes interrupted
// by ctx cancellation are dropped.
func (c *CheckLoop) RunOnce(ctx context.Context, reg domain.Registry) []Event {
	if len(reg.Targets) == 0 {
		return nil
	}
	timeout := reg.Timeout()
	perTarget := make([][]Event, len(reg.Targets))

	if c.Concurrency <= 1 {
		for i, t := range reg.Targets {
			if ctx.Err() != nil {
				break
			}
			perTarget[i] = c.checkOne(ctx, t, timeout)
		}
	} else {
		sem := make(chan struct{}, c.Concurrency)
		var wg sync.WaitGroup
		for i, t := range reg.Targets {
			i, t := i, t
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer func() { <-sem }()
				defer wg.Done()
				perTarget[i] = c.checkOne(ctx, t, timeout)
			}()
		}
		wg.Wait()
	}

	var events []Event
	for _, evs := range perTarget {
		events = append(events, evs...)
	}
	return events
}

// checkOne probes a single target. A panic is contained to that target so
// the rest of the tick still runs, including on the fan-out goroutines.
func (c *CheckLoop) checkOne(ctx context.Context, t domain.Target, timeout time.Duration) (events []Event) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error("check_target_panic",
				zap.String("target", t.Name),
				zap.String("url", t.URL),
				zap.String("panic", fmt.Sprint(r)),
			)
			events = nil
		}
	}()

	out := c.Checker.Check(ctx, t, timeout)
	if ctx.Err() != nil {
		return nil
	}

	prevUp, seen := c.Results.Record(t.Name, out)
	c.Metrics.Observe(t, out)

	events = DeriveEvents(t, out, prevUp, seen, c.HighLatencyMS)
	for _, e := range events {
		e.log(c.Logger)
		if e.Notifies() && c.Alerts != nil {
			c.Alerts.Go(ctx, e.Message())
		}
	}
	return events
}
