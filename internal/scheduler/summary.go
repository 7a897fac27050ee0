package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// Render formats the latest outcome of every target, sorted by name.
func Render(latest map[string]domain.ProbeOutcome, now time.Time) string {
	if len(latest) == 0 {
		return "📊 Uptime summary\nno results yet"
	}

	names := make([]string, 0, len(latest))
	up := 0
	for name, o := range latest {
		names = append(names, name)
		if o.OK {
			up++
		}
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Uptime summary: %d up, %d down", up, len(latest)-up)
	for _, name := range names {
		o := latest[name]
		mark := "✅"
		if !o.OK {
			mark = "❌"
		}
		fmt.Fprintf(&b, "\n%s %s status=%s latency=%dms", mark, name, o.StatusText(), o.LatencyMS)
		if o.Error != nil {
			fmt.Fprintf(&b, " error=%s", *o.Error)
		}
		if !o.ObservedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", humanize.RelTime(o.ObservedAt, now, "ago", "from now"))
		}
	}
	return b.String()
}

var clockParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDaily returns the next time the wall clock in loc reads clock ("HH:MM")
// strictly after now.
func NextDaily(now time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, err := config.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	sched, err := clockParser.Parse(fmt.Sprintf("%d %d * * *", m, h))
	if err != nil {
		return time.Time{}, fmt.Errorf("daily schedule %q: %w", clock, err)
	}
	return sched.Next(now.In(loc)), nil
}

// Sender receives rendered summaries.
type Sender interface {
	Send(ctx context.Context, text string)
}

// Task is one independently scheduled background job.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Summaries struct {
	Logger  *zap.Logger
	Results repo.ResultReader
	Out     Sender
	Now     func() time.Time
	Sleep   Sleeper
}

func NewSummaries(logger *zap.Logger, results repo.ResultReader, out Sender) *Summaries {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summaries{
		Logger:  logger,
		Results: results,
		Out:     out,
		Now:     time.Now,
		Sleep:   sleepCtx,
	}
}

// Render renders the current Result Cache.
func (s *Summaries) Render() string {
	return Render(s.Results.Latest(), s.Now())
}

// Tasks returns only the emitters enabled by cfg. A disabled emitter has no
// task at all.
func (s *Summaries) Tasks(cfg config.Config) []Task {
	var tasks []Task
	if cfg.SummaryInterval > 0 {
		every := cfg.SummaryInterval
		tasks = append(tasks, Task{
			Name: "interval_summary",
			Run: func(ctx context.Context) error {
				return s.loop(ctx, "interval_summary", func(time.Time) (time.Duration, error) {
					return every, nil
				})
			},
		})
	}
	if cfg.DailySummaryAt != "" {
		clock, loc := cfg.DailySummaryAt, cfg.Location()
		tasks = append(tasks, Task{
			Name: "daily_summary",
			Run: func(ctx context.Context) error {
				return s.loop(ctx, "daily_summary", func(now time.Time) (time.Duration, error) {
					next, err := NextDaily(now, clock, loc)
					if err != nil {
						return 0, err
					}
					return next.Sub(now), nil
				})
			},
		})
	}
	return tasks
}

func (s *Summaries) loop(ctx context.Context, name string, wait func(now time.Time) (time.Duration, error)) error {
	for {
		d, err := wait(s.Now())
		if err != nil {
			s.Logger.Error("summary_schedule_invalid", zap.String("task", name), zap.Error(err))
			return err
		}
		if err := s.Sleep(ctx, d); err != nil {
			return err
		}
		s.emit(ctx, name)
	}
}

func (s *Summaries) emit(ctx context.Context, name string) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("summary_failed", zap.String("task", name), zap.String("panic", fmt.Sprint(r)))
		}
	}()
	s.Out.Send(ctx, s.Render())
	s.Logger.Info("summary_sent", zap.String("task", name))
}
