package scheduler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

type EventKind int

const (
	EventInitial EventKind = iota
	EventDown
	EventRecovered
	EventRequestError
	EventHighLatency
)

func (k EventKind) String() string {
	switch k {
	case EventInitial:
		return "initial_status"
	case EventDown:
		return "target_down"
	case EventRecovered:
		return "target_recovered"
	case EventRequestError:
		return "request_error"
	case EventHighLatency:
		return "high_latency"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

type Event struct {
	Kind    EventKind
	Target  domain.Target
	Outcome domain.ProbeOutcome
}

// DeriveEvents compares a fresh outcome against the previous up/down state of
// the same target. seen is false the first time a target is probed. Events
// come back in a fixed order: initial, transition, request error, latency.
func DeriveEvents(t domain.Target, o domain.ProbeOutcome, prevUp, seen bool, highLatencyMS int64) []Event {
	var out []Event
	add := func(k EventKind) {
		out = append(out, Event{Kind: k, Target: t, Outcome: o})
	}

	switch {
	case !seen:
		add(EventInitial)
	case prevUp && !o.OK:
		add(EventDown)
	case !prevUp && o.OK:
		add(EventRecovered)
	}
	if o.TransportFailed() {
		add(EventRequestError)
	}
	if o.OK && o.LatencyMS >= highLatencyMS {
		add(EventHighLatency)
	}
	return out
}

// Notifies reports whether the event is pushed to chat, not just logged.
func (e Event) Notifies() bool {
	return e.Kind == EventDown || e.Kind == EventRecovered
}

// Message is the chat text for down and recovered events.
func (e Event) Message() string {
	o := e.Outcome
	switch e.Kind {
	case EventDown:
		return fmt.Sprintf("❌ DOWN: %s\n%s\nstatus=%s error=%s latency=%dms",
			e.Target.Name, e.Target.URL, o.StatusText(), o.ErrorText(), o.LatencyMS)
	case EventRecovered:
		return fmt.Sprintf("✅ RECOVERED: %s\n%s\nstatus=%s latency=%dms",
			e.Target.Name, e.Target.URL, o.StatusText(), o.LatencyMS)
	}
	return ""
}

func (e Event) log(l *zap.Logger) {
	o := e.Outcome
	fields := []zap.Field{
		zap.String("target", e.Target.Name),
		zap.String("url", e.Target.URL),
		zap.Bool("ok", o.OK),
		zap.Int64("latency_ms", o.LatencyMS),
	}
	if o.HTTPStatus != nil {
		fields = append(fields, zap.Int("status", *o.HTTPStatus))
	}
	if o.Error != nil {
		fields = append(fields, zap.String("error", *o.Error))
	}

	switch e.Kind {
	case EventDown:
		l.Error(e.Kind.String(), fields...)
	case EventRequestError, EventHighLatency:
		l.Warn(e.Kind.String(), fields...)
	default:
		l.Info(e.Kind.String(), fields...)
	}
}
