package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SendTimeout bounds one delivery across all transports.
const SendTimeout = 10 * time.Second

// Dispatcher delivers plain-text alerts to every enabled transport. Its
// methods never return errors or panic: failures are logged and dropped so
// a broken chat integration cannot stop monitoring.
type Dispatcher struct {
	log       *zap.Logger
	notifiers Multi
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, notifiers ...Notifier) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	var enabled Multi
	for _, n := range notifiers {
		if isEnabled(n) {
			enabled = append(enabled, n)
		}
	}
	return &Dispatcher{log: log, notifiers: enabled, timeout: SendTimeout}
}

// Enabled reports whether at least one transport is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && len(d.notifiers) > 0
}

// Send blocks until delivery finishes or times out.
func (d *Dispatcher) Send(ctx context.Context, text string) {
	if !d.Enabled() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("notification_send_failed", zap.String("error", fmt.Sprint(r)))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.notifiers.Send(ctx, "", text); err != nil {
		d.log.Warn("notification_send_failed", zap.Error(err))
	}
}

// Go sends in the background. The delivery is detached from ctx
// cancellation so an alert raised during shutdown still goes out; Wait
// drains pending deliveries.
func (d *Dispatcher) Go(ctx context.Context, text string) {
	if !d.Enabled() {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Send(context.WithoutCancel(ctx), text)
	}()
}

func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
