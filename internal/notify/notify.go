package notify

import (
	"context"

	"go.uber.org/multierr"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Toggler is implemented by transports that can be configured off.
type Toggler interface {
	Enabled() bool
}

// Multi delivers to every notifier and reports all failures together.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if !isEnabled(n) {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

func isEnabled(n Notifier) bool {
	if n == nil {
		return false
	}
	if t, ok := n.(Toggler); ok {
		return t.Enabled()
	}
	return true
}

func compose(title, text string) string {
	if title == "" {
		return text
	}
	return title + "\n" + text
}
