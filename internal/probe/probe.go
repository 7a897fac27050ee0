package probe

import (
	"context"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// Checker performs a single probe of a target. Implementations never return
// an error: failures are encoded in the outcome.
type Checker interface {
	Check(ctx context.Context, target domain.Target, timeout time.Duration) domain.ProbeOutcome
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, target domain.Target, timeout time.Duration) domain.ProbeOutcome

func (f CheckerFunc) Check(ctx context.Context, target domain.Target, timeout time.Duration) domain.ProbeOutcome {
	return f(ctx, target, timeout)
}
