package domain

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/multierr"
)

// ErrDuplicateTarget is returned when a target shares a name or url with an
// existing one.
var ErrDuplicateTarget = errors.New("target already exists")

type Target struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Conflicts reports whether t and o would collide inside one registry.
func (t Target) Conflicts(o Target) bool {
	return t.Name == o.Name || t.URL == o.URL
}

// Registry is an immutable snapshot of what to probe and how often.
// Mutations go through WithTarget, which returns a new value.
type Registry struct {
	IntervalSeconds int      `json:"interval_seconds" yaml:"interval_seconds"`
	TimeoutSeconds  int      `json:"timeout_seconds" yaml:"timeout_seconds"`
	Targets         []Target `json:"targets" yaml:"targets"`
}

func (r Registry) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

func (r Registry) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Clone returns a copy that shares no backing array with r.
func (r Registry) Clone() Registry {
	out := r
	out.Targets = make([]Target, len(r.Targets))
	copy(out.Targets, r.Targets)
	return out
}

// Find returns the first target conflicting with t.
func (r Registry) Find(t Target) (Target, bool) {
	for _, cur := range r.Targets {
		if cur.Conflicts(t) {
			return cur, true
		}
	}
	return Target{}, false
}

// WithTarget returns a new registry with t appended. The receiver is left
// untouched. ok is false when t conflicts with an existing target.
func (r Registry) WithTarget(t Target) (Registry, bool) {
	if _, dup := r.Find(t); dup {
		return r, false
	}
	out := r
	out.Targets = make([]Target, 0, len(r.Targets)+1)
	out.Targets = append(out.Targets, r.Targets...)
	out.Targets = append(out.Targets, t)
	return out, true
}

// Validate reports every problem found in the registry at once.
func (r Registry) Validate() error {
	var err error
	if r.IntervalSeconds <= 0 {
		err = multierr.Append(err, fmt.Errorf("interval_seconds must be positive, got %d", r.IntervalSeconds))
	}
	if r.TimeoutSeconds <= 0 {
		err = multierr.Append(err, fmt.Errorf("timeout_seconds must be positive, got %d", r.TimeoutSeconds))
	}

	names := make(map[string]struct{}, len(r.Targets))
	urls := make(map[string]struct{}, len(r.Targets))
	for i, t := range r.Targets {
		if t.Name == "" {
			err = multierr.Append(err, fmt.Errorf("targets[%d]: name is required", i))
		}
		if verr := ValidateURL(t.URL); verr != nil {
			err = multierr.Append(err, fmt.Errorf("targets[%d] (%s): %w", i, t.Name, verr))
		}
		if _, dup := names[t.Name]; dup && t.Name != "" {
			err = multierr.Append(err, fmt.Errorf("targets[%d]: duplicate name %q: %w", i, t.Name, ErrDuplicateTarget))
		}
		if _, dup := urls[t.URL]; dup && t.URL != "" {
			err = multierr.Append(err, fmt.Errorf("targets[%d]: duplicate url %q: %w", i, t.URL, ErrDuplicateTarget))
		}
		names[t.Name] = struct{}{}
		urls[t.URL] = struct{}{}
	}
	return err
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url has no host")
	}
	return nil
}
