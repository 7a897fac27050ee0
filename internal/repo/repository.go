package repo

import (
	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// Ports (interfaces) shared by the check loop, the HTTP surface and the
// summary emitters.

// SettingsStore owns the current registry snapshot.
type SettingsStore interface {
	Get() domain.Registry
	// Add appends t and reports true, or reports false without mutating when
	// a target with the same name or url already exists.
	Add(t domain.Target) bool
}

// ResultReader is the read side of the result cache.
type ResultReader interface {
	Latest() map[string]domain.ProbeOutcome
	Get(name string) (domain.ProbeOutcome, bool)
}

// ResultStore is written by the check loop only.
type ResultStore interface {
	ResultReader
	// Record stores outcome for name and returns the previous up/down flag.
	// seen is false when name had no entry yet.
	Record(name string, outcome domain.ProbeOutcome) (prevUp bool, seen bool)
}
