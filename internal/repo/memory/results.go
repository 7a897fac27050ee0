package memory

import (
	"sync"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// entry keeps the latest outcome and the up flag used for edge detection
// together so the two can never drift apart.
type entry struct {
	outcome domain.ProbeOutcome
	up      bool
}

// Results is the last-known outcome per target name.
type Results struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewResults() *Results {
	return &Results{entries: make(map[string]entry)}
}

func (m *Results) Record(name string, outcome domain.ProbeOutcome) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, seen := m.entries[name]
	m.entries[name] = entry{outcome: outcome, up: outcome.OK}
	return prev.up, seen
}

func (m *Results) Get(name string) (domain.ProbeOutcome, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	return e.outcome, ok
}

// Latest returns a copy; callers may keep it without holding any lock.
func (m *Results) Latest() map[string]domain.ProbeOutcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.ProbeOutcome, len(m.entries))
	for name, e := range m.entries {
		out[name] = e.outcome
	}
	return out
}

var _ repo.ResultStore = (*Results)(nil)
