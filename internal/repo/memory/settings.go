package memory

import (
	"sync"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// Settings holds the current registry. The whole value is swapped on Add,
// never edited in place, so a snapshot returned by Get stays valid.
type Settings struct {
	mu  sync.Mutex
	reg domain.Registry
}

func NewSettings(reg domain.Registry) *Settings {
	return &Settings{reg: reg.Clone()}
}

func (s *Settings) Get() domain.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg
}

func (s *Settings) Add(t domain.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.reg.WithTarget(t)
	if !ok {
		return false
	}
	s.reg = next
	return true
}

var _ repo.SettingsStore = (*Settings)(nil)
