// Package yamlfile loads and saves the target registry as YAML.
package yamlfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// ErrEmpty is returned for a file with no YAML document in it.
var ErrEmpty = errors.New("config is empty")

const (
	DefaultIntervalSeconds = 5
	DefaultTimeoutSeconds  = 3
)

// file mirrors the on-disk shape. Pointers tell a missing key from zero.
type file struct {
	IntervalSeconds *int            `yaml:"interval_seconds"`
	TimeoutSeconds  *int            `yaml:"timeout_seconds"`
	Targets         []domain.Target `yaml:"targets"`
}

// Load reads and validates the registry at path. A registry is only returned
// when it is fully valid.
func Load(path string) (domain.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("read config %q: %w", path, err)
	}
	reg, err := Decode(raw)
	if err != nil {
		return domain.Registry{}, fmt.Errorf("config %q: %w", path, err)
	}
	return reg, nil
}

// Decode parses YAML bytes into a validated registry.
func Decode(raw []byte) (domain.Registry, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Registry{}, ErrEmpty
		}
		return domain.Registry{}, fmt.Errorf("parse yaml: %w", err)
	}

	reg := domain.Registry{
		IntervalSeconds: DefaultIntervalSeconds,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		Targets:         f.Targets,
	}
	if f.IntervalSeconds != nil {
		reg.IntervalSeconds = *f.IntervalSeconds
	}
	if f.TimeoutSeconds != nil {
		reg.TimeoutSeconds = *f.TimeoutSeconds
	}
	if reg.Targets == nil {
		reg.Targets = []domain.Target{}
	}
	if err := reg.Validate(); err != nil {
		return domain.Registry{}, fmt.Errorf("invalid registry: %w", err)
	}
	return reg, nil
}

// Encode renders reg with keys in the order interval_seconds,
// timeout_seconds, targets.
func Encode(reg domain.Registry) ([]byte, error) {
	targets := reg.Targets
	if targets == nil {
		targets = []domain.Target{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(domain.Registry{
		IntervalSeconds: reg.IntervalSeconds,
		TimeoutSeconds:  reg.TimeoutSeconds,
		Targets:         targets,
	})
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes reg to path via a temp file and rename, so a crash never
// leaves a half-written config behind.
func Save(path string, reg domain.Registry) error {
	out, err := Encode(reg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".targets-*.yml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %q: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}
