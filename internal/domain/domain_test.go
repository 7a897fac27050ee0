package domain

import (
	"errors"
	"testing"
	"time"
)

func TestClassify_StatusBoundaries(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{301, true},
		{399, true},
		{400, false},
		{500, false},
	}
	for _, c := range cases {
		out := StatusOutcome("https://example.com", c.status, 10*time.Millisecond, time.Now())
		if out.OK != c.want {
			t.Fatalf("status %d: ok=%v want %v", c.status, out.OK, c.want)
		}
		if out.Error != nil || out.HTTPStatus == nil || *out.HTTPStatus != c.status {
			t.Fatalf("status %d: inconsistent outcome %+v", c.status, out)
		}
	}
}

func TestErrorOutcome_NeverCarriesStatus(t *testing.T) {
	out := ErrorOutcome("https://example.com", "connection refused", -5*time.Millisecond, time.Now())
	if out.OK || out.HTTPStatus != nil || out.Error == nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.LatencyMS != 0 {
		t.Fatalf("latency should clamp to 0, got %d", out.LatencyMS)
	}
	if out.StatusText() != "None" || out.ErrorText() != "connection refused" {
		t.Fatalf("text helpers: %q %q", out.StatusText(), out.ErrorText())
	}
}

func TestRegistry_WithTarget_RejectsNameOrURLDuplicates(t *testing.T) {
	base := Registry{
		IntervalSeconds: 5,
		TimeoutSeconds:  3,
		Targets:         []Target{{Name: "a", URL: "https://a.example"}},
	}

	next, ok := base.WithTarget(Target{Name: "b", URL: "https://b.example"})
	if !ok || len(next.Targets) != 2 {
		t.Fatalf("expected add to succeed, got ok=%v targets=%v", ok, next.Targets)
	}
	if len(base.Targets) != 1 {
		t.Fatalf("receiver mutated: %v", base.Targets)
	}

	if _, ok := next.WithTarget(Target{Name: "a", URL: "https://other.example"}); ok {
		t.Fatalf("duplicate name accepted")
	}
	if _, ok := next.WithTarget(Target{Name: "other", URL: "https://b.example"}); ok {
		t.Fatalf("duplicate url accepted")
	}
}

func TestRegistry_WithTarget_DoesNotShareBackingArray(t *testing.T) {
	targets := make([]Target, 1, 4)
	targets[0] = Target{Name: "a", URL: "https://a.example"}
	base := Registry{IntervalSeconds: 5, TimeoutSeconds: 3, Targets: targets}

	x, _ := base.WithTarget(Target{Name: "x", URL: "https://x.example"})
	y, _ := base.WithTarget(Target{Name: "y", URL: "https://y.example"})
	if x.Targets[1].Name != "x" || y.Targets[1].Name != "y" {
		t.Fatalf("snapshots aliased: x=%v y=%v", x.Targets, y.Targets)
	}
}

func TestRegistry_Validate(t *testing.T) {
	good := Registry{
		IntervalSeconds: 5,
		TimeoutSeconds:  3,
		Targets:         []Target{{Name: "example", URL: "https://example.com"}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid registry rejected: %v", err)
	}

	bad := Registry{
		IntervalSeconds: 0,
		TimeoutSeconds:  -1,
		Targets: []Target{
			{Name: "a", URL: "https://a.example"},
			{Name: "a", URL: "ftp://a.example"},
			{Name: "", URL: "https://a.example"},
		},
	}
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, ErrDuplicateTarget) {
		t.Fatalf("expected duplicate error in %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://EXAMPLE.com/path", true},
		{"ftp://x", false},
		{"", false},
		{"https://", false},
	}
	for _, c := range cases {
		if got := ValidateURL(c.in) == nil; got != c.want {
			t.Fatalf("ValidateURL(%q) ok=%v want %v", c.in, got, c.want)
		}
	}
}
