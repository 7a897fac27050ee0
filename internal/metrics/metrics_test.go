package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

func TestGauges_ObserveAndServe(t *testing.T) {
	g := New()
	api := domain.Target{Name: "api", URL: "https://api.example.com"}
	g.Observe(api, domain.StatusOutcome(api.URL, 200, 120*time.Millisecond, time.Now()))
	web := domain.Target{Name: "web", URL: "https://web.example.com"}
	g.Observe(web, domain.ErrorOutcome(web.URL, "timeout", 3*time.Second, time.Now()))

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`uptime_target_up{name="api",url="https://api.example.com"} 1`,
		`uptime_target_latency_ms{name="api",url="https://api.example.com"} 120`,
		`uptime_target_up{name="web",url="https://web.example.com"} 0`,
		`uptime_target_latency_ms{name="web",url="https://web.example.com"} 3000`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestGauges_NilIsNoop(t *testing.T) {
	var g *Gauges
	g.Observe(domain.Target{Name: "x"}, domain.ProbeOutcome{})
}
