package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// maxDrain bounds how much of a response body is read so the connection can
// be reused.
const maxDrain = 64 << 10

var UserAgent = "uptimemonitor/dev"

type HTTPChecker struct {
	Client *http.Client
	now    func() time.Time
}

// NewHTTPChecker returns a checker whose client follows redirects (net/http
// default policy). Timeouts are applied per call.
func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{},
		now:    time.Now,
	}
}

// Check issues one GET against target.URL bounded by timeout. There are no
// retries.
func (h *HTTPChecker) Check(ctx context.Context, target domain.Target, timeout time.Duration) domain.ProbeOutcome {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := h.now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return domain.ErrorOutcome(target.URL, err.Error(), h.now().Sub(start), h.now().UTC())
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := h.Client.Do(req)
	if err != nil {
		end := h.now()
		return domain.ErrorOutcome(target.URL, err.Error(), end.Sub(start), end.UTC())
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))

	end := h.now()
	return domain.StatusOutcome(target.URL, resp.StatusCode, end.Sub(start), end.UTC())
}

var _ Checker = (*HTTPChecker)(nil)
