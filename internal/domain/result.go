package domain

import (
	"strconv"
	"time"
)

// ProbeOutcome is the result of one probe attempt. Exactly one of HTTPStatus
// and Error is set: the request either completed with a status or failed in
// transport.
type ProbeOutcome struct {
	URL        string    `json:"url"`
	OK         bool      `json:"ok"`
	HTTPStatus *int      `json:"http_status"` // nil on transport error
	LatencyMS  int64     `json:"latency_ms"`
	Error      *string   `json:"error"` // nil when a status was received
	ObservedAt time.Time `json:"observed_at"`
}

// Classify maps a received status code to up/down.
func Classify(status int) bool {
	return status >= 200 && status < 400
}

func StatusOutcome(url string, status int, latency time.Duration, at time.Time) ProbeOutcome {
	s := status
	return ProbeOutcome{
		URL:        url,
		OK:         Classify(status),
		HTTPStatus: &s,
		LatencyMS:  latencyMS(latency),
		ObservedAt: at,
	}
}

func ErrorOutcome(url string, reason string, latency time.Duration, at time.Time) ProbeOutcome {
	r := reason
	return ProbeOutcome{
		URL:        url,
		OK:         false,
		Error:      &r,
		LatencyMS:  latencyMS(latency),
		ObservedAt: at,
	}
}

// TransportFailed reports whether the probe never got a status back.
func (o ProbeOutcome) TransportFailed() bool {
	return o.Error != nil
}

// StatusText renders the status code, or "None" after a transport error.
func (o ProbeOutcome) StatusText() string {
	if o.HTTPStatus == nil {
		return "None"
	}
	return strconv.Itoa(*o.HTTPStatus)
}

func (o ProbeOutcome) ErrorText() string {
	if o.Error == nil {
		return "None"
	}
	return *o.Error
}

func latencyMS(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
