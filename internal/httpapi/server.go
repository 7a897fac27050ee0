package httpapi

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	apimw "github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// Diagnoser explains a failed probe at the DNS level.
type Diagnoser interface {
	DiagnoseURL(ctx context.Context, rawURL string) probe.DNSStatus
}

type Server struct {
	Logger   *zap.Logger
	Settings repo.SettingsStore
	Results  repo.ResultReader
	Checker  probe.Checker
	DNS      Diagnoser
	Metrics  http.Handler
}

func NewServer(l *zap.Logger, settings repo.SettingsStore, results repo.ResultReader, c probe.Checker, dns Diagnoser, metrics http.Handler) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Settings: settings, Results: results, Checker: c, DNS: dns, Metrics: metrics}
}

type Options struct {
	Keys           apimw.Keys
	AllowedOrigins []string // empty allows any origin
	PublicRPM      int
	AdminRPM       int
}

func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(opts.AllowedOrigins))
	r.Use(gziphandler.GzipHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/results", s.handleResults)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.With(
			apimw.RateLimit(opts.PublicRPM),
			apimw.RequireAny(opts.Keys),
		).Get("/targets", s.handleListTargets)

		api.With(
			apimw.RateLimit(opts.AdminRPM),
			apimw.RequireAdmin(opts.Keys),
		).Post("/targets", s.handleAddTarget)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Results.Latest())
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Settings.Get())
}

type addPayload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type addResponse struct {
	Target domain.Target       `json:"target"`
	Probe  domain.ProbeOutcome `json:"probe"`
	DNS    *probe.DNSStatus    `json:"dns,omitempty"`
}

func (s *Server) handleAddTarget(w http.ResponseWriter, r *http.Request) {
	var p addPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	t := domain.Target{Name: strings.TrimSpace(p.Name), URL: strings.TrimSpace(p.URL)}
	if t.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := domain.ValidateURL(t.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.Settings.Add(t) {
		writeError(w, http.StatusConflict, domain.ErrDuplicateTarget.Error())
		return
	}

	// One-off diagnostic probe. The check loop owns the Result Cache, so the
	// outcome is only reported back to the caller.
	out := s.Checker.Check(r.Context(), t, s.Settings.Get().Timeout())
	resp := addResponse{Target: t, Probe: out}
	if !out.OK && s.DNS != nil {
		dns := s.DNS.DiagnoseURL(r.Context(), t.URL)
		resp.DNS = &dns
		s.Logger.Info("dns_check",
			zap.String("domain", dns.Domain),
			zap.String("class", dns.Class),
			zap.Strings("nameservers", dns.Nameservers),
			zap.String("cname", dns.CNAME),
			zap.String("resolver_error", dns.ResolverError),
		)
	}

	s.Logger.Info("added_target",
		zap.String("target", t.Name),
		zap.String("url", t.URL),
		zap.Bool("ok", out.OK),
		zap.Int64("latency_ms", out.LatencyMS),
	)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

