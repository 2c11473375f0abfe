// Package health serves liveness, readiness, loop status and metrics while
// the vote loop runs.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/boatrace-vote/internal/metrics"
)

const (
	defaultPort  = 8080
	checkTimeout = 3 * time.Second
	statusOK     = "ok"
	statusDown   = "not_ready"
)

// CheckFunc reports whether a dependency is reachable
type CheckFunc func(ctx context.Context) error

// CycleStatus is the outcome of the latest loop cycle
type CycleStatus struct {
	RunID string    `json:"run_id"`
	At    time.Time `json:"at"`
	// Clock is the evaluation time, which differs from At on replays
	Clock     time.Time `json:"clock"`
	Vote      string    `json:"vote,omitempty"`
	Payoff    string    `json:"payoff,omitempty"`
	Remaining int       `json:"remaining"`
	Error     string    `json:"error,omitempty"`
}

// LivenessResponse is served on /health and /live
type LivenessResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Commit  string `json:"commit,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// ReadinessResponse is served on /ready
type ReadinessResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Duration string            `json:"duration"`
}

// StatusResponse is served on /status
type StatusResponse struct {
	Service   string       `json:"service"`
	Ready     bool         `json:"ready"`
	Cycles    int          `json:"cycles"`
	LastCycle *CycleStatus `json:"last_cycle,omitempty"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        int
	// MetricsPath serves the metrics registry when set.
	MetricsPath string
	// StaleAfter fails readiness when no cycle finished for that long. Zero
	// disables the check.
	StaleAfter time.Duration
	Logger     *logrus.Logger
	Checks     map[string]CheckFunc
}

// Server exposes the loop's state over HTTP
type Server struct {
	cfg     Config
	started time.Time
	clock   func() time.Time
	http    *http.Server

	mu     sync.RWMutex
	ready  bool
	cycles int
	last   *CycleStatus
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, started: time.Now(), clock: time.Now}
}

// SetReady marks the loop as accepting work
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// ObserveCycle records the latest loop cycle
func (s *Server) ObserveCycle(status CycleStatus) {
	s.mu.Lock()
	s.cycles++
	s.last = &status
	s.mu.Unlock()
}

func (s *Server) snapshot() StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := StatusResponse{Service: s.cfg.ServiceName, Ready: s.ready, Cycles: s.cycles}
	if s.last != nil {
		last := *s.last
		resp.LastCycle = &last
	}
	return resp
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.liveness)
	mux.HandleFunc("/live", s.liveness)
	mux.HandleFunc("/ready", s.readiness)
	mux.HandleFunc("/status", s.status)
	if s.cfg.MetricsPath != "" {
		mux.Handle(s.cfg.MetricsPath, metrics.Handler())
	}
	return mux
}

// Start listens in the background until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	log := s.cfg.Logger.WithField("port", s.cfg.Port)
	go func() {
		log.Info("Health server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Health server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			log.WithError(err).Warn("Health server shutdown failed")
		}
	}()
	return nil
}

// Shutdown stops the listener, waiting up to five seconds for open requests
func (s *Server) Shutdown() error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  statusOK,
		Service: s.cfg.ServiceName,
		Version: s.cfg.Version,
		Commit:  s.cfg.Commit,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap := s.snapshot()
	checks := map[string]string{"loop": statusOK}
	healthy := true

	switch {
	case !snap.Ready:
		checks["loop"] = statusDown
		healthy = false
	case s.stale(snap.LastCycle):
		checks["loop"] = fmt.Sprintf("stale: no cycle since %s", snap.LastCycle.At.Format(time.RFC3339))
		healthy = false
	}

	names := make([]string, 0, len(s.cfg.Checks))
	for name := range s.cfg.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()
	for _, name := range names {
		checks[name] = statusOK
		if err := s.cfg.Checks[name](ctx); err != nil {
			checks[name] = "error: " + err.Error()
			healthy = false
		}
	}

	resp := ReadinessResponse{Status: statusOK, Checks: checks, Duration: time.Since(start).String()}
	code := http.StatusOK
	if !healthy {
		resp.Status = statusDown
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// stale is false before the first cycle so a slow first cycle does not flap
func (s *Server) stale(last *CycleStatus) bool {
	if s.cfg.StaleAfter <= 0 || last == nil {
		return false
	}
	return s.clock().Sub(last.At) > s.cfg.StaleAfter
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
