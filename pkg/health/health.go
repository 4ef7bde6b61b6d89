// Package health serves the /livez and /readyz probe endpoints.
//
// Probes run in the background at a fixed interval and turn unhealthy only
// after three consecutive failures, so one slow database ping does not bounce
// the pod. A single passing run recovers the probe.
package health

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/jx"
)

// failsToUnhealthy is the number of consecutive failures that flips a probe.
const failsToUnhealthy = 3

// ProbeFunc checks one dependency. A nil return means healthy.
type ProbeFunc func(ctx context.Context) error

// probe is one registered check with its rolling state. The run loop writes
// fails and lastErr under mu; the endpoints read them the same way.
type probe struct {
	name    string
	timeout time.Duration
	fn      ProbeFunc

	mu      sync.Mutex
	fails   int
	lastErr error
}

func (p *probe) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err := p.fn(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.fails++
	} else {
		p.fails = 0
	}
}

// status reports whether the probe is healthy and, when it is not, why.
func (p *probe) status() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fails < failsToUnhealthy {
		return true, ""
	}
	if p.lastErr != nil {
		return false, p.lastErr.Error()
	}
	return false, "probe is unhealthy"
}

// Service runs the registered probes and serves their aggregate status.
// Register every probe before calling Start.
type Service struct {
	mu        sync.Mutex
	ready     bool
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns a Service in the not-ready state. Call SetReady(true) once the
// catalog is loaded and the server is listening.
func New() *Service {
	return &Service{}
}

// AddLiveness registers a process-level probe, such as the goroutine count
// or GC pause checks.
func (s *Service) AddLiveness(name string, timeout time.Duration, fn ProbeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &probe{name: name, timeout: timeout, fn: fn})
}

// AddReadiness registers a dependency probe, such as the database ping.
func (s *Service) AddReadiness(name string, timeout time.Duration, fn ProbeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &probe{name: name, timeout: timeout, fn: fn})
}

// Start launches one goroutine per probe, each running at the given interval
// until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := append(slices.Clone(s.liveness), s.readiness...)
	s.mu.Unlock()

	for _, p := range probes {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.run(ctx)
				}
			}
		}()
	}
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. It is lowered first during
// shutdown so the load balancer drains the pod before the listener closes.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// IsReady reports whether the gate is up and every readiness probe passes.
func (s *Service) IsReady() bool {
	s.mu.Lock()
	ready := s.ready
	probes := s.readiness
	s.mu.Unlock()

	if !ready {
		return false
	}
	for _, p := range probes {
		if ok, _ := p.status(); !ok {
			return false
		}
	}
	return true
}

// LiveEndpoint serves GET /livez: 200 when every liveness probe passes, 503
// listing the failing probes otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	probes := slices.Clone(s.liveness)
	s.mu.Unlock()

	writeStatus(w, failures(probes))
}

// ReadyEndpoint serves GET /readyz: 200 only when SetReady(true) has been
// called and every readiness probe passes.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ready := s.ready
	probes := slices.Clone(s.readiness)
	s.mu.Unlock()

	failed := failures(probes)
	if !ready {
		failed = append(failed, failure{name: "_readiness", reason: "service is not ready"})
	}
	writeStatus(w, failed)
}

// failure is one unhealthy probe in a status response.
type failure struct {
	name   string
	reason string
}

func failures(probes []*probe) []failure {
	var failed []failure
	for _, p := range probes {
		if ok, reason := p.status(); !ok {
			failed = append(failed, failure{name: p.name, reason: reason})
		}
	}
	return failed
}

// writeStatus renders {"status":"ok"} or, with failures, 503 and
// {"status":"unhealthy","checks":{name:reason}}.
func writeStatus(w http.ResponseWriter, failed []failure) {
	e := &jx.Encoder{}
	e.Obj(func(e *jx.Encoder) {
		if len(failed) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, f := range failed {
					e.Field(f.name, func(e *jx.Encoder) { e.Str(f.reason) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	if len(failed) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = w.Write(e.Bytes())
}
