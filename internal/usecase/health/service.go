package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// ErrNotLoaded is reported for a component registered without an implementation.
var ErrNotLoaded = errors.New("component not loaded")

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	checkers map[string]Checker
	timeout  time.Duration
}

// New creates a Service. A nil checker marks its component as failing.
// timeout bounds each individual check; zero means no extra bound.
func New(checkers map[string]Checker, timeout time.Duration) *Service {
	return &Service{checkers: checkers, timeout: timeout}
}

// Names returns the registered component names in sorted order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.checkers))
	for n := range s.checkers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(s.checkers))
	)

	for name, c := range s.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := CheckOK
			if err := s.run(ctx, c); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, c Checker) error {
	if c == nil {
		return ErrNotLoaded
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return c.HealthCheck(ctx)
}
