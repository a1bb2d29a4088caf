// Package shutdown runs the HTTP server and drains it on termination.
//
// The coordinator moves from Running to Draining exactly once, on the first of
// SIGINT, SIGTERM, parent context cancellation or Trigger. Draining closes the
// listener, lets in-flight handlers finish and is bounded by a timeout after
// which remaining connections are force-closed.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDrainTimeout is returned by Run when in-flight requests outlive the drain timeout.
var ErrDrainTimeout = errors.New("drain timeout exceeded")

// State is the coordinator lifecycle state.
type State int32

const (
	// Running accepts new connections.
	Running State = iota
	// Draining refuses new connections and waits for in-flight requests.
	Draining
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Coordinator owns the serve/drain lifecycle of one http.Server.
type Coordinator struct {
	timeout time.Duration
	logger  *zap.Logger
	signals []os.Signal

	state    atomic.Int32
	inFlight atomic.Int64
	once     sync.Once
	draining chan struct{}
}

// New creates a Coordinator with the given drain timeout.
func New(timeout time.Duration, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		timeout:  timeout,
		logger:   logger,
		signals:  []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		draining: make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// InFlight returns the number of requests currently being served.
func (c *Coordinator) InFlight() int64 {
	return c.inFlight.Load()
}

// Trigger starts draining. Calls after the first are no-ops.
func (c *Coordinator) Trigger() {
	c.once.Do(func() {
		c.state.Store(int32(Draining))
		close(c.draining)
	})
}

// Draining is closed once the coordinator leaves Running.
func (c *Coordinator) Draining() <-chan struct{} {
	return c.draining
}

// Track counts in-flight requests.
func (c *Coordinator) Track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.inFlight.Add(1)
		defer c.inFlight.Add(-1)
		next.ServeHTTP(w, r)
	})
}

// Run serves srv on ln until a termination signal, ctx cancellation or
// Trigger, then drains. It returns nil after a clean drain, ErrDrainTimeout
// when the bound elapsed, or the serve error if the server failed first.
// In-flight handler contexts are not cancelled by draining.
func (c *Coordinator) Run(ctx context.Context, srv *http.Server, ln net.Listener) error {
	sigCtx, stop := signal.NotifyContext(ctx, c.signals...)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-c.draining:
		}
		c.Trigger()
		c.logger.Info("Shutdown requested", zap.String("reason", reason(ctx, sigCtx, gctx)))
		return c.drain(srv)
	})

	return g.Wait()
}

func (c *Coordinator) drain(srv *http.Server) error {
	start := time.Now()
	c.logger.Info("Draining in-flight requests",
		zap.Int64("in_flight", c.InFlight()),
		zap.Duration("timeout", c.timeout),
	)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		remaining := c.InFlight()
		_ = srv.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Error("Drain timed out, connections force-closed",
				zap.Int64("in_flight", remaining),
				zap.Duration("elapsed", time.Since(start)),
			)
			return ErrDrainTimeout
		}
		return fmt.Errorf("shutdown: %w", err)
	}

	c.logger.Info("Drain complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func reason(parent, sig, group context.Context) string {
	switch {
	case parent.Err() != nil:
		return "context"
	case sig.Err() != nil:
		return "signal"
	case group.Err() != nil:
		return "serve error"
	default:
		return "trigger"
	}
}
