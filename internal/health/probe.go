package health

import (
	"context"
	"sync/atomic"

	"github.com/northpier/northpier-web/internal/xerrors"
)

// Probe is evaluated at request time.
// nil = OK, non-nil = FAIL with reason.
type Probe interface{ Check(context.Context) error }

// CheckFunc adapts a function into a Probe.
type CheckFunc func(context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Fixed returns a probe that always passes, or always fails with the given
// reason.
func Fixed(ok bool, reason string) CheckFunc {
	if ok {
		return func(context.Context) error { return nil }
	}
	if reason == "" {
		reason = "unhealthy"
	}
	return func(context.Context) error { return xerrors.New(reason) }
}

// All is AND: passes only if all probes pass; returns the first error.
func All(ps ...Probe) CheckFunc {
	return func(ctx context.Context) error {
		for _, p := range ps {
			if p == nil {
				continue
			}
			if err := p.Check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// Any is OR: passes if at least one probe passes; returns the last error
// when none do.
func Any(ps ...Probe) CheckFunc {
	return func(ctx context.Context) error {
		var last error
		saw := false
		for _, p := range ps {
			if p == nil {
				continue
			}
			saw = true
			if err := p.Check(ctx); err == nil {
				return nil
			} else {
				last = err
			}
		}
		if !saw {
			return nil
		}
		return last
	}
}

// ShutdownGate flips readiness to failing once shutdown begins so the load
// balancer drains traffic before the listener closes. Zero value is open.
type ShutdownGate struct {
	closed atomic.Bool
	reason atomic.Value // string
}

// Set closes the gate with a reason; subsequent probe checks fail.
func (g *ShutdownGate) Set(reason string) {
	if reason == "" {
		reason = "shutting down"
	}
	g.reason.Store(reason)
	g.closed.Store(true)
}

// Clear reopens the gate.
func (g *ShutdownGate) Clear() {
	g.closed.Store(false)
}

// Probe returns a CheckFunc view of the gate.
func (g *ShutdownGate) Probe() CheckFunc {
	return func(context.Context) error {
		if !g.closed.Load() {
			return nil
		}
		reason, _ := g.reason.Load().(string)
		if reason == "" {
			reason = "shutting down"
		}
		return xerrors.New(reason)
	}
}
