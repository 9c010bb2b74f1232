package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/nullsam/qr-menu/internal/domain"
)

// State of the resolver's long-lived machine:
// Idle -> Resolving -> {Active | Unresolved | Failed}, re-entering Resolving
// on any activation with a different theme. There is no terminal state.
type State string

const (
	StateIdle       State = "idle"
	StateResolving  State = "resolving"
	StateActive     State = "active"
	StateUnresolved State = "unresolved" // theme has no registered template
	StateFailed     State = "failed"     // loader errored
)

// Snapshot is an atomic view of the resolver. Unit is non-nil only in
// StateActive; Err is non-nil only in StateFailed.
type Snapshot struct {
	State State
	Theme string
	Unit  TemplateUnit
	Err   error
}

// Resolver activates exactly one TemplateUnit at a time for a page session.
// Activations are sequenced with a monotonic token: when two activations
// overlap, only the newest one's result is installed, regardless of
// completion order. There is no hard cancellation of an in-flight load;
// staleness is detected at completion time and the result discarded.
type Resolver struct {
	registry *Registry

	// onSettle, when set, observes every settled resolution with an outcome
	// label (active|unresolved|failed|superseded).
	onSettle func(theme, outcome string)

	mu      sync.Mutex
	seq     uint64
	snap    Snapshot
	settled chan struct{} // closed when the activation owning it settles
}

func NewResolver(reg *Registry) *Resolver {
	done := make(chan struct{})
	close(done) // Idle counts as settled
	return &Resolver{
		registry: reg,
		snap:     Snapshot{State: StateIdle},
		settled:  done,
	}
}

// OnSettle installs an observer for resolution outcomes. Must be called
// before the first Activate.
func (r *Resolver) OnSettle(fn func(theme, outcome string)) { r.onSettle = fn }

// Snapshot returns the current state atomically.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Activate resolves the business's theme and, when a loader is registered,
// loads the unit asynchronously. A repeat call for the theme already active
// or resolving is a no-op. Unknown themes settle to Unresolved immediately
// without invoking any loader.
func (r *Resolver) Activate(ctx context.Context, b domain.Business) {
	theme := canonical(b.Theme)

	r.mu.Lock()
	if r.snap.Theme == theme && (r.snap.State == StateActive || r.snap.State == StateResolving) {
		r.mu.Unlock()
		return
	}

	r.seq++
	token := r.seq

	loader, err := r.registry.Resolve(theme)
	if err != nil {
		r.snap = Snapshot{State: StateUnresolved, Theme: theme}
		done := make(chan struct{})
		close(done)
		r.settled = done
		r.mu.Unlock()
		r.settle(theme, "unresolved")
		return
	}

	done := make(chan struct{})
	r.snap = Snapshot{State: StateResolving, Theme: theme}
	r.settled = done
	r.mu.Unlock()

	go func() {
		unit, lerr := loader(ctx)

		r.mu.Lock()
		if token != r.seq {
			// a newer activation owns the state now; wake any waiters still
			// parked on this activation so they observe the newer snapshot
			close(done)
			r.mu.Unlock()
			r.settle(theme, "superseded")
			return
		}
		if lerr != nil {
			r.snap = Snapshot{
				State: StateFailed,
				Theme: theme,
				Err:   fmt.Errorf("%w: %s: %v", domain.ErrTemplateLoadFailed, theme, lerr),
			}
			close(done)
			r.mu.Unlock()
			r.settle(theme, "failed")
			return
		}
		r.snap = Snapshot{State: StateActive, Theme: theme, Unit: unit}
		close(done)
		r.mu.Unlock()
		r.settle(theme, "active")
	}()
}

// Wait blocks until the activation current at call time settles or ctx
// expires. It returns the snapshot either way; on timeout the caller sees
// StateResolving and may render its own failure fallback. The resolver itself
// imposes no timeout.
func (r *Resolver) Wait(ctx context.Context) Snapshot {
	r.mu.Lock()
	done := r.settled
	r.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
	}
	return r.Snapshot()
}

func (r *Resolver) settle(theme, outcome string) {
	if r.onSettle != nil {
		r.onSettle(theme, outcome)
	}
}
