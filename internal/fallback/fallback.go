// Package fallback implements the single recovery path for the patch
// pipeline: a full page reload, at most once per failed update cycle.
package fallback

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hazyhaar/livepatch/page"
)

// Controller owns the recovery path. When an original (pre-interception)
// reload entrypoint was captured it is preferred; otherwise the page is
// hard-reloaded.
type Controller struct {
	pg     page.Page
	logger *slog.Logger

	mu       sync.Mutex
	original func(ctx context.Context)
}

// New creates a Controller for the given page.
func New(pg page.Page, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{pg: pg, logger: logger}
}

// SetOriginal stores the reload entrypoint captured during interception.
func (c *Controller) SetOriginal(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.original = fn
	c.mu.Unlock()
}

// NewCycle returns the recovery guard for one update cycle. Trigger on the
// returned Cycle fires at most once, regardless of how many failure
// signals reach it.
func (c *Controller) NewCycle() *Cycle {
	return &Cycle{ctrl: c}
}

// Cycle guards a single update cycle against cascading double reloads.
type Cycle struct {
	ctrl  *Controller
	once  sync.Once
	fired atomic.Bool
}

// Trigger performs the full reload. Subsequent calls in the same cycle
// are no-ops.
func (cy *Cycle) Trigger(ctx context.Context, reason string, err error) {
	cy.once.Do(func() {
		cy.fired.Store(true)
		cy.ctrl.logger.Warn("fallback: full reload", "reason", reason, "error", err)

		cy.ctrl.mu.Lock()
		original := cy.ctrl.original
		cy.ctrl.mu.Unlock()

		if original != nil {
			original(ctx)
			return
		}
		if rerr := cy.ctrl.pg.Reload(ctx); rerr != nil {
			cy.ctrl.logger.Error("fallback: reload failed", "error", rerr)
		}
	})
}

// Fired reports whether this cycle's recovery path has run.
func (cy *Cycle) Fired() bool {
	return cy.fired.Load()
}
