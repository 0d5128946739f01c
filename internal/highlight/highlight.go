// Package highlight gives visual feedback on a patched region: scroll it
// into view, flood it with a highlight colour, and fade the colour out.
// Purely cosmetic: failures are logged, never propagated.
package highlight

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/livepatch/page"
)

// DefaultColor is the highlight flood colour.
const DefaultColor = "#ffff66"

// DefaultDuration is the total fade time.
const DefaultDuration = 5 * time.Second

// DefaultInterval is the fade recomputation step.
const DefaultInterval = 100 * time.Millisecond

// Ticker is the tick source driving a fade. The default implementation
// wraps time.Ticker; tests inject their own.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Config for creating an Animator.
type Config struct {
	Page     page.Page
	Color    string        // hex colour, default DefaultColor
	Duration time.Duration // total fade time, default 5s
	Interval time.Duration // step interval, default 100ms

	// NewTicker overrides the tick source. Nil means time.Ticker.
	NewTicker func(time.Duration) Ticker

	Logger *slog.Logger
}

// Animator runs highlight fades over a Page.
type Animator struct {
	pg        page.Page
	color     Color
	duration  time.Duration
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	logger    *slog.Logger
}

// New creates an Animator from configuration.
func New(cfg Config) *Animator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Color == "" {
		cfg.Color = DefaultColor
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = func(d time.Duration) Ticker {
			return realTicker{t: time.NewTicker(d)}
		}
	}

	color, err := ParseColor(cfg.Color)
	if err != nil {
		cfg.Logger.Warn("highlight: bad colour, using default", "colour", cfg.Color)
		color, _ = ParseColor(DefaultColor)
	}

	return &Animator{
		pg:        cfg.Page,
		color:     color,
		duration:  cfg.Duration,
		interval:  cfg.Interval,
		newTicker: cfg.NewTicker,
		logger:    cfg.Logger,
	}
}

// Handle is a running fade. Cancel stops it and restores the element's
// original styles immediately.
type Handle struct {
	cancel chan struct{}
	once   sync.Once
	done   chan struct{}
}

// Cancel stops the fade early, restoring captured styles.
func (h *Handle) Cancel() {
	h.once.Do(func() { close(h.cancel) })
}

// Done is closed once the fade has finished or been cancelled and the
// original styles are back in place.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start scrolls the element at xpath into view, applies the highlight,
// and begins the fade. The returned Handle is cancellable.
func (a *Animator) Start(ctx context.Context, xpath string) *Handle {
	h := &Handle{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go a.run(ctx, xpath, h)
	return h
}

func (a *Animator) run(ctx context.Context, xpath string, h *Handle) {
	defer close(h.done)

	if err := a.pg.ScrollIntoView(ctx, xpath); err != nil {
		a.logger.Debug("highlight: scroll into view failed", "error", err)
	}

	// Capture the pre-existing inline styles before flooding.
	saved, err := a.pg.ReadStyles(ctx, xpath, "background", "transition")
	if err != nil {
		a.logger.Debug("highlight: read styles failed", "error", err)
		return
	}

	if err := a.pg.WriteStyle(ctx, xpath, "background", a.color.RGBA(1)); err != nil {
		a.logger.Debug("highlight: apply failed", "error", err)
		return
	}

	restore := func() {
		// The fade may be ending precisely because ctx was cancelled; the
		// restore writes still have to reach the page.
		rctx := context.WithoutCancel(ctx)
		a.pg.WriteStyle(rctx, xpath, "background", saved["background"])
		a.pg.WriteStyle(rctx, xpath, "transition", saved["transition"])
	}

	steps := int(a.duration / a.interval)
	if steps < 1 {
		steps = 1
	}

	tick := a.newTicker(a.interval)
	defer tick.Stop()

	remaining := steps
	for {
		select {
		case <-ctx.Done():
			restore()
			return
		case <-h.cancel:
			restore()
			return
		case <-tick.C():
			remaining--
			if remaining <= 0 {
				restore()
				return
			}
			alpha := float64(remaining) / float64(steps)
			if err := a.pg.WriteStyle(ctx, xpath, "background", a.color.RGBA(alpha)); err != nil {
				a.logger.Debug("highlight: fade step failed", "error", err)
				restore()
				return
			}
		}
	}
}
