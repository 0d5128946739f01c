// Package route classifies reload commands and drives the patch
// pipeline: resolve → fetch → diff → patch → highlight, with the
// fallback controller as the escape hatch at every failure point.
package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/livepatch/dom"
	"github.com/hazyhaar/livepatch/internal/fallback"
	"github.com/hazyhaar/livepatch/internal/fetch"
	"github.com/hazyhaar/livepatch/internal/highlight"
	"github.com/hazyhaar/livepatch/internal/patch"
	"github.com/hazyhaar/livepatch/page"
)

// ErrNoLocus marks an update request whose fetched document is identical
// to the live one. Treated as an anomaly, not a success: the update was
// explicitly requested, so the fallback path runs.
var ErrNoLocus = errors.New("route: no change locus")

// ReloadCommand is one decoded reload request, consumed once.
type ReloadCommand struct {
	Path       string
	Navigation bool   // the path carried the navigation hint
	Raw        []byte // opaque original payload
}

// CycleRecord summarises one completed update cycle for diagnostics.
type CycleRecord struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Outcome    string    `json:"outcome"` // patched | navigated | fallback
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Recorder receives cycle records. Implemented by the status endpoint.
type Recorder interface {
	Record(CycleRecord)
}

// Config for creating a Router.
type Config struct {
	Page        page.Page
	Fetcher     *fetch.Fetcher
	Patcher     *patch.Applier
	Highlighter *highlight.Animator
	Fallback    *fallback.Controller
	Recorder    Recorder // optional
	Logger      *slog.Logger
}

// Router serialises update cycles. Commands arriving while a cycle is in
// flight coalesce: only the latest pending command runs afterwards.
type Router struct {
	cfg    Config
	logger *slog.Logger

	cmds chan ReloadCommand

	mu            sync.Mutex
	lastHighlight *highlight.Handle
}

// New creates a Router from configuration. Call Start to begin
// processing dispatched commands.
func New(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Router{
		cfg:    cfg,
		logger: cfg.Logger,
		cmds:   make(chan ReloadCommand, 1),
	}
}

// Start runs the worker loop until the context is cancelled.
func (r *Router) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-r.cmds:
				r.run(ctx, cmd)
			}
		}
	}()
}

// Dispatch enqueues a reload command, latest-wins: if a command is
// already queued behind an in-flight cycle it is replaced.
func (r *Router) Dispatch(ctx context.Context, path string, raw []byte) {
	cmd := ReloadCommand{Path: path, Raw: raw}
	if strings.HasPrefix(path, NavigationHint) {
		cmd.Navigation = true
		cmd.Path = strings.TrimPrefix(path, NavigationHint)
	}

	for {
		select {
		case r.cmds <- cmd:
			return
		default:
		}
		// Queue full: drop the stale pending command and retry.
		select {
		case stale := <-r.cmds:
			r.logger.Debug("route: superseding pending command", "path", stale.Path)
		default:
		}
	}
}

// run executes one routing decision to completion.
func (r *Router) run(ctx context.Context, cmd ReloadCommand) {
	rec := CycleRecord{ID: uuid.NewString(), Path: cmd.Path, StartedAt: time.Now()}
	defer func() {
		rec.FinishedAt = time.Now()
		if r.cfg.Recorder != nil {
			r.cfg.Recorder.Record(rec)
		}
	}()

	cycle := r.cfg.Fallback.NewCycle()

	loc, err := r.cfg.Page.Location(ctx)
	if err != nil {
		rec.Outcome, rec.Error = "fallback", err.Error()
		cycle.Trigger(ctx, "location", err)
		return
	}

	target, err := Resolve(cmd.Path, loc)
	if err != nil {
		rec.Outcome, rec.Error = "fallback", err.Error()
		cycle.Trigger(ctx, "resolve", err)
		return
	}

	// The navigation hint bypasses same-page detection entirely.
	if cmd.Navigation || !SamePage(loc, target) {
		r.logger.Info("route: navigating", "url", target.String(), "hint", cmd.Navigation)
		if err := r.cfg.Page.Navigate(ctx, target.String()); err != nil {
			rec.Outcome, rec.Error = "fallback", err.Error()
			cycle.Trigger(ctx, "navigate", err)
			return
		}
		rec.Outcome = "navigated"
		return
	}

	if err := r.patchCycle(ctx, target.String(), cycle); err != nil {
		rec.Outcome, rec.Error = "fallback", err.Error()
		return
	}
	rec.Outcome = "patched"
}

// patchCycle runs fetch → diff → patch → highlight strictly in sequence.
// Every failure funnels exactly once to the cycle's fallback guard; the
// returned error is for the record only.
func (r *Router) patchCycle(ctx context.Context, target string, cycle *fallback.Cycle) error {
	res, err := r.cfg.Fetcher.Fetch(ctx, target)
	if err != nil {
		r.logger.Warn("route: fetch failed", "url", target, "error", err)
		cycle.Trigger(ctx, "fetch", err)
		return err
	}

	raw, err := r.cfg.Page.HTML(ctx)
	if err != nil {
		cycle.Trigger(ctx, "read live document", err)
		return err
	}
	live, err := dom.Parse(raw)
	if err != nil {
		cycle.Trigger(ctx, "parse live document", err)
		return err
	}

	locus, ok := dom.Diff(dom.Body(live), dom.Body(res.Doc))
	if !ok {
		// Nothing to patch although an update was requested.
		err := fmt.Errorf("%w: %s", ErrNoLocus, target)
		cycle.Trigger(ctx, "diff", err)
		return err
	}

	// A fresh patch supersedes any in-flight highlight fade. Wait for its
	// restore to land so the stale fade cannot stomp the new flood.
	r.mu.Lock()
	last := r.lastHighlight
	r.lastHighlight = nil
	r.mu.Unlock()
	if last != nil {
		last.Cancel()
		<-last.Done()
	}

	xpath, err := r.cfg.Patcher.Apply(ctx, locus)
	if err != nil {
		r.logger.Warn("route: patch failed", "error", err)
		cycle.Trigger(ctx, "patch", err)
		return err
	}

	h := r.cfg.Highlighter.Start(ctx, xpath)
	r.mu.Lock()
	r.lastHighlight = h
	r.mu.Unlock()

	r.logger.Info("route: patched", "url", target, "xpath", xpath)
	return nil
}
