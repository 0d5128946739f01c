// Package livepatch keeps an authoring browser tab in sync with a dev
// server without full page reloads. It intercepts the server's reload
// push channel, fetches the regenerated document, locates the smallest
// changed subtree, splices it into the live page, and flashes the
// patched region. Any failure along that path degrades to the plain
// full reload the channel would have done anyway.
package livepatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/livepatch/internal/browser"
	"github.com/hazyhaar/livepatch/internal/config"
	"github.com/hazyhaar/livepatch/internal/fallback"
	"github.com/hazyhaar/livepatch/internal/fetch"
	"github.com/hazyhaar/livepatch/internal/highlight"
	"github.com/hazyhaar/livepatch/internal/patch"
	"github.com/hazyhaar/livepatch/internal/route"
	"github.com/hazyhaar/livepatch/internal/status"
	"github.com/hazyhaar/livepatch/internal/transport"
)

// Agent is the top-level orchestrator. It owns the browser connection,
// the push-channel client, and the patch pipeline. Create one per
// authoring session.
type Agent struct {
	cfg    *config.Config
	mgr    *browser.Manager
	client *transport.Client
	router *route.Router
	state  *status.State
	srv    *status.Server
	logger *slog.Logger
}

// New creates an Agent from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()

	return &Agent{
		cfg: cfg,
		mgr: browser.NewManager(browser.Config{
			RemoteURL: cfg.Browser.Remote,
			Headless:  cfg.Browser.Headless,
			Logger:    logger,
		}),
		state:  status.NewState(cfg.Page),
		logger: logger,
	}
}

// Start connects to the browser and the push channel, installs the
// interceptor, and begins serving the status endpoint. It returns once
// everything is wired; cancel the context to shut the agent down.
func (a *Agent) Start(ctx context.Context) error {
	if a.cfg.Page == "" {
		return fmt.Errorf("livepatch: no page configured")
	}

	if err := a.mgr.Start(ctx); err != nil {
		return fmt.Errorf("livepatch: start browser: %w", err)
	}
	tab, err := a.mgr.OpenTab(ctx, a.cfg.Page)
	if err != nil {
		return fmt.Errorf("livepatch: open tab: %w", err)
	}

	fb := fallback.New(tab, a.logger)
	a.router = route.New(route.Config{
		Page:    tab,
		Fetcher: fetch.New(fetch.WithLogger(a.logger)),
		Patcher: patch.New(tab, a.logger),
		Highlighter: highlight.New(highlight.Config{
			Page:     tab,
			Color:    a.cfg.Highlight.Color,
			Duration: a.cfg.Highlight.Duration,
			Interval: a.cfg.Highlight.Interval,
			Logger:   a.logger,
		}),
		Fallback: fb,
		Recorder: a.state,
		Logger:   a.logger,
	})
	a.router.Start(ctx)

	a.client = transport.NewClient(transport.ClientConfig{
		URL:        a.cfg.Server.URL,
		Page:       tab,
		RetryDelay: a.cfg.Server.RetryDelay,
		Logger:     a.logger,
	})
	go func() {
		if err := a.client.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("livepatch: channel client stopped", "error", err)
		}
	}()
	go a.trackConnection(ctx)

	interceptor := transport.NewInterceptor(a.client, a.router.Dispatch, a.logger)
	original, err := interceptor.Install(ctx, 500*time.Millisecond, 60)
	if err != nil {
		return fmt.Errorf("livepatch: install interceptor: %w", err)
	}
	pagePath := a.cfg.Page
	fb.SetOriginal(func(ctx context.Context) {
		original(ctx, pagePath)
	})

	a.srv = status.NewServer(a.cfg.Status.Listen, a.state, a.logger)
	go func() {
		if err := a.srv.Start(); err != nil {
			a.logger.Error("livepatch: status server stopped", "error", err)
		}
	}()

	a.logger.Info("livepatch: running",
		"page", a.cfg.Page, "server", a.cfg.Server.URL, "status", a.cfg.Status.Listen)
	return nil
}

// trackConnection mirrors the channel's connection state into the
// status report.
func (a *Agent) trackConnection(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.state.SetConnected(a.client.Connected())
		}
	}
}

// Stop releases the status listener and the browser connection.
func (a *Agent) Stop() {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Warn("livepatch: status shutdown", "error", err)
		}
	}
	if err := a.mgr.Close(); err != nil {
		a.logger.Warn("livepatch: browser close", "error", err)
	}
}
