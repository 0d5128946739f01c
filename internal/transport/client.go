package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hazyhaar/livepatch/page"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// URL is the dev server's websocket endpoint,
	// e.g. ws://localhost:1313/livereload.
	URL string

	// Page receives the default full reload when the stock protocol asks
	// for one and nobody has hijacked the entrypoint.
	Page page.Page

	// RetryDelay between reconnect attempts. Default 2s.
	RetryDelay time.Duration

	Logger *slog.Logger
}

// Client is a LiveReload-style websocket client. Its default behaviour is
// indistinguishable from a stock client: a reload command triggers a full
// page reload. Both the message handler and the reload entrypoint can be
// swapped out, with the previous values retained.
type Client struct {
	cfg    ClientConfig
	logger *slog.Logger

	handler atomic.Value // Handler
	reload  atomic.Value // ReloadFunc

	ready     chan struct{}
	readyOnce sync.Once
	connected atomic.Bool
}

// NewClient creates a Client. Call Run to connect and process frames.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	c := &Client{
		cfg:    cfg,
		logger: cfg.Logger,
		ready:  make(chan struct{}),
	}
	c.handler.Store(Handler(c.defaultHandle))
	c.reload.Store(ReloadFunc(c.defaultReload))
	return c
}

// Intercept installs h as the message handler, returning the previous one.
func (c *Client) Intercept(h Handler) Handler {
	prev := c.handler.Swap(h)
	return prev.(Handler)
}

// HijackReload replaces the reload entrypoint, returning the original.
func (c *Client) HijackReload(fn ReloadFunc) ReloadFunc {
	prev := c.reload.Swap(fn)
	return prev.(ReloadFunc)
}

// Ready is closed after the server's hello completes the handshake.
func (c *Client) Ready() <-chan struct{} {
	return c.ready
}

// Connected reports whether a websocket connection is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Run connects to the dev server and processes frames until the context
// is cancelled, reconnecting after connection loss. Dev servers restart
// often; losing one connection is routine, not fatal.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.runConn(ctx); err != nil {
			c.logger.Warn("transport: connection ended", "url", c.cfg.URL, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RetryDelay):
		}
	}
}

func (c *Client) runConn(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", c.cfg.URL, err)
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	hello := map[string]any{
		"command":   CommandHello,
		"protocols": []string{"http://livereload.com/protocols/official-7"},
		"client":    "livepatch",
	}
	if err := conn.WriteJSON(hello); err != nil {
		return fmt.Errorf("transport: hello: %w", err)
	}

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.logger.Info("transport: connected", "url", c.cfg.URL)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("transport: read: %w", err)
		}
		h := c.handler.Load().(Handler)
		h(ctx, raw)
	}
}

// defaultHandle implements the stock protocol behaviour.
func (c *Client) defaultHandle(ctx context.Context, raw []byte) {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		c.logger.Debug("transport: undecodable frame", "error", err)
		return
	}

	switch cmd.Command {
	case CommandHello:
		c.readyOnce.Do(func() { close(c.ready) })
		c.logger.Debug("transport: handshake complete")
	case CommandReload:
		fn := c.reload.Load().(ReloadFunc)
		fn(ctx, cmd.Path)
	case CommandAlert:
		c.logger.Warn("transport: server alert", "message", cmd.Message)
	default:
		c.logger.Debug("transport: ignoring command", "command", cmd.Command)
	}
}

// defaultReload is the stock reload entrypoint: a full page reload.
func (c *Client) defaultReload(ctx context.Context, path string) {
	c.logger.Info("transport: full reload", "path", path)
	if c.cfg.Page == nil {
		return
	}
	if err := c.cfg.Page.Reload(ctx); err != nil {
		c.logger.Error("transport: reload failed", "error", err)
	}
}
