// Package browser manages the authoring browser: launch or connect to
// Chrome via Rod, and expose the authoring tab as a page.Page the patch
// pipeline can drive over CDP.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the debugging URL of an already-running Chrome, the
	// usual case during authoring. Empty = launch a local Chrome.
	RemoteURL string

	// Headless applies only to a locally launched Chrome.
	Headless bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager manages the Chrome connection.
type Manager struct {
	cfg  Config
	mu   sync.RWMutex
	b    *rod.Browser
	lnch *launcher.Launcher
}

// NewManager creates a Manager. Call Start to connect.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start connects to (or launches) Chrome.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.cfg.Logger
	var wsURL string

	if m.cfg.RemoteURL != "" {
		u, err := launcher.ResolveURL(m.cfg.RemoteURL)
		if err != nil {
			return fmt.Errorf("browser: resolve remote %s: %w", m.cfg.RemoteURL, err)
		}
		wsURL = u
		log.Info("browser: connecting to remote", "url", m.cfg.RemoteURL)
	} else {
		l := launcher.New().Headless(m.cfg.Headless)
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "headless", m.cfg.Headless)
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("browser: connect: %w", err)
	}
	m.b = b
	return nil
}

// Browser returns the current Rod browser handle. Thread-safe.
func (m *Manager) Browser() *rod.Browser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.b
}

// OpenTab attaches to an existing tab whose URL starts with pageURL, or
// opens a new tab navigated there.
func (m *Manager) OpenTab(ctx context.Context, pageURL string) (*Tab, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("browser: list pages: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, pageURL) {
			m.cfg.Logger.Info("browser: attached to existing tab", "url", info.URL)
			return &Tab{page: p, logger: m.cfg.Logger}, nil
		}
	}

	p, err := b.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	if err := p.Context(ctx).Navigate(pageURL); err != nil {
		p.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := p.Context(ctx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	m.cfg.Logger.Info("browser: opened tab", "url", pageURL)
	return &Tab{page: p, logger: m.cfg.Logger}, nil
}

// Close shuts down the connection and any locally launched Chrome.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.b != nil {
		m.b.Close()
		m.b = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
