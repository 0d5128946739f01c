// Package transport connects to the dev server's push-notification
// channel and exposes it as an explicit capability: install a message
// handler keeping the previous one for pass-through, and override the
// reload entrypoint keeping the original callable.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrNotReady is returned when a channel never became ready in time.
var ErrNotReady = errors.New("transport: channel not ready")

// Handler consumes one raw frame from the notification channel.
type Handler func(ctx context.Context, raw []byte)

// ReloadFunc is a reload entrypoint. path may be empty for a plain
// full reload of the current page.
type ReloadFunc func(ctx context.Context, path string)

// Channel is the transport capability the interceptor depends on.
type Channel interface {
	// Intercept installs h as the message handler and returns the
	// previously installed one so h can pass unrecognised frames through.
	Intercept(h Handler) (prev Handler)

	// HijackReload replaces the channel's reload entrypoint and returns
	// the original, which stays callable for fallback use.
	HijackReload(fn ReloadFunc) (original ReloadFunc)

	// Ready is closed once the channel is established. May return nil if
	// the implementation has no readiness signal; see AwaitReady.
	Ready() <-chan struct{}
}

// Prober is implemented by channels that can be polled for readiness
// when no readiness signal is available.
type Prober interface {
	Connected() bool
}

// AwaitReady waits for the channel to become ready. The readiness signal
// is the primary contract; bounded polling at a fixed interval is the
// fallback for channels that only expose a probe.
func AwaitReady(ctx context.Context, ch Channel, interval time.Duration, attempts int) error {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if attempts <= 0 {
		attempts = 50
	}

	if ready := ch.Ready(); ready != nil {
		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts) * interval):
			return ErrNotReady
		}
	}

	p, ok := ch.(Prober)
	if !ok {
		return ErrNotReady
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; i < attempts; i++ {
		if p.Connected() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return ErrNotReady
}
