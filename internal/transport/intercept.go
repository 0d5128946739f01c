package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DispatchFunc receives a consumed selective-reload request: the embedded
// path plus the opaque original payload.
type DispatchFunc func(ctx context.Context, path string, raw []byte)

// Interceptor transparently extends a Channel. Frames carrying the
// selective-reload marker are consumed and dispatched; everything else is
// forwarded unchanged to the previous handler, so the channel behaves
// exactly like an unwrapped one when the feature is not in play.
type Interceptor struct {
	ch       Channel
	dispatch DispatchFunc
	logger   *slog.Logger

	// mu orders the handler swap against the prev assignment: handle can
	// run on the channel's read loop the instant Intercept returns, so a
	// frame racing the install blocks here until prev is recorded.
	mu   sync.Mutex
	prev Handler
}

// NewInterceptor creates an Interceptor. Call Install to wire it in.
func NewInterceptor(ch Channel, dispatch DispatchFunc, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{ch: ch, dispatch: dispatch, logger: logger}
}

// Install waits for the channel to be observably ready, then installs
// the wrapper and hijacks the reload entrypoint so both trigger sources
// converge on the same routing decision. The returned original reload
// entrypoint stays callable for fallback use.
func (i *Interceptor) Install(ctx context.Context, interval time.Duration, attempts int) (ReloadFunc, error) {
	if err := AwaitReady(ctx, i.ch, interval, attempts); err != nil {
		return nil, fmt.Errorf("transport: install interceptor: %w", err)
	}

	i.mu.Lock()
	i.prev = i.ch.Intercept(i.handle)
	i.mu.Unlock()
	original := i.ch.HijackReload(func(ctx context.Context, path string) {
		i.logger.Debug("transport: reload entrypoint intercepted", "path", path)
		i.dispatch(ctx, path, nil)
	})

	i.logger.Info("transport: interceptor installed")
	return original, nil
}

// handle consumes marker frames and passes everything else through.
func (i *Interceptor) handle(ctx context.Context, raw []byte) {
	cmd, err := DecodeCommand(raw)
	if err != nil || cmd.Command != CommandHotReload {
		i.mu.Lock()
		prev := i.prev
		i.mu.Unlock()
		if prev != nil {
			prev(ctx, raw)
		}
		return
	}

	i.logger.Debug("transport: selective reload", "path", cmd.Path)
	i.dispatch(ctx, cmd.Path, raw)
}
