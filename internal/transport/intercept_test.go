package transport

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeChannel struct {
	handler Handler
	reload  ReloadFunc
	ready   chan struct{}

	passthrough [][]byte
	reloads     []string
}

func newFakeChannel(ready bool) *fakeChannel {
	f := &fakeChannel{ready: make(chan struct{})}
	f.handler = func(_ context.Context, raw []byte) {
		f.passthrough = append(f.passthrough, raw)
	}
	f.reload = func(_ context.Context, path string) {
		f.reloads = append(f.reloads, path)
	}
	if ready {
		close(f.ready)
	}
	return f
}

func (f *fakeChannel) Intercept(h Handler) Handler {
	prev := f.handler
	f.handler = h
	return prev
}

func (f *fakeChannel) HijackReload(fn ReloadFunc) ReloadFunc {
	prev := f.reload
	f.reload = fn
	return prev
}

func (f *fakeChannel) Ready() <-chan struct{} { return f.ready }

func install(t *testing.T, ch *fakeChannel) (*Interceptor, *[]string, ReloadFunc) {
	t.Helper()
	var dispatched []string
	i := NewInterceptor(ch, func(_ context.Context, path string, _ []byte) {
		dispatched = append(dispatched, path)
	}, nil)

	original, err := i.Install(context.Background(), time.Millisecond, 5)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	return i, &dispatched, original
}

func TestInterceptor_ConsumesMarkerFrames(t *testing.T) {
	ch := newFakeChannel(true)
	_, dispatched, _ := install(t, ch)

	ch.handler(context.Background(), []byte(`{"command":"hotreload","path":"/post/","liveCSS":true}`))

	if len(*dispatched) != 1 || (*dispatched)[0] != "/post/" {
		t.Errorf("dispatched: got %v, want [/post/]", *dispatched)
	}
	if len(ch.passthrough) != 0 {
		t.Errorf("passthrough: got %d frames, want 0", len(ch.passthrough))
	}
}

func TestInterceptor_PassesThroughUnrecognised(t *testing.T) {
	ch := newFakeChannel(true)
	_, dispatched, _ := install(t, ch)

	frames := [][]byte{
		[]byte(`{"command":"hello","protocols":[]}`),
		[]byte(`{"command":"alert","message":"hi"}`),
		[]byte(`not json at all`),
		[]byte(`{"no_command_field":1}`),
	}
	for _, f := range frames {
		ch.handler(context.Background(), f)
	}

	if len(*dispatched) != 0 {
		t.Errorf("dispatched: got %v, want none", *dispatched)
	}
	if len(ch.passthrough) != len(frames) {
		t.Fatalf("passthrough: got %d frames, want %d", len(ch.passthrough), len(frames))
	}
	// Forwarded frames must be byte-identical to what arrived.
	for i, f := range frames {
		if !bytes.Equal(ch.passthrough[i], f) {
			t.Errorf("frame %d: got %q, want %q", i, ch.passthrough[i], f)
		}
	}
}

func TestInterceptor_HijacksReloadEntrypoint(t *testing.T) {
	ch := newFakeChannel(true)
	_, dispatched, original := install(t, ch)

	// The channel's own reload entrypoint now converges on the router.
	ch.reload(context.Background(), "/from-default-protocol")
	if len(*dispatched) != 1 || (*dispatched)[0] != "/from-default-protocol" {
		t.Errorf("dispatched: got %v", *dispatched)
	}

	// The original entrypoint stays callable.
	if original == nil {
		t.Fatal("original reload: got nil")
	}
	original(context.Background(), "/direct")
	if len(ch.reloads) != 1 || ch.reloads[0] != "/direct" {
		t.Errorf("original reloads: got %v, want [/direct]", ch.reloads)
	}
}

// installChannel starts delivering a frame to the new handler the moment
// it is installed, the way a running read loop would.
type installChannel struct {
	*fakeChannel
	frame     []byte
	delivered chan struct{}
}

func (c *installChannel) Intercept(h Handler) Handler {
	prev := c.fakeChannel.Intercept(h)
	go func() {
		defer close(c.delivered)
		h(context.Background(), c.frame)
	}()
	return prev
}

func TestInterceptor_FrameDuringInstallIsForwarded(t *testing.T) {
	ch := &installChannel{
		fakeChannel: newFakeChannel(true),
		frame:       []byte(`{"command":"alert","message":"mid-install"}`),
		delivered:   make(chan struct{}),
	}

	i := NewInterceptor(ch, func(context.Context, string, []byte) {
		t.Error("stock frame dispatched as selective reload")
	}, nil)
	if _, err := i.Install(context.Background(), time.Millisecond, 5); err != nil {
		t.Fatalf("Install: %v", err)
	}

	select {
	case <-ch.delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("frame was never handled")
	}

	// The frame racing the install must reach the previous handler, not
	// vanish: the wrapped channel stays indistinguishable from a bare one.
	if len(ch.passthrough) != 1 || !bytes.Equal(ch.passthrough[0], ch.frame) {
		t.Errorf("passthrough: got %d frames, want the mid-install frame forwarded", len(ch.passthrough))
	}
}

func TestInterceptor_InstallTimesOut(t *testing.T) {
	ch := newFakeChannel(false)
	i := NewInterceptor(ch, func(context.Context, string, []byte) {}, nil)

	_, err := i.Install(context.Background(), time.Millisecond, 3)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Install: got %v, want ErrNotReady", err)
	}
}

// probeChannel has no readiness signal, only a probe.
type probeChannel struct {
	fakeChannel
	connected atomic.Bool
}

func (p *probeChannel) Ready() <-chan struct{} { return nil }
func (p *probeChannel) Connected() bool        { return p.connected.Load() }

func TestAwaitReady_PollingFallback(t *testing.T) {
	p := &probeChannel{}

	go func() {
		time.Sleep(5 * time.Millisecond)
		p.connected.Store(true)
	}()

	if err := AwaitReady(context.Background(), p, time.Millisecond, 100); err != nil {
		t.Errorf("AwaitReady: %v", err)
	}
}

func TestAwaitReady_PollingExhausted(t *testing.T) {
	p := &probeChannel{}
	if err := AwaitReady(context.Background(), p, time.Millisecond, 3); !errors.Is(err, ErrNotReady) {
		t.Errorf("AwaitReady: got %v, want ErrNotReady", err)
	}
}
