package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/hazyhaar/livepatch/page"
)

func newFake(t *testing.T) *page.Fake {
	t.Helper()
	f, err := page.NewFake(`<html><body></body></html>`, "http://localhost:1313/")
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestCycle_TriggerOnce(t *testing.T) {
	pg := newFake(t)
	c := New(pg, nil)

	cy := c.NewCycle()
	ctx := context.Background()
	cy.Trigger(ctx, "fetch", errors.New("boom"))
	cy.Trigger(ctx, "patch", errors.New("boom again"))

	if got := pg.ReloadCount(); got != 1 {
		t.Errorf("reloads: got %d, want 1", got)
	}
	if !cy.Fired() {
		t.Error("Fired: got false, want true")
	}
}

func TestCycle_IndependentCycles(t *testing.T) {
	pg := newFake(t)
	c := New(pg, nil)
	ctx := context.Background()

	c.NewCycle().Trigger(ctx, "fetch", errors.New("a"))
	c.NewCycle().Trigger(ctx, "fetch", errors.New("b"))

	if got := pg.ReloadCount(); got != 2 {
		t.Errorf("reloads: got %d, want 2", got)
	}
}

func TestCycle_PrefersOriginalReload(t *testing.T) {
	pg := newFake(t)
	c := New(pg, nil)

	calls := 0
	c.SetOriginal(func(context.Context) { calls++ })

	c.NewCycle().Trigger(context.Background(), "diff", errors.New("no locus"))

	if calls != 1 {
		t.Errorf("original reload calls: got %d, want 1", calls)
	}
	if got := pg.ReloadCount(); got != 0 {
		t.Errorf("page reloads: got %d, want 0", got)
	}
}

func TestCycle_NotFiredByDefault(t *testing.T) {
	c := New(newFake(t), nil)
	if c.NewCycle().Fired() {
		t.Error("Fired: got true for untouched cycle")
	}
}
