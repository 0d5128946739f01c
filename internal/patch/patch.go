// Package patch replaces exactly the change-locus subtree in the live
// page, keeping the viewport scroll offset where it was.
package patch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/livepatch/dom"
	"github.com/hazyhaar/livepatch/page"
)

// Applier swaps locus subtrees into a live page.
type Applier struct {
	pg     page.Page
	logger *slog.Logger
}

// New creates an Applier for the given page.
func New(pg page.Page, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{pg: pg, logger: logger}
}

// Apply replaces the locus's current node with its new counterpart and
// restores the scroll offset captured before the swap. It returns the
// XPath of the patched element so the caller can highlight it.
//
// No partial state is rolled back on failure; the caller is expected to
// fall back to a full reload.
func (a *Applier) Apply(ctx context.Context, locus *dom.Locus) (string, error) {
	if locus == nil || locus.Current == nil || locus.Next == nil {
		return "", fmt.Errorf("patch: nil locus")
	}
	if locus.Current.Parent == nil {
		return "", fmt.Errorf("patch: locus has no parent")
	}

	xpath := dom.XPath(locus.Current)
	if xpath == "" {
		return "", fmt.Errorf("patch: locus is not addressable")
	}

	scroll, err := a.pg.ScrollOffset(ctx)
	if err != nil {
		return "", fmt.Errorf("patch: capture scroll: %w", err)
	}

	outer, err := dom.Render(locus.Next)
	if err != nil {
		return "", fmt.Errorf("patch: render replacement: %w", err)
	}

	if err := a.pg.ReplaceNode(ctx, xpath, outer); err != nil {
		return "", fmt.Errorf("patch: replace node: %w", err)
	}

	// The swap may shift layout; put the viewport back where it was.
	if err := a.pg.SetScrollOffset(ctx, scroll); err != nil {
		return "", fmt.Errorf("patch: restore scroll: %w", err)
	}

	a.logger.Info("patch: applied", "xpath", xpath, "size", len(outer))
	return xpath, nil
}
