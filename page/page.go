// Package page defines the capability surface the patch pipeline needs
// from the live document. The production implementation drives a browser
// tab over CDP (internal/browser); Fake is an in-memory implementation
// for tests.
package page

import (
	"context"
	"net/url"
)

// Page is the live document as seen by the pipeline. All methods take a
// context because the production implementation crosses the CDP boundary.
type Page interface {
	// Location returns the page's current URL.
	Location(ctx context.Context) (*url.URL, error)

	// HTML serialises the current live document.
	HTML(ctx context.Context) ([]byte, error)

	// ScrollOffset returns the vertical scroll offset in pixels.
	ScrollOffset(ctx context.Context) (float64, error)

	// SetScrollOffset restores the vertical scroll offset.
	SetScrollOffset(ctx context.Context, y float64) error

	// ReplaceNode swaps the element at xpath with the given outer HTML,
	// at the same position in its parent.
	ReplaceNode(ctx context.Context, xpath, outerHTML string) error

	// ScrollIntoView smooth-scrolls the element at xpath to the viewport
	// center.
	ScrollIntoView(ctx context.Context, xpath string) error

	// ReadStyles returns the element's inline style values for the given
	// properties. Unset properties map to "".
	ReadStyles(ctx context.Context, xpath string, props ...string) (map[string]string, error)

	// WriteStyle sets one inline style property on the element.
	WriteStyle(ctx context.Context, xpath, prop, value string) error

	// Navigate performs a hard navigation to the URL.
	Navigate(ctx context.Context, rawURL string) error

	// Reload performs a full page reload.
	Reload(ctx context.Context) error
}
