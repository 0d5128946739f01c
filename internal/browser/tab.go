package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
)

// Tab is the authoring tab, exposed as a page.Page. Every method crosses
// the CDP boundary with a single Eval or protocol call.
type Tab struct {
	page   *rod.Page
	logger *slog.Logger
}

func (t *Tab) Location(ctx context.Context) (*url.URL, error) {
	info, err := t.page.Context(ctx).Info()
	if err != nil {
		return nil, fmt.Errorf("browser: page info: %w", err)
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return nil, fmt.Errorf("browser: parse location %q: %w", info.URL, err)
	}
	return u, nil
}

func (t *Tab) HTML(ctx context.Context) ([]byte, error) {
	res, err := t.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}
	return []byte(res.Value.Str()), nil
}

func (t *Tab) ScrollOffset(ctx context.Context) (float64, error) {
	res, err := t.page.Context(ctx).Eval(`() => window.scrollY`)
	if err != nil {
		return 0, fmt.Errorf("browser: read scroll: %w", err)
	}
	return res.Value.Num(), nil
}

func (t *Tab) SetScrollOffset(ctx context.Context, y float64) error {
	_, err := t.page.Context(ctx).Eval(`y => window.scrollTo(0, y)`, y)
	if err != nil {
		return fmt.Errorf("browser: restore scroll: %w", err)
	}
	return nil
}

func (t *Tab) ReplaceNode(ctx context.Context, xpath, outerHTML string) error {
	res, err := t.page.Context(ctx).Eval(`(xp, html) => {
		const el = document.evaluate(xp, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return "missing";
		if (!el.parentNode) return "no-parent";
		el.outerHTML = html;
		return "";
	}`, xpath, outerHTML)
	if err != nil {
		return fmt.Errorf("browser: replace node: %w", err)
	}
	if msg := res.Value.Str(); msg != "" {
		return fmt.Errorf("browser: replace node at %s: %s", xpath, msg)
	}
	return nil
}

func (t *Tab) ScrollIntoView(ctx context.Context, xpath string) error {
	_, err := t.page.Context(ctx).Eval(`xp => {
		const el = document.evaluate(xp, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (el) el.scrollIntoView({behavior: "smooth", block: "center"});
	}`, xpath)
	if err != nil {
		return fmt.Errorf("browser: scroll into view: %w", err)
	}
	return nil
}

func (t *Tab) ReadStyles(ctx context.Context, xpath string, props ...string) (map[string]string, error) {
	res, err := t.page.Context(ctx).Eval(`(xp, props) => {
		const el = document.evaluate(xp, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return null;
		return props.map(p => el.style.getPropertyValue(p));
	}`, xpath, props)
	if err != nil {
		return nil, fmt.Errorf("browser: read styles: %w", err)
	}
	if res.Value.Nil() {
		return nil, fmt.Errorf("browser: no element at %s", xpath)
	}

	vals := res.Value.Arr()
	out := make(map[string]string, len(props))
	for i, p := range props {
		if i < len(vals) {
			out[p] = vals[i].Str()
		}
	}
	return out, nil
}

func (t *Tab) WriteStyle(ctx context.Context, xpath, prop, value string) error {
	_, err := t.page.Context(ctx).Eval(`(xp, prop, value) => {
		const el = document.evaluate(xp, document, null,
			XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return;
		if (value === "") {
			el.style.removeProperty(prop);
		} else {
			el.style.setProperty(prop, value);
		}
	}`, xpath, prop, value)
	if err != nil {
		return fmt.Errorf("browser: write style: %w", err)
	}
	return nil
}

func (t *Tab) Navigate(ctx context.Context, rawURL string) error {
	if err := t.page.Context(ctx).Navigate(rawURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", rawURL, err)
	}
	return nil
}

func (t *Tab) Reload(ctx context.Context) error {
	if err := t.page.Context(ctx).Reload(); err != nil {
		return fmt.Errorf("browser: reload: %w", err)
	}
	return nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.page != nil {
		return t.page.Close()
	}
	return nil
}
