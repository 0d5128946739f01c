package page

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/hazyhaar/livepatch/dom"
)

// Fake is an in-memory Page backed by a parsed HTML tree. It records
// navigations, reloads and style writes so tests can assert on pipeline
// behaviour without a browser.
type Fake struct {
	mu  sync.Mutex
	doc *html.Node
	loc *url.URL

	scroll float64
	styles map[string]map[string]string // xpath → prop → value

	// Recorded calls.
	Navigations  []string
	Reloads      int
	StyleWrites  []StyleWrite
	ScrolledInto []string

	// FailReplace, when set, makes ReplaceNode return this error.
	FailReplace error
}

// StyleWrite records one WriteStyle call.
type StyleWrite struct {
	XPath string
	Prop  string
	Value string
}

// NewFake builds a Fake from a document and its location.
func NewFake(rawHTML, location string) (*Fake, error) {
	doc, err := dom.Parse([]byte(rawHTML))
	if err != nil {
		return nil, err
	}
	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("page: parse location: %w", err)
	}
	return &Fake{
		doc:    doc,
		loc:    loc,
		styles: make(map[string]map[string]string),
	}, nil
}

func (f *Fake) Location(context.Context) (*url.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := *f.loc
	return &u, nil
}

func (f *Fake) HTML(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, err := dom.Render(f.doc)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (f *Fake) ScrollOffset(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scroll, nil
}

func (f *Fake) SetScrollOffset(_ context.Context, y float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scroll = y
	return nil
}

// SetScroll seeds the scroll offset for a test.
func (f *Fake) SetScroll(y float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scroll = y
}

func (f *Fake) ReplaceNode(_ context.Context, xpath, outerHTML string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailReplace != nil {
		return f.FailReplace
	}

	target := dom.FindXPath(f.doc, xpath)
	if target == nil {
		return fmt.Errorf("page: no element at %s", xpath)
	}
	parent := target.Parent
	if parent == nil {
		return fmt.Errorf("page: element at %s has no parent", xpath)
	}

	// Parse the fragment in a context node matching the parent so the
	// new nodes are created the way the live document would create them.
	ctxNode := &html.Node{Type: html.ElementNode, Data: parent.Data, DataAtom: parent.DataAtom}
	frag, err := html.ParseFragment(strings.NewReader(outerHTML), ctxNode)
	if err != nil {
		return fmt.Errorf("page: parse fragment: %w", err)
	}

	for _, n := range frag {
		parent.InsertBefore(n, target)
	}
	parent.RemoveChild(target)
	return nil
}

func (f *Fake) ScrollIntoView(_ context.Context, xpath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ScrolledInto = append(f.ScrolledInto, xpath)
	return nil
}

func (f *Fake) ReadStyles(_ context.Context, xpath string, props ...string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(props))
	for _, p := range props {
		out[p] = f.styles[xpath][p]
	}
	return out, nil
}

func (f *Fake) WriteStyle(_ context.Context, xpath, prop, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.styles[xpath] == nil {
		f.styles[xpath] = make(map[string]string)
	}
	f.styles[xpath][prop] = value
	f.StyleWrites = append(f.StyleWrites, StyleWrite{XPath: xpath, Prop: prop, Value: value})
	return nil
}

func (f *Fake) Navigate(_ context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Navigations = append(f.Navigations, rawURL)
	return nil
}

func (f *Fake) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reloads++
	return nil
}

// Style returns the current inline style value for an element, "" if unset.
func (f *Fake) Style(xpath, prop string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.styles[xpath][prop]
}

// Writes returns a copy of the recorded style writes.
func (f *Fake) Writes() []StyleWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]StyleWrite(nil), f.StyleWrites...)
}

// NavigatedTo returns a copy of the recorded navigations.
func (f *Fake) NavigatedTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Navigations...)
}

// ReloadCount returns the number of full reloads performed.
func (f *Fake) ReloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Reloads
}
