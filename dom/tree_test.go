package dom

import (
	"strings"
	"testing"
)

func TestBody(t *testing.T) {
	root, err := Parse([]byte(`<html><head><title>t</title></head><body><p>x</p></body></html>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := Body(root)
	if body == nil {
		t.Fatal("Body: got nil")
	}
	if body.Data != "body" {
		t.Errorf("Body: got %q, want %q", body.Data, "body")
	}

	if got := Body(nil); got != nil {
		t.Errorf("Body(nil): got %v, want nil", got)
	}
}

func TestDirectText(t *testing.T) {
	body := parseBody(t, `<html><body><div>  alpha <span>skip me</span> beta  </div></body></html>`)
	div := ElementChildren(body)[0]

	// Immediate text children only, each trimmed, concatenated.
	if got, want := DirectText(div), "alphabeta"; got != want {
		t.Errorf("DirectText: got %q, want %q", got, want)
	}
}

func TestAttr(t *testing.T) {
	body := parseBody(t, `<html><body><div id="main" class="a b"></div></body></html>`)
	div := ElementChildren(body)[0]

	if got := Attr(div, "id"); got != "main" {
		t.Errorf("Attr(id): got %q, want %q", got, "main")
	}
	if got := Attr(div, "class"); got != "a b" {
		t.Errorf("Attr(class): got %q, want %q", got, "a b")
	}
	if got := Attr(div, "missing"); got != "" {
		t.Errorf("Attr(missing): got %q, want \"\"", got)
	}
}

func TestRender(t *testing.T) {
	body := parseBody(t, `<html><body><p id="msg">Hello</p></body></html>`)
	p := ElementChildren(body)[0]

	out, err := Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<p id="msg">Hello</p>`) {
		t.Errorf("Render: got %q", out)
	}
}
