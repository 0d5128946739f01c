package page

import (
	"context"
	"strings"
	"testing"
)

func TestFake_ReplaceNode(t *testing.T) {
	f, err := NewFake(`<html><body><div><p id="msg">Hello</p></div></body></html>`, "http://localhost:1313/")
	if err != nil {
		t.Fatalf("NewFake: %v", err)
	}

	ctx := context.Background()
	if err := f.ReplaceNode(ctx, "/html/body/div/p", `<p id="msg">Hello world</p>`); err != nil {
		t.Fatalf("ReplaceNode: %v", err)
	}

	out, err := f.HTML(ctx)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(string(out), `<p id="msg">Hello world</p>`) {
		t.Errorf("HTML after replace: got %q", out)
	}
	if strings.Contains(string(out), ">Hello</p>") {
		t.Errorf("old content still present: %q", out)
	}
}

func TestFake_ReplaceNodeMissing(t *testing.T) {
	f, err := NewFake(`<html><body></body></html>`, "http://localhost:1313/")
	if err != nil {
		t.Fatalf("NewFake: %v", err)
	}

	if err := f.ReplaceNode(context.Background(), "/html/body/div", "<div></div>"); err == nil {
		t.Error("ReplaceNode: got nil error for missing element")
	}
}

func TestFake_ScrollAndStyles(t *testing.T) {
	f, err := NewFake(`<html><body><p>x</p></body></html>`, "http://localhost:1313/")
	if err != nil {
		t.Fatalf("NewFake: %v", err)
	}

	ctx := context.Background()
	if err := f.SetScrollOffset(ctx, 120.5); err != nil {
		t.Fatalf("SetScrollOffset: %v", err)
	}
	y, err := f.ScrollOffset(ctx)
	if err != nil {
		t.Fatalf("ScrollOffset: %v", err)
	}
	if y != 120.5 {
		t.Errorf("scroll: got %v, want 120.5", y)
	}

	if err := f.WriteStyle(ctx, "/html/body/p", "background", "red"); err != nil {
		t.Fatalf("WriteStyle: %v", err)
	}
	got, err := f.ReadStyles(ctx, "/html/body/p", "background", "transition")
	if err != nil {
		t.Fatalf("ReadStyles: %v", err)
	}
	if got["background"] != "red" {
		t.Errorf("background: got %q, want %q", got["background"], "red")
	}
	if got["transition"] != "" {
		t.Errorf("transition: got %q, want \"\"", got["transition"])
	}
}
