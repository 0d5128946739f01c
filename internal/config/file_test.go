package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livepatch.yaml")
	doc := `
server:
  url: ws://localhost:9000/livereload
  retry_delay: 5s
page: http://localhost:4000/post/
browser:
  remote: ws://localhost:9222
highlight:
  color: "#99ccff"
  duration: 2s
status:
  listen: 127.0.0.1:8099
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.URL != "ws://localhost:9000/livereload" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.Server.RetryDelay != 5*time.Second {
		t.Errorf("retry delay = %v", cfg.Server.RetryDelay)
	}
	if cfg.Page != "http://localhost:4000/post/" {
		t.Errorf("page = %q", cfg.Page)
	}
	if cfg.Browser.Remote != "ws://localhost:9222" {
		t.Errorf("browser remote = %q", cfg.Browser.Remote)
	}
	if cfg.Highlight.Color != "#99ccff" {
		t.Errorf("highlight color = %q", cfg.Highlight.Color)
	}
	if cfg.Highlight.Duration != 2*time.Second {
		t.Errorf("highlight duration = %v", cfg.Highlight.Duration)
	}
	// interval not set, default applies
	if cfg.Highlight.Interval != 100*time.Millisecond {
		t.Errorf("highlight interval = %v", cfg.Highlight.Interval)
	}
	if cfg.Status.Listen != "127.0.0.1:8099" {
		t.Errorf("status listen = %q", cfg.Status.Listen)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Server.URL != "ws://127.0.0.1:35729/livereload" {
		t.Errorf("server url = %q", cfg.Server.URL)
	}
	if cfg.Server.RetryDelay != 2*time.Second {
		t.Errorf("retry delay = %v", cfg.Server.RetryDelay)
	}
	if cfg.Status.Listen != "127.0.0.1:7429" {
		t.Errorf("status listen = %q", cfg.Status.Listen)
	}
	if cfg.Highlight.Color != "#ffff66" {
		t.Errorf("highlight color = %q", cfg.Highlight.Color)
	}
	if cfg.Highlight.Duration != 5*time.Second {
		t.Errorf("highlight duration = %v", cfg.Highlight.Duration)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
