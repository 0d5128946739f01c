// Command livepatch keeps an authoring browser tab in sync with a dev
// server, patching changed regions in place instead of reloading.
//
// Usage:
//
//	livepatch -config livepatch.yaml
//	livepatch -page http://localhost:1313/post/ -server ws://localhost:1313/livereload
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/livepatch"
)

func main() {
	configPath := flag.String("config", "", "path to livepatch.yaml config file")
	pageURL := flag.String("page", "", "URL of the page being authored")
	serverURL := flag.String("server", "", "dev server websocket endpoint")
	remote := flag.String("browser-remote", "", "debugging URL of a running Chrome")
	headless := flag.Bool("headless", false, "launch Chrome headless (ignored with -browser-remote)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *serverURL, *remote, *headless); err != nil {
		logger.Error("livepatch: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, serverURL, remote string, headless bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Flags override file settings.
	if pageURL != "" {
		cfg.Page = pageURL
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if remote != "" {
		cfg.Browser.Remote = remote
	}
	if headless {
		cfg.Browser.Headless = true
	}

	if cfg.Page == "" {
		fmt.Fprintln(os.Stderr, "usage: livepatch -config <file> | -page <url> [-server <ws-url>]")
		os.Exit(1)
	}

	agent := livepatch.New(cfg, logger)
	if err := agent.Start(ctx); err != nil {
		return err
	}
	defer agent.Stop()

	<-ctx.Done()
	logger.Info("livepatch: shutting down")
	return nil
}

func loadConfig(path string) (*livepatch.Config, error) {
	if path == "" {
		cfg := &livepatch.Config{}
		cfg.ApplyDefaults()
		return cfg, nil
	}
	return livepatch.LoadConfigFile(path)
}
