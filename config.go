package livepatch

import (
	"github.com/hazyhaar/livepatch/internal/config"
)

// Config is the top-level livepatch configuration. Re-exported from internal.
type Config = config.Config

// ServerConfig points at the dev server push channel.
type ServerConfig = config.ServerConfig

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// StatusConfig controls the local status endpoint.
type StatusConfig = config.StatusConfig

// HighlightConfig tunes the patched-region flash.
type HighlightConfig = config.HighlightConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}
