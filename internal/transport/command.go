package transport

import (
	"encoding/json"
	"fmt"
)

// Protocol command kinds. CommandHotReload is the reserved selective-
// reload marker; everything else belongs to the stock protocol and is
// passed through to the default handling.
const (
	CommandHello     = "hello"
	CommandReload    = "reload"
	CommandAlert     = "alert"
	CommandHotReload = "hotreload"
)

// Command is one decoded channel message. Fields beyond these are
// carried opaquely in Raw and never interpreted.
type Command struct {
	Command string `json:"command"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`

	Raw []byte `json:"-"`
}

// DecodeCommand decodes a raw frame into a structured command.
func DecodeCommand(raw []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(raw, &c); err != nil {
		return Command{}, fmt.Errorf("transport: decode command: %w", err)
	}
	if c.Command == "" {
		return Command{}, fmt.Errorf("transport: frame has no command kind")
	}
	c.Raw = raw
	return c, nil
}
