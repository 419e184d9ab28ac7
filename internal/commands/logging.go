package commands

import (
	"strings"

	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/pkg/interfaces"
)

// CommandLogger returns the commands logger tagged with the owning command module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.CommandsLogger(provider), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
