package commands

import (
	"strings"

	"github.com/goliatone/go-webedit/internal/logging"
	"github.com/goliatone/go-webedit/pkg/interfaces"
)

const commandModuleRoot = "webedit.commands"

// CommandLogger returns the logger for the handler of messageType. The module
// name drops the leading "webedit." of the message type, so
// "webedit.item.save" logs under "webedit.commands.item.save".
func CommandLogger(provider interfaces.LoggerProvider, messageType string) interfaces.Logger {
	name := strings.TrimPrefix(strings.TrimSpace(messageType), "webedit.")
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":    "command",
		"message_type": messageType,
	})
}
