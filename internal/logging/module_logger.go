package logging

import (
	"strings"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// Module names a logger namespace below the webedit root.
type Module string

const (
	RootModule      Module = "webedit"
	ChangesetModule Module = "webedit.changeset"
	SaveModule      Module = "webedit.save"
	FormModule      Module = "webedit.form"
	PipelineModule  Module = "webedit.pipeline"
	HTTPModule      Module = "webedit.http"
)

// Logger resolves the namespace against provider. The module name is always
// attached as the "module" field, so a nil provider still yields a usable
// no-op logger.
func (m Module) Logger(provider interfaces.LoggerProvider) interfaces.Logger {
	name := m.qualified()
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(name)
	}
	return WithFields(Ensure(logger), map[string]any{"module": name})
}

// qualified roots bare names under "webedit".
func (m Module) qualified() string {
	name := strings.Trim(strings.TrimSpace(string(m)), ".")
	switch {
	case name == "":
		return string(RootModule)
	case name == string(RootModule), strings.HasPrefix(name, string(RootModule)+"."):
		return name
	default:
		return string(RootModule) + "." + name
	}
}

// ModuleLogger is Module(name).Logger(provider).
func ModuleLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	return Module(name).Logger(provider)
}

func ChangesetLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ChangesetModule.Logger(provider)
}

func SaveLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return SaveModule.Logger(provider)
}

func FormLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return FormModule.Logger(provider)
}

func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return PipelineModule.Logger(provider)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return HTTPModule.Logger(provider)
}
