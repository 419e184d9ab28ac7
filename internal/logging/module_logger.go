package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-regions/pkg/interfaces"
)

const (
	rootModule      = "regions"
	parserModule    = "regions.parser"
	mergeModule     = "regions.merge"
	widgetsModule   = "regions.widgets"
	templatesModule = "regions.templates"
	commandsModule  = "regions.commands"
)

const (
	fieldTemplatePath = "template_path"
	fieldTemplateSlug = "template_slug"
	fieldCommand      = "command"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ParserLogger returns the logger namespace reserved for the region parser.
func ParserLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, parserModule)
}

// MergeLogger returns the logger namespace reserved for region tree merges.
func MergeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mergeModule)
}

// WidgetsLogger returns the logger namespace reserved for widget definition services.
func WidgetsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, widgetsModule)
}

// TemplatesLogger returns the logger namespace reserved for template loading.
func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatesModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithTemplateContext enriches the logger with the template path and slug.
// Empty values are ignored.
func WithTemplateContext(logger interfaces.Logger, path, slug string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldTemplatePath] = trimmed
	}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldTemplateSlug] = trimmed
	}
	return WithFields(logger, fields)
}

// WithCommandContext tags the logger with the command message type.
func WithCommandContext(logger interfaces.Logger, command string) interfaces.Logger {
	if trimmed := strings.TrimSpace(command); trimmed != "" {
		return WithFields(logger, map[string]any{fieldCommand: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
