package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrParserMarkerRequired = errors.New("regions config: parser marker class is required")
var ErrParserMatchModeUnknown = errors.New("regions config: parser match mode is invalid")
var ErrStorageProviderUnknown = errors.New("regions config: storage provider is invalid")
var ErrStorageDialectUnknown = errors.New("regions config: storage dialect is invalid")
var ErrStorageDSNRequired = errors.New("regions config: storage dsn is required for the bun provider")
var ErrCacheTTLInvalid = errors.New("regions config: cache ttl must be zero or positive")
var ErrWidgetDefinitionNameRequired = errors.New("regions config: widget definition name is required")
var ErrLoggingProviderRequired = errors.New("regions config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("regions config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("regions config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("regions config: logging format is invalid")

// Config aggregates parser options, widget bootstrapping and adapter bindings.
type Config struct {
	Parser    ParserConfig
	Templates TemplatesConfig
	Widgets   WidgetConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	Features  Features
}

// ParserConfig controls region detection.
type ParserConfig struct {
	MarkerClass string
	// MatchMode is "substring" or "token".
	MatchMode string
	Strict    bool
}

// TemplatesConfig controls template discovery.
type TemplatesConfig struct {
	// BasePath is the directory templates and branch files are read from.
	BasePath string
	// Pattern is the file glob used when loading directories.
	Pattern   string
	Recursive bool
}

// StorageConfig selects the widget definition store.
type StorageConfig struct {
	// Provider is "memory" or "bun".
	Provider string
	// Dialect is "sqlite" or "postgres"; only read for the bun provider.
	Dialect string
	DSN     string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// Features toggles module functionality.
type Features struct {
	Logger   bool
	Commands bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// WidgetConfig controls registry bootstrapping.
type WidgetConfig struct {
	Definitions []WidgetDefinitionConfig
}

// WidgetDefinitionConfig mirrors the minimal RegisterDefinitionInput requirements.
type WidgetDefinitionConfig struct {
	Name        string
	Description string
	Schema      map[string]any
	Defaults    map[string]any
	Category    string
	Icon        string
}

// DefaultConfig returns an in-memory setup with the compatible parser behaviour
// and the built-in widget definitions.
func DefaultConfig() Config {
	return Config{
		Parser: ParserConfig{
			MarkerClass: "perc-region",
			MatchMode:   "substring",
		},
		Templates: TemplatesConfig{
			BasePath: ".",
			Pattern:  "*.html",
		},
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Widgets: WidgetConfig{
			Definitions: []WidgetDefinitionConfig{
				{
					Name:        "percRawHtml",
					Description: "Renders a block of literal markup",
					Schema: map[string]any{
						"fields": []any{
							map[string]any{"name": "html", "type": "string", "required": true},
						},
					},
					Defaults: map[string]any{"html": ""},
					Category: "content",
					Icon:     "code",
				},
				{
					Name:        "percImage",
					Description: "Displays a single image asset",
					Schema: map[string]any{
						"fields": []any{
							map[string]any{"name": "src", "type": "string", "required": true},
							map[string]any{"name": "alt", "type": "string"},
						},
					},
					Defaults: map[string]any{"src": "", "alt": ""},
					Category: "media",
					Icon:     "image",
				},
				{
					Name:        "percNavigation",
					Description: "Renders the site navigation for the current section",
					Schema: map[string]any{
						"fields": []any{
							map[string]any{"name": "depth", "type": "integer"},
							map[string]any{"name": "showRoot", "type": "boolean"},
						},
					},
					Defaults: map[string]any{"depth": 2, "showRoot": false},
					Category: "navigation",
					Icon:     "sitemap",
				},
			},
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Parser.MarkerClass) == "" {
		return ErrParserMarkerRequired
	}
	switch normalize(cfg.Parser.MatchMode) {
	case "", "substring", "token":
	default:
		return fmt.Errorf("%w: %s", ErrParserMatchModeUnknown, cfg.Parser.MatchMode)
	}

	switch normalize(cfg.Storage.Provider) {
	case "", "memory":
	case "bun":
		switch normalize(cfg.Storage.Dialect) {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	for i, definition := range cfg.Widgets.Definitions {
		if strings.TrimSpace(definition.Name) == "" {
			return fmt.Errorf("%w: index %d", ErrWidgetDefinitionNameRequired, i)
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
