package di

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	regionscmd "github.com/goliatone/go-regions/internal/commands/regions"
	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/internal/logging/console"
	"github.com/goliatone/go-regions/internal/logging/gologger"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/internal/runtimeconfig"
	"github.com/goliatone/go-regions/internal/templates"
	"github.com/goliatone/go-regions/internal/widgets"
	"github.com/goliatone/go-regions/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Container wires the parser, merger, template loader, widget definition
// store and command handlers from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	widgetDefinitionRepo widgets.DefinitionRepository
	widgetRegistry       *widgets.Registry
	widgetSvc            widgets.Service

	parser         *regions.Parser
	merger         *regions.Merger
	templateFS     fs.FS
	templateLoader *templates.Loader

	commandRegistry regionscmd.CommandRegistry
	commandOptions  []regionscmd.Option
	commandHandlers *regionscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB stores widget definitions in db. The caller owns the schema and
// the connection lifecycle.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service used by the bun widget repository.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithWidgetService replaces the widget definition service.
func WithWidgetService(svc widgets.Service) Option {
	return func(c *Container) {
		if svc != nil {
			c.widgetSvc = svc
		}
	}
}

// WithTemplateFS overrides the filesystem templates and branch files are read from.
func WithTemplateFS(filesystem fs.FS) Option {
	return func(c *Container) {
		if filesystem != nil {
			c.templateFS = filesystem
		}
	}
}

// WithCommandRegistry registers command handlers with reg when commands are enabled.
func WithCommandRegistry(reg regionscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithCommandOptions forwards options to the region command registration.
func WithCommandOptions(opts ...regionscmd.Option) Option {
	return func(c *Container) {
		c.commandOptions = append(c.commandOptions, opts...)
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "regions")

	c.configureCacheDefaults()
	if err := c.configureRepositories(); err != nil {
		return nil, err
	}

	if c.widgetSvc == nil {
		c.widgetRegistry = widgets.RegistryFromConfig(cfg.Widgets.Definitions)
		c.widgetSvc = widgets.NewService(
			c.widgetDefinitionRepo,
			widgets.WithRegistry(c.widgetRegistry),
			widgets.WithLogger(logging.WidgetsLogger(c.loggerProvider)),
		)
	}

	c.parser = regions.NewParser(
		regions.WithMarkerClass(cfg.Parser.MarkerClass),
		regions.WithMatchMode(regions.MatchMode(strings.ToLower(strings.TrimSpace(cfg.Parser.MatchMode)))),
		regions.WithStrict(cfg.Parser.Strict),
		regions.WithParserLogger(logging.ParserLogger(c.loggerProvider)),
	)
	c.merger = regions.NewMerger(c.widgetSvc,
		regions.WithMergerLogger(logging.MergeLogger(c.loggerProvider)),
	)

	if c.templateFS == nil {
		base := strings.TrimSpace(cfg.Templates.BasePath)
		if base == "" {
			base = "."
		}
		c.templateFS = os.DirFS(base)
	}
	c.templateLoader = templates.NewLoader(c.templateFS, c.parser, templates.LoaderConfig{
		Pattern:   cfg.Templates.Pattern,
		Recursive: cfg.Templates.Recursive,
	}, templates.WithLogger(logging.TemplatesLogger(c.loggerProvider)))

	if cfg.Features.Commands {
		handlers, err := regionscmd.RegisterRegionCommands(c.commandRegistry, regionscmd.Dependencies{
			Templates: c.templateLoader,
			Merger:    c.merger,
			Files:     c.templateFS,
		}, c.loggerProvider, c.commandOptions...)
		if err != nil {
			return nil, fmt.Errorf("register region commands: %w", err)
		}
		c.commandHandlers = handlers
	}

	c.logger.Debug("regions.container.configured",
		"storage", c.storageProvider(),
		"cache", c.cacheService != nil,
		"commands", c.commandHandlers != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("regions.cache.unavailable", "error", err)
		} else {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() error {
	if c.bunDB == nil && strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), "bun") {
		db, err := openBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		if err := widgets.EnsureSchema(context.Background(), db); err != nil {
			_ = db.Close()
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if c.bunDB != nil {
		c.widgetDefinitionRepo = widgets.NewBunDefinitionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return nil
	}
	c.widgetDefinitionRepo = widgets.NewMemoryDefinitionRepository()
	return nil
}

func (c *Container) storageProvider() string {
	if c.bunDB != nil {
		return "bun"
	}
	return "memory"
}

// LoggerProvider returns the configured logger provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// WidgetService returns the widget definition service.
func (c *Container) WidgetService() widgets.Service {
	return c.widgetSvc
}

// WidgetRegistry returns the registry seeded from configuration. It is nil
// when a widget service was injected.
func (c *Container) WidgetRegistry() *widgets.Registry {
	return c.widgetRegistry
}

// Parser returns the configured region parser.
func (c *Container) Parser() *regions.Parser {
	return c.parser
}

// Merger returns the region merger bound to the widget service.
func (c *Container) Merger() *regions.Merger {
	return c.merger
}

// TemplateLoader returns the template loader.
func (c *Container) TemplateLoader() *templates.Loader {
	return c.templateLoader
}

// CommandHandlers returns the region command handlers, nil when commands are disabled.
func (c *Container) CommandHandlers() *regionscmd.HandlerSet {
	return c.commandHandlers
}

// Close releases the database connection when the container opened it.
func (c *Container) Close() error {
	if c.ownsDB && c.bunDB != nil {
		return c.bunDB.Close()
	}
	return nil
}
