package regions

import "github.com/goliatone/go-regions/internal/runtimeconfig"

var (
	ErrParserMarkerRequired         = runtimeconfig.ErrParserMarkerRequired
	ErrParserMatchModeUnknown       = runtimeconfig.ErrParserMatchModeUnknown
	ErrStorageProviderUnknown       = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown        = runtimeconfig.ErrStorageDialectUnknown
	ErrStorageDSNRequired           = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid              = runtimeconfig.ErrCacheTTLInvalid
	ErrWidgetDefinitionNameRequired = runtimeconfig.ErrWidgetDefinitionNameRequired
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                 = runtimeconfig.Config
	ParserConfig           = runtimeconfig.ParserConfig
	TemplatesConfig        = runtimeconfig.TemplatesConfig
	StorageConfig          = runtimeconfig.StorageConfig
	CacheConfig            = runtimeconfig.CacheConfig
	LoggingConfig          = runtimeconfig.LoggingConfig
	WidgetConfig           = runtimeconfig.WidgetConfig
	WidgetDefinitionConfig = runtimeconfig.WidgetDefinitionConfig
	Features               = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
