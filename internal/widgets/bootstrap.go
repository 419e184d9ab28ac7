package widgets

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-regions/internal/runtimeconfig"
)

// DefinitionsFromConfig converts configured definitions into registration inputs.
func DefinitionsFromConfig(configs []runtimeconfig.WidgetDefinitionConfig) []RegisterDefinitionInput {
	out := make([]RegisterDefinitionInput, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, RegisterDefinitionInput{
			Name:        cfg.Name,
			Description: optionalString(cfg.Description),
			Schema:      deepCloneMap(cfg.Schema),
			Defaults:    deepCloneMap(cfg.Defaults),
			Category:    optionalString(cfg.Category),
			Icon:        optionalString(cfg.Icon),
		})
	}
	return out
}

// RegistryFromConfig builds a registry seeded with the configured definitions.
func RegistryFromConfig(configs []runtimeconfig.WidgetDefinitionConfig) *Registry {
	registry := NewRegistry()
	for _, input := range DefinitionsFromConfig(configs) {
		registry.Register(input)
	}
	return registry
}

// EnsureDefinitions idempotently registers widget definitions with the provided service.
func EnsureDefinitions(ctx context.Context, svc Service, definitions []RegisterDefinitionInput) error {
	if svc == nil {
		return nil
	}
	for _, definition := range definitions {
		if definition.Name == "" {
			continue
		}
		if _, err := svc.RegisterDefinition(ctx, definition); err != nil {
			if errors.Is(err, ErrDefinitionExists) {
				continue
			}
			return err
		}
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
