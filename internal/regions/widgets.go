package regions

import "context"

// WidgetItem references a widget assigned to a region. Only DefinitionID is
// interpreted here; the rest is carried through to renderers.
type WidgetItem struct {
	ID            string         `json:"id,omitempty"`
	DefinitionID  string         `json:"definitionId"`
	Name          string         `json:"name,omitempty"`
	Description   string         `json:"description,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
	CSSProperties map[string]any `json:"cssProperties,omitempty"`
}

// WidgetDefinition is the resolved description of a widget type.
type WidgetDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Schema      map[string]any `json:"schema,omitempty"`
	Defaults    map[string]any `json:"defaults,omitempty"`
}

// WidgetDefinitionLoader resolves widget definitions by id for the merger.
type WidgetDefinitionLoader interface {
	LoadDefinition(ctx context.Context, definitionID string) (*WidgetDefinition, error)
}

// WidgetDefinitionLoaderFunc adapts a function into a WidgetDefinitionLoader.
type WidgetDefinitionLoaderFunc func(ctx context.Context, definitionID string) (*WidgetDefinition, error)

func (f WidgetDefinitionLoaderFunc) LoadDefinition(ctx context.Context, definitionID string) (*WidgetDefinition, error) {
	return f(ctx, definitionID)
}

// ResolvedWidget pairs a winning widget item with its loaded definition.
type ResolvedWidget struct {
	Item       WidgetItem        `json:"item"`
	Definition *WidgetDefinition `json:"definition,omitempty"`
}

func cloneWidgetItems(items []WidgetItem) []WidgetItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]WidgetItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].Properties = cloneAnyMap(item.Properties)
		out[i].CSSProperties = cloneAnyMap(item.CSSProperties)
	}
	return out
}

func cloneWidgetMap(input map[string][]WidgetItem) map[string][]WidgetItem {
	out := make(map[string][]WidgetItem, len(input))
	for key, items := range input {
		if cloned := cloneWidgetItems(items); len(cloned) > 0 {
			out[key] = cloned
		}
	}
	return out
}

func cloneAnyMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
