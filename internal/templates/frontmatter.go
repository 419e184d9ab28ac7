package templates

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-regions/internal/regions"
)

// FrontMatter is the metadata block at the head of a template file.
type FrontMatter struct {
	Name    string
	Slug    string
	Widgets map[string][]regions.WidgetItem
	Custom  map[string]any
}

type frontMatterEnvelope struct {
	Name    string                   `yaml:"name" json:"name" toml:"name"`
	Slug    string                   `yaml:"slug" json:"slug" toml:"slug"`
	Widgets map[string][]widgetEntry `yaml:"widgets" json:"widgets" toml:"widgets"`
	Custom  map[string]any           `yaml:",inline" json:"-" toml:"-"`
}

type widgetEntry struct {
	ID            string         `yaml:"id" json:"id" toml:"id"`
	DefinitionID  string         `yaml:"definitionId" json:"definitionId" toml:"definitionId"`
	Name          string         `yaml:"name" json:"name" toml:"name"`
	Description   string         `yaml:"description" json:"description" toml:"description"`
	Properties    map[string]any `yaml:"properties" json:"properties" toml:"properties"`
	CSSProperties map[string]any `yaml:"cssProperties" json:"cssProperties" toml:"cssProperties"`
}

// ParseFrontMatter splits source into metadata and the template body. Files
// without a frontmatter block yield empty metadata and the unchanged source.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	widgets := make(map[string][]regions.WidgetItem, len(meta.Widgets))
	for regionID, entries := range meta.Widgets {
		regionID = strings.TrimSpace(regionID)
		if regionID == "" {
			continue
		}
		items := make([]regions.WidgetItem, 0, len(entries))
		for i, entry := range entries {
			if strings.TrimSpace(entry.DefinitionID) == "" {
				return FrontMatter{}, nil, fmt.Errorf("%w: region %q widget %d", ErrWidgetDefinitionRequired, regionID, i)
			}
			items = append(items, regions.WidgetItem{
				ID:            entry.ID,
				DefinitionID:  strings.TrimSpace(entry.DefinitionID),
				Name:          entry.Name,
				Description:   entry.Description,
				Properties:    stringKeyed(entry.Properties),
				CSSProperties: stringKeyed(entry.CSSProperties),
			})
		}
		widgets[regionID] = items
	}

	return FrontMatter{
		Name:    strings.TrimSpace(meta.Name),
		Slug:    strings.TrimSpace(meta.Slug),
		Widgets: widgets,
		Custom:  stringKeyed(meta.Custom),
	}, body, nil
}

// stringKeyed converts YAML decoded maps into JSON compatible values.
func stringKeyed(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return stringKeyed(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return typed
	}
}
