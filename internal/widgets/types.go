package widgets

import (
	"time"

	"github.com/goliatone/go-regions/internal/regions"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Definition captures a widget type, its configuration schema, and default values.
type Definition struct {
	bun.BaseModel `bun:"table:widget_definitions,alias:wd"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Name        string         `bun:"name,notnull,unique" json:"name"`
	Description *string        `bun:"description" json:"description,omitempty"`
	Schema      map[string]any `bun:"schema,type:jsonb,notnull" json:"schema"`
	Defaults    map[string]any `bun:"defaults,type:jsonb" json:"defaults,omitempty"`
	Category    *string        `bun:"category" json:"category,omitempty"`
	Icon        *string        `bun:"icon" json:"icon,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// RegionDefinition converts the stored definition into the shape the region merger resolves.
func (d *Definition) RegionDefinition() *regions.WidgetDefinition {
	if d == nil {
		return nil
	}
	return &regions.WidgetDefinition{
		ID:          d.ID.String(),
		Name:        d.Name,
		Description: derefString(d.Description),
		Category:    derefString(d.Category),
		Schema:      deepCloneMap(d.Schema),
		Defaults:    deepCloneMap(d.Defaults),
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
