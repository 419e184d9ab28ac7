package widgets

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDefinitionRepository creates a repository for widget definitions.
func NewDefinitionRepository(db *bun.DB) repository.Repository[*Definition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Definition]{
		NewRecord:          func() *Definition { return &Definition{} },
		GetID:              func(def *Definition) uuid.UUID { return def.ID },
		SetID:              func(def *Definition, id uuid.UUID) { def.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(def *Definition) string { return def.Name },
	})
}
