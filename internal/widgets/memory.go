package widgets

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryDefinitionRepository constructs an "in memory" widget definition repository.
func NewMemoryDefinitionRepository() DefinitionRepository {
	return &memoryDefinitionRepository{
		byID:   make(map[uuid.UUID]*Definition),
		byName: make(map[string]uuid.UUID),
	}
}

type memoryDefinitionRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Definition
	byName map[string]uuid.UUID
}

func (m *memoryDefinitionRepository) Create(_ context.Context, definition *Definition) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneDefinition(definition)
	m.byID[cloned.ID] = cloned
	if cloned.Name != "" {
		m.byName[cloned.Name] = cloned.ID
	}
	return cloneDefinition(cloned), nil
}

func (m *memoryDefinitionRepository) GetByID(_ context.Context, id uuid.UUID) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: definitionResource, Key: id.String()}
	}
	return cloneDefinition(record), nil
}

func (m *memoryDefinitionRepository) GetByName(_ context.Context, name string) (*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok {
		return nil, &NotFoundError{Resource: definitionResource, Key: name}
	}
	return cloneDefinition(m.byID[id]), nil
}

func (m *memoryDefinitionRepository) List(_ context.Context) ([]*Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Definition, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneDefinition(record))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (m *memoryDefinitionRepository) Update(_ context.Context, definition *Definition) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[definition.ID]
	if !ok {
		return nil, &NotFoundError{Resource: definitionResource, Key: definition.ID.String()}
	}
	if existing.Name != definition.Name {
		delete(m.byName, existing.Name)
	}
	cloned := cloneDefinition(definition)
	m.byID[cloned.ID] = cloned
	m.byName[cloned.Name] = cloned.ID
	return cloneDefinition(cloned), nil
}

func (m *memoryDefinitionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: definitionResource, Key: id.String()}
	}
	delete(m.byName, existing.Name)
	delete(m.byID, id)
	return nil
}

func cloneDefinition(src *Definition) *Definition {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Schema = deepCloneMap(src.Schema)
	cloned.Defaults = deepCloneMap(src.Defaults)
	cloned.Description = cloneString(src.Description)
	cloned.Category = cloneString(src.Category)
	cloned.Icon = cloneString(src.Icon)
	return &cloned
}

func cloneString(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func deepCloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = deepCloneValue(value)
	}
	return out
}

func deepCloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = deepCloneValue(item)
		}
		return out
	default:
		return typed
	}
}
