package widgets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-regions/internal/identity"
	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/internal/validation"
	"github.com/goliatone/go-regions/pkg/interfaces"
	"github.com/google/uuid"
)

// Service exposes widget definition management and doubles as the merge
// collaborator that resolves widget items to their definitions.
type Service interface {
	RegisterDefinition(ctx context.Context, input RegisterDefinitionInput) (*Definition, error)
	GetDefinition(ctx context.Context, id uuid.UUID) (*Definition, error)
	GetDefinitionByName(ctx context.Context, name string) (*Definition, error)
	ListDefinitions(ctx context.Context) ([]*Definition, error)
	DeleteDefinition(ctx context.Context, id uuid.UUID) error
	SyncRegistry(ctx context.Context) error
	LoadDefinition(ctx context.Context, definitionID string) (*regions.WidgetDefinition, error)
}

// RegisterDefinitionInput captures the information required to register a widget definition.
type RegisterDefinitionInput struct {
	Name        string
	Description *string
	Schema      map[string]any
	Defaults    map[string]any
	Category    *string
	Icon        *string
}

var (
	ErrDefinitionNameRequired    = errors.New("widgets: definition name required")
	ErrDefinitionSchemaRequired  = errors.New("widgets: definition schema required")
	ErrDefinitionSchemaInvalid   = errors.New("widgets: definition schema invalid")
	ErrDefinitionExists          = errors.New("widgets: definition already exists")
	ErrDefinitionDefaultsInvalid = errors.New("widgets: defaults do not match schema")
	ErrDefinitionIDRequired      = errors.New("widgets: definition id required")
)

// IDGenerator derives identifiers for new definitions from their names.
type IDGenerator func(name string) uuid.UUID

// ServiceOption configures widget service behaviour.
type ServiceOption func(*service)

// WithClock overrides the time source used by the service.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithRegistry injects a widget registry that provides built-in and host-defined widgets.
func WithRegistry(reg *Registry) ServiceOption {
	return func(s *service) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithLogger sets the logger used for registration and lookup events.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	definitions DefinitionRepository
	now         func() time.Time
	id          IDGenerator
	registry    *Registry
	logger      interfaces.Logger
}

var _ regions.WidgetDefinitionLoader = (*service)(nil)

// NewService constructs a widget service instance. Registry entries are
// registered immediately.
func NewService(defRepo DefinitionRepository, opts ...ServiceOption) Service {
	s := &service{
		definitions: defRepo,
		now:         time.Now,
		id:          identity.WidgetDefinitionUUID,
		logger:      logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.applyRegistry(context.Background())

	return s
}

func (s *service) RegisterDefinition(ctx context.Context, input RegisterDefinitionInput) (*Definition, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrDefinitionNameRequired
	}
	if len(input.Schema) == 0 {
		return nil, ErrDefinitionSchemaRequired
	}
	if err := validation.ValidateSchema(input.Schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefinitionSchemaInvalid, err)
	}
	if err := validateDefaultsAgainstSchema(input.Schema, input.Defaults); err != nil {
		return nil, err
	}

	if existing, err := s.definitions.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrDefinitionExists
	} else if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, err
		}
	}

	now := s.now()
	definition := &Definition{
		ID:          s.id(name),
		Name:        name,
		Description: cloneString(input.Description),
		Schema:      deepCloneMap(input.Schema),
		Defaults:    deepCloneMap(input.Defaults),
		Category:    cloneString(input.Category),
		Icon:        cloneString(input.Icon),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.definitions.Create(ctx, definition)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("widgets.definition.registered", "name", created.Name, "id", created.ID.String())
	return created, nil
}

func (s *service) GetDefinition(ctx context.Context, id uuid.UUID) (*Definition, error) {
	if id == uuid.Nil {
		return nil, ErrDefinitionIDRequired
	}
	return s.definitions.GetByID(ctx, id)
}

func (s *service) GetDefinitionByName(ctx context.Context, name string) (*Definition, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrDefinitionNameRequired
	}
	return s.definitions.GetByName(ctx, trimmed)
}

func (s *service) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	return s.definitions.List(ctx)
}

func (s *service) DeleteDefinition(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrDefinitionIDRequired
	}
	if err := s.definitions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("widgets.definition.deleted", "id", id.String())
	return nil
}

// LoadDefinition resolves a widget item's DefinitionID. Ids that parse as a
// UUID are looked up directly; anything else is treated as a definition name.
func (s *service) LoadDefinition(ctx context.Context, definitionID string) (*regions.WidgetDefinition, error) {
	key := strings.TrimSpace(definitionID)
	if key == "" {
		return nil, ErrDefinitionIDRequired
	}

	var (
		definition *Definition
		err        error
	)
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		definition, err = s.definitions.GetByID(ctx, id)
	} else {
		definition, err = s.definitions.GetByName(ctx, key)
	}
	if err != nil {
		s.logger.Warn("widgets.definition.load_failed", "definition_id", key, "error", err)
		return nil, err
	}
	return definition.RegionDefinition(), nil
}

func (s *service) SyncRegistry(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.applyRegistry(ctx)
	return nil
}

func (s *service) applyRegistry(ctx context.Context) {
	if s.registry == nil {
		return
	}
	for _, entry := range s.registry.List() {
		if entry.Name == "" {
			continue
		}
		if _, err := s.definitions.GetByName(ctx, entry.Name); err == nil {
			continue
		}
		if _, err := s.RegisterDefinition(ctx, entry); err != nil {
			s.logger.Warn("widgets.registry.register_failed", "name", entry.Name, "error", err)
		}
	}
}

func validateDefaultsAgainstSchema(schema map[string]any, defaults map[string]any) error {
	if len(defaults) == 0 {
		return nil
	}
	if allowed := allowedFields(schema); len(allowed) > 0 {
		for key := range defaults {
			if !allowed[key] {
				return fmt.Errorf("%w: unknown field %q", ErrDefinitionDefaultsInvalid, key)
			}
		}
	}
	if err := validation.ValidatePartialPayload(schema, defaults); err != nil {
		return fmt.Errorf("%w: %v", ErrDefinitionDefaultsInvalid, err)
	}
	return nil
}

func allowedFields(schema map[string]any) map[string]bool {
	result := make(map[string]bool)
	switch typed := schema["fields"].(type) {
	case []any:
		for _, entry := range typed {
			if fieldMap, ok := entry.(map[string]any); ok {
				addFieldName(result, fieldMap)
			}
		}
	case []map[string]any:
		for _, fieldMap := range typed {
			addFieldName(result, fieldMap)
		}
	}
	return result
}

func addFieldName(result map[string]bool, field map[string]any) {
	if name, ok := field["name"].(string); ok {
		if name = strings.TrimSpace(name); name != "" {
			result[name] = true
		}
	}
}
