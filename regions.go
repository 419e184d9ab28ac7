package regions

import (
	"context"

	"github.com/goliatone/go-regions/internal/di"
	core "github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/internal/templates"
	"github.com/goliatone/go-regions/internal/widgets"
)

// RootRegionID is the id of the synthetic root region of every tree.
const RootRegionID = core.RootRegionID

// Owner values reported for merged regions.
const (
	OwnerTemplate = core.OwnerTemplate
	OwnerPage     = core.OwnerPage
)

type (
	// ParsedRegionTree is the output of parsing template markup.
	ParsedRegionTree = core.ParsedRegionTree
	// MergedRegionTree is the output of merging a template with page branches.
	MergedRegionTree = core.MergedRegionTree
	MergedRegion     = core.MergedRegion
	Node             = core.Node
	NodeID           = core.NodeID
	Owner            = core.Owner
	Template         = core.Template
	RegionBranches   = core.RegionBranches
	WidgetItem       = core.WidgetItem
	WidgetDefinition = core.WidgetDefinition
	ResolvedWidget   = core.ResolvedWidget
	Parser           = core.Parser
	Merger           = core.Merger
)

// WidgetService exports the widget definition service contract.
type WidgetService = widgets.Service

// TemplateLoader exports the template file loader.
type TemplateLoader = *templates.Loader

// TemplateDocument exports a loaded template file.
type TemplateDocument = templates.Document

// Option customises the underlying container.
type Option = di.Option

// NewTemplate pairs a parsed tree with its template widget assignments.
func NewTemplate(tree *ParsedRegionTree, widgets map[string][]WidgetItem) Template {
	return core.NewTemplate(tree, widgets)
}

// NewRegionBranches builds page overrides from an override tree and widget assignments.
func NewRegionBranches(tree *ParsedRegionTree, widgets map[string][]WidgetItem) *RegionBranches {
	return core.NewRegionBranches(tree, widgets)
}

// Module represents the top level regions runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a regions module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Parser returns the configured region parser.
func (m *Module) Parser() *Parser {
	return m.container.Parser()
}

// Merger returns the merger backed by the widget service.
func (m *Module) Merger() *Merger {
	return m.container.Merger()
}

// Widgets returns the configured widget definition service.
func (m *Module) Widgets() WidgetService {
	return m.container.WidgetService()
}

// Templates returns the template file loader.
func (m *Module) Templates() TemplateLoader {
	return m.container.TemplateLoader()
}

// Parse splits markup into a region tree with the configured parser.
func (m *Module) Parse(text string) (*ParsedRegionTree, error) {
	return m.container.Parser().Parse(text)
}

// Merge combines template and page branches, resolving widget definitions
// through the widget service.
func (m *Module) Merge(ctx context.Context, template Template, branches *RegionBranches) (*MergedRegionTree, error) {
	return m.container.Merger().Merge(ctx, template, branches)
}

// Close releases storage owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
