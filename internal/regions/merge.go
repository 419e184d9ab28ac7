package regions

import (
	"context"
	"sort"

	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/pkg/interfaces"
)

// Owner reports which side supplied the effective content of a merged region.
type Owner string

const (
	OwnerTemplate Owner = "TEMPLATE"
	OwnerPage     Owner = "PAGE"
)

// MergedNode is either a merged region or a run of template code.
type MergedNode struct {
	Region *MergedRegion `json:"region,omitempty"`
	Code   string        `json:"code,omitempty"`
}

// IsRegion reports whether the node wraps a merged region.
func (n MergedNode) IsRegion() bool {
	return n.Region != nil
}

// MergedRegion is the resolved view of one region after precedence rules ran.
// Widget slots carry widgets and no children.
type MergedRegion struct {
	RegionID string           `json:"regionId"`
	Owner    Owner            `json:"owner"`
	StartTag string           `json:"startTag,omitempty"`
	EndTag   string           `json:"endTag,omitempty"`
	Children []MergedNode     `json:"children,omitempty"`
	Widgets  []ResolvedWidget `json:"widgets,omitempty"`
}

// IsWidgetSlot reports whether the region resolved to widget content.
func (r *MergedRegion) IsWidgetSlot() bool {
	return r != nil && len(r.Widgets) > 0
}

// MergedRegionTree is the merge output consumed by renderers.
type MergedRegionTree struct {
	root    *MergedRegion
	regions map[string]*MergedRegion
}

// Root returns the merged percRoot region.
func (t *MergedRegionTree) Root() *MergedRegion {
	return t.root
}

// MergedRegionMap returns a copy of the regionId to merged region mapping.
func (t *MergedRegionTree) MergedRegionMap() map[string]*MergedRegion {
	out := make(map[string]*MergedRegion, len(t.regions))
	for key, value := range t.regions {
		out[key] = value
	}
	return out
}

// Region looks up a merged region by id.
func (t *MergedRegionTree) Region(regionID string) (*MergedRegion, bool) {
	region, ok := t.regions[regionID]
	return region, ok
}

// RegionIDs lists merged region ids in lexical order.
func (t *MergedRegionTree) RegionIDs() []string {
	ids := make([]string, 0, len(t.regions))
	for key := range t.regions {
		ids = append(ids, key)
	}
	sort.Strings(ids)
	return ids
}

// Owners summarises the owner of every merged region.
func (t *MergedRegionTree) Owners() map[string]Owner {
	out := make(map[string]Owner, len(t.regions))
	for key, value := range t.regions {
		out[key] = value.Owner
	}
	return out
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithMergerLogger injects the logger used for merge diagnostics.
func WithMergerLogger(logger interfaces.Logger) MergerOption {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Merger overlays page branches onto a template tree. Widget definitions are
// loaded once per distinct DefinitionID in a Merge call, not once per item.
type Merger struct {
	loader WidgetDefinitionLoader
	logger interfaces.Logger
}

// NewMerger constructs a merger. When loader is nil winning widgets are
// returned without definitions.
func NewMerger(loader WidgetDefinitionLoader, opts ...MergerOption) *Merger {
	m := &Merger{
		loader: loader,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge resolves the effective region tree for a page. Neither input is modified.
func (m *Merger) Merge(ctx context.Context, template Template, branches *RegionBranches) (*MergedRegionTree, error) {
	if template.Tree == nil {
		return nil, validationError(ErrTemplateTreeRequired, codeMergeInputRequired, "")
	}
	if branches == nil {
		return nil, validationError(ErrBranchesRequired, codeMergeInputRequired, "")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	run := &mergeRun{
		ctx:      ctx,
		template: template,
		branches: branches,
		loader:   m.loader,
		logger:   m.logger,
		regions:  make(map[string]*MergedRegion),
		loaded:   make(map[string]*WidgetDefinition),
	}

	root, err := run.region(template.Tree, template.Tree.Root(), OwnerTemplate)
	if err != nil {
		return nil, err
	}
	if err := run.orphans(); err != nil {
		return nil, err
	}

	tree := &MergedRegionTree{
		root:    root,
		regions: run.regions,
	}
	m.logger.Debug("regions.merge.completed",
		"regions", len(tree.regions),
		"definitions_loaded", len(run.loaded),
	)
	return tree, nil
}

type mergeRun struct {
	ctx      context.Context
	template Template
	branches *RegionBranches
	loader   WidgetDefinitionLoader
	logger   interfaces.Logger
	regions  map[string]*MergedRegion
	loaded   map[string]*WidgetDefinition
}

// region applies the precedence rules to the region at id within tree. side is
// the owner reported when neither widgets nor an override decide it.
func (r *mergeRun) region(tree *ParsedRegionTree, id NodeID, side Owner) (*MergedRegion, error) {
	node := tree.Node(id)
	out := &MergedRegion{
		RegionID: node.RegionID,
		StartTag: node.StartTag,
		EndTag:   node.EndTag,
	}

	templateWidgets := r.template.RegionWidgets(node.RegionID)
	pageWidgets := r.branches.RegionWidgets(node.RegionID)

	var (
		source   = tree
		sourceID = id
		rule     string
	)
	switch {
	case len(pageWidgets) > 0 && len(templateWidgets) == 0:
		out.Owner = OwnerPage
		rule = "page_widgets"
	case len(templateWidgets) > 0:
		out.Owner = OwnerTemplate
		rule = "template_widgets"
	default:
		if overrideID, ok := r.branches.Override(node.RegionID); ok && node.RegionID != RootRegionID {
			source = r.branches.Tree()
			sourceID = overrideID
			out.Owner = OwnerPage
			rule = "page_override"
			override := source.Node(overrideID)
			out.StartTag = override.StartTag
			out.EndTag = override.EndTag
		} else {
			out.Owner = side
			rule = "inherited"
		}
	}

	r.register(out)
	r.logger.Trace("regions.merge.region",
		"region_id", out.RegionID,
		"owner", out.Owner,
		"rule", rule,
	)

	switch rule {
	case "page_widgets":
		widgets, err := r.resolve(pageWidgets)
		if err != nil {
			return nil, err
		}
		out.Widgets = widgets
		return out, nil
	case "template_widgets":
		widgets, err := r.resolve(templateWidgets)
		if err != nil {
			return nil, err
		}
		out.Widgets = widgets
		return out, nil
	}

	childSide := side
	if rule == "page_override" {
		childSide = OwnerPage
	}
	for _, childID := range source.Children(sourceID) {
		child := source.Node(childID)
		if child.IsCode() {
			out.Children = append(out.Children, MergedNode{Code: child.TemplateCode})
			continue
		}
		merged, err := r.region(source, childID, childSide)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, MergedNode{Region: merged})
	}
	return out, nil
}

// register keeps the first merged region seen for an id. A page override may
// pull in an id the template still places elsewhere.
func (r *mergeRun) register(region *MergedRegion) {
	if _, exists := r.regions[region.RegionID]; exists {
		r.logger.Warn("regions.merge.duplicate_region", "region_id", region.RegionID)
		return
	}
	r.regions[region.RegionID] = region
}

// orphans registers page ids the template walk never reached. Override
// subtrees are merged as PAGE, widget assignments become PAGE widget slots.
// Neither is linked under the root.
func (r *mergeRun) orphans() error {
	tree := r.branches.Tree()
	for _, regionID := range r.branches.Overrides() {
		if _, seen := r.regions[regionID]; seen || regionID == RootRegionID {
			continue
		}
		overrideID, _ := r.branches.Override(regionID)
		r.logger.Debug("regions.merge.orphan_region", "region_id", regionID, "source", "override")
		if _, err := r.region(tree, overrideID, OwnerPage); err != nil {
			return err
		}
	}
	for _, regionID := range r.branches.WidgetRegionIDs() {
		if _, seen := r.regions[regionID]; seen || regionID == RootRegionID {
			continue
		}
		r.logger.Debug("regions.merge.orphan_region", "region_id", regionID, "source", "widgets")
		widgets, err := r.resolve(r.branches.RegionWidgets(regionID))
		if err != nil {
			return err
		}
		r.register(&MergedRegion{RegionID: regionID, Owner: OwnerPage, Widgets: widgets})
	}
	return nil
}

// resolve loads each distinct definition once per merge call. Lookups are
// keyed by DefinitionID, so items sharing a definition share one load.
func (r *mergeRun) resolve(items []WidgetItem) ([]ResolvedWidget, error) {
	out := make([]ResolvedWidget, 0, len(items))
	for _, item := range items {
		resolved := ResolvedWidget{Item: item}
		if r.loader != nil && item.DefinitionID != "" {
			definition, ok := r.loaded[item.DefinitionID]
			if !ok {
				loaded, err := r.loader.LoadDefinition(r.ctx, item.DefinitionID)
				if err != nil {
					return nil, err
				}
				definition = loaded
				r.loaded[item.DefinitionID] = definition
			}
			resolved.Definition = definition
		}
		out = append(out, resolved)
	}
	return out, nil
}
