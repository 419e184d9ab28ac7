package regions

import "sort"

// Template couples a template's region tree with the widgets the template
// assigns to its regions.
type Template struct {
	Tree    *ParsedRegionTree
	widgets map[string][]WidgetItem
}

// NewTemplate builds a merge input for the template side.
func NewTemplate(tree *ParsedRegionTree, widgets map[string][]WidgetItem) Template {
	return Template{
		Tree:    tree,
		widgets: cloneWidgetMap(widgets),
	}
}

// RegionWidgets returns the widget items the template assigns to regionID.
func (t Template) RegionWidgets(regionID string) []WidgetItem {
	return cloneWidgetItems(t.widgets[regionID])
}

// WidgetRegionIDs lists region ids with template widget assignments.
func (t Template) WidgetRegionIDs() []string {
	return sortedKeys(t.widgets)
}

// RegionBranches carries the page-side overrides: replacement region subtrees
// and direct widget assignments. Every region inside an override subtree is
// addressable by id.
type RegionBranches struct {
	tree    *ParsedRegionTree
	widgets map[string][]WidgetItem
}

// NewRegionBranches wraps a tree whose top level regions are the page
// overrides. A nil tree yields branches with widget assignments only.
func NewRegionBranches(tree *ParsedRegionTree, widgets map[string][]WidgetItem) *RegionBranches {
	if tree == nil {
		tree = NewTreeBuilder(DefaultNodeFactory().NewRoot()).Build()
	}
	return &RegionBranches{
		tree:    tree,
		widgets: cloneWidgetMap(widgets),
	}
}

// Tree exposes the arena holding the override subtrees.
func (b *RegionBranches) Tree() *ParsedRegionTree {
	return b.tree
}

// Override returns the override region registered under regionID.
func (b *RegionBranches) Override(regionID string) (NodeID, bool) {
	return b.tree.Region(regionID)
}

// Overrides lists the ids of the top level override subtrees in document order.
func (b *RegionBranches) Overrides() []string {
	children := b.tree.Children(b.tree.Root())
	out := make([]string, 0, len(children))
	for _, child := range children {
		node := b.tree.Node(child)
		if node.IsRegion() {
			out = append(out, node.RegionID)
		}
	}
	return out
}

// RegionWidgets returns the widget items the page assigns to regionID.
func (b *RegionBranches) RegionWidgets(regionID string) []WidgetItem {
	return cloneWidgetItems(b.widgets[regionID])
}

// WidgetRegionIDs lists region ids with page widget assignments.
func (b *RegionBranches) WidgetRegionIDs() []string {
	return sortedKeys(b.widgets)
}

// BranchesBuilder collects page overrides before they are frozen.
type BranchesBuilder struct {
	regions []NodeSpec
	widgets map[string][]WidgetItem
}

// NewBranchesBuilder creates an empty builder.
func NewBranchesBuilder() *BranchesBuilder {
	return &BranchesBuilder{widgets: make(map[string][]WidgetItem)}
}

// AddRegion registers an override subtree keyed by its region id.
func (b *BranchesBuilder) AddRegion(spec NodeSpec) *BranchesBuilder {
	b.regions = append(b.regions, spec)
	return b
}

// AssignWidgets appends widget items to a region.
func (b *BranchesBuilder) AssignWidgets(regionID string, items ...WidgetItem) *BranchesBuilder {
	if len(items) == 0 {
		return b
	}
	b.widgets[regionID] = append(b.widgets[regionID], items...)
	return b
}

// Build validates region id uniqueness across every override and freezes the branches.
func (b *BranchesBuilder) Build() (*RegionBranches, error) {
	tree, err := BuildTree(b.regions...)
	if err != nil {
		return nil, err
	}
	return NewRegionBranches(tree, b.widgets), nil
}

func sortedKeys(input map[string][]WidgetItem) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
