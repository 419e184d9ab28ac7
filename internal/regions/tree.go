package regions

import (
	"sort"
	"strings"
)

// ParsedRegionTree is the immutable result of a parse or build. Nodes live in
// an arena and are addressed by NodeID; the root is the synthetic percRoot
// region and is never registered in the regions map.
type ParsedRegionTree struct {
	nodes   []Node
	root    NodeID
	regions map[string]NodeID
}

// Root returns the id of the synthetic root region.
func (t *ParsedRegionTree) Root() NodeID {
	return t.root
}

// Len reports the number of nodes in the arena, root included.
func (t *ParsedRegionTree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node stored at id.
func (t *ParsedRegionTree) Node(id NodeID) Node {
	if !t.valid(id) {
		return Node{}
	}
	return t.nodes[id].clone()
}

// Children returns a copy of the child ids of the node stored at id.
func (t *ParsedRegionTree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return append([]NodeID(nil), t.nodes[id].Children...)
}

// Region looks up a region node by id.
func (t *ParsedRegionTree) Region(regionID string) (NodeID, bool) {
	id, ok := t.regions[regionID]
	return id, ok
}

// Regions returns a copy of the regionId to node mapping.
func (t *ParsedRegionTree) Regions() map[string]NodeID {
	out := make(map[string]NodeID, len(t.regions))
	for key, value := range t.regions {
		out[key] = value
	}
	return out
}

// RegionIDs lists registered region ids in lexical order.
func (t *ParsedRegionTree) RegionIDs() []string {
	ids := make([]string, 0, len(t.regions))
	for key := range t.regions {
		ids = append(ids, key)
	}
	sort.Strings(ids)
	return ids
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the children of the visited node.
func (t *ParsedRegionTree) Walk(fn func(id NodeID, node Node, depth int) bool) {
	if fn == nil {
		return
	}
	var visit func(id NodeID, depth int)
	visit = func(id NodeID, depth int) {
		node := t.nodes[id]
		if !fn(id, node.clone(), depth) {
			return
		}
		for _, child := range node.Children {
			visit(child, depth+1)
		}
	}
	visit(t.root, 0)
}

// Spec snapshots the subtree rooted at id as a nested NodeSpec.
func (t *ParsedRegionTree) Spec(id NodeID) NodeSpec {
	if !t.valid(id) {
		return NodeSpec{}
	}
	node := t.nodes[id]
	spec := NodeSpec{
		Kind:         node.Kind,
		RegionID:     node.RegionID,
		StartTag:     node.StartTag,
		EndTag:       node.EndTag,
		TemplateCode: node.TemplateCode,
	}
	for _, child := range node.Children {
		spec.Children = append(spec.Children, t.Spec(child))
	}
	return spec
}

// Markup reassembles the literal text the tree was parsed from.
func (t *ParsedRegionTree) Markup() string {
	var builder strings.Builder
	var write func(id NodeID)
	write = func(id NodeID) {
		node := t.nodes[id]
		if node.IsCode() {
			builder.WriteString(node.TemplateCode)
			return
		}
		builder.WriteString(node.StartTag)
		for _, child := range node.Children {
			write(child)
		}
		builder.WriteString(node.EndTag)
	}
	for _, child := range t.nodes[t.root].Children {
		write(child)
	}
	return builder.String()
}

func (t *ParsedRegionTree) valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}

// TreeBuilder accumulates nodes for a single tree. Region ids must be unique;
// the regions map is only published when Build is called.
type TreeBuilder struct {
	nodes   []Node
	root    NodeID
	regions map[string]NodeID
}

// NewTreeBuilder creates a builder seeded with the provided root node.
func NewTreeBuilder(root Node) *TreeBuilder {
	if root.Kind != KindRegion {
		root.Kind = KindRegion
	}
	if root.RegionID == "" {
		root.RegionID = RootRegionID
	}
	root.Children = nil
	return &TreeBuilder{
		nodes:   []Node{root},
		root:    0,
		regions: make(map[string]NodeID),
	}
}

// Root returns the id of the root region.
func (b *TreeBuilder) Root() NodeID {
	return b.root
}

// Append links node as the last child of parent and returns its id. Region
// nodes are registered by id; a repeated id is rejected.
func (b *TreeBuilder) Append(parent NodeID, node Node) (NodeID, error) {
	if parent < 0 || int(parent) >= len(b.nodes) || !b.nodes[parent].IsRegion() {
		return NoNode, validationError(ErrInvalidParent, codeInvalidParent, "parent %d", parent)
	}
	if node.IsRegion() {
		if node.RegionID == "" {
			return NoNode, validationError(ErrRegionIDRequired, codeRegionIDRequired, "")
		}
		if _, exists := b.regions[node.RegionID]; exists || node.RegionID == b.nodes[b.root].RegionID {
			return NoNode, validationError(ErrDuplicateRegionID, codeRegionIDDuplicate, "%q", node.RegionID)
		}
	}
	node.Children = nil
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.nodes[parent].Children = append(b.nodes[parent].Children, id)
	if node.IsRegion() {
		b.regions[node.RegionID] = id
	}
	return id, nil
}

// AppendText extends the template code of an existing Code node.
func (b *TreeBuilder) AppendText(id NodeID, text string) {
	if id < 0 || int(id) >= len(b.nodes) || !b.nodes[id].IsCode() {
		return
	}
	b.nodes[id].TemplateCode += text
}

// AppendSpec links a nested spec (and all its descendants) under parent.
func (b *TreeBuilder) AppendSpec(parent NodeID, spec NodeSpec) (NodeID, error) {
	node := Node{
		Kind:         spec.Kind,
		RegionID:     spec.RegionID,
		StartTag:     spec.StartTag,
		EndTag:       spec.EndTag,
		TemplateCode: spec.TemplateCode,
	}
	if node.Kind == 0 {
		node.Kind = KindRegion
	}
	id, err := b.Append(parent, node)
	if err != nil {
		return NoNode, err
	}
	if node.IsCode() {
		return id, nil
	}
	for _, child := range spec.Children {
		if _, err := b.AppendSpec(id, child); err != nil {
			return NoNode, err
		}
	}
	return id, nil
}

// Build publishes the tree. Nodes appended after Build are not visible to it.
func (b *TreeBuilder) Build() *ParsedRegionTree {
	nodes := make([]Node, len(b.nodes))
	for i, node := range b.nodes {
		nodes[i] = node.clone()
	}
	regions := make(map[string]NodeID, len(b.regions))
	for key, value := range b.regions {
		regions[key] = value
	}
	return &ParsedRegionTree{
		nodes:   nodes,
		root:    b.root,
		regions: regions,
	}
}

// BuildTree assembles a tree from nested specs placed under a default root.
func BuildTree(children ...NodeSpec) (*ParsedRegionTree, error) {
	return BuildTreeWithFactory(DefaultNodeFactory(), children...)
}

// BuildTreeWithFactory assembles a tree from nested specs using factory for the root.
func BuildTreeWithFactory(factory NodeFactory, children ...NodeSpec) (*ParsedRegionTree, error) {
	if factory == nil {
		factory = DefaultNodeFactory()
	}
	builder := NewTreeBuilder(factory.NewRoot())
	for _, child := range children {
		if _, err := builder.AppendSpec(builder.Root(), child); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}
