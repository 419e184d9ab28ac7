package regions

// RootRegionID is the reserved id of the synthetic container wrapping every parsed tree.
const RootRegionID = "percRoot"

// Kind discriminates the node variants stored in a region tree.
type Kind uint8

const (
	KindRegion Kind = iota + 1
	KindCode
)

// String renders the kind label used by codecs and debug output.
func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// NodeID addresses a node inside the arena of a single tree.
type NodeID int

// NoNode marks the absence of a node reference.
const NoNode NodeID = -1

// Node is the tagged union of Region and Code variants. Region nodes carry the
// bounding markup and children, Code nodes carry literal template text.
type Node struct {
	Kind         Kind
	RegionID     string
	StartTag     string
	EndTag       string
	TemplateCode string
	Children     []NodeID
}

// IsRegion reports whether the node is a Region variant.
func (n Node) IsRegion() bool {
	return n.Kind == KindRegion
}

// IsCode reports whether the node is a Code variant.
func (n Node) IsCode() bool {
	return n.Kind == KindCode
}

func (n Node) clone() Node {
	out := n
	if n.Children != nil {
		out.Children = append([]NodeID(nil), n.Children...)
	}
	return out
}

// NodeSpec is a nested, arena-free description of a node. It is the shape used
// to build trees from persisted data and to snapshot trees for comparison.
type NodeSpec struct {
	Kind         Kind
	RegionID     string
	StartTag     string
	EndTag       string
	TemplateCode string
	Children     []NodeSpec
}

// RegionSpec is a convenience constructor for a Region spec.
func RegionSpec(regionID string, children ...NodeSpec) NodeSpec {
	return NodeSpec{Kind: KindRegion, RegionID: regionID, Children: children}
}

// CodeSpec is a convenience constructor for a Code spec.
func CodeSpec(text string) NodeSpec {
	return NodeSpec{Kind: KindCode, TemplateCode: text}
}
