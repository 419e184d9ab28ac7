package regions

import "strings"

// NodeFactory creates the nodes a parser or builder links into a tree. Hosts
// can plug their own factory to decorate nodes (for example to pre-fill tags).
type NodeFactory interface {
	NewRoot() Node
	NewRegion(regionID string) (Node, error)
	NewCode() Node
}

// FactoryFuncs adapts plain functions into a NodeFactory. Nil members fall
// back to the default behaviour.
type FactoryFuncs struct {
	Root   func() Node
	Region func(regionID string) (Node, error)
	Code   func() Node
}

var _ NodeFactory = FactoryFuncs{}

func (f FactoryFuncs) NewRoot() Node {
	if f.Root != nil {
		return f.Root()
	}
	return defaultFactory{}.NewRoot()
}

func (f FactoryFuncs) NewRegion(regionID string) (Node, error) {
	if f.Region != nil {
		return f.Region(regionID)
	}
	return defaultFactory{}.NewRegion(regionID)
}

func (f FactoryFuncs) NewCode() Node {
	if f.Code != nil {
		return f.Code()
	}
	return defaultFactory{}.NewCode()
}

// DefaultNodeFactory returns the factory used when none is supplied.
func DefaultNodeFactory() NodeFactory {
	return defaultFactory{}
}

type defaultFactory struct{}

func (defaultFactory) NewRoot() Node {
	return Node{Kind: KindRegion, RegionID: RootRegionID}
}

func (defaultFactory) NewRegion(regionID string) (Node, error) {
	if strings.TrimSpace(regionID) == "" {
		return Node{}, validationError(ErrRegionIDRequired, codeRegionIDRequired, "")
	}
	return Node{Kind: KindRegion, RegionID: regionID}, nil
}

func (defaultFactory) NewCode() Node {
	return Node{Kind: KindCode}
}
