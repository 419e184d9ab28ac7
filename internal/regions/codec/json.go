package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-regions/internal/regions"
)

const (
	nodeTypeRegion = "region"
	nodeTypeCode   = "code"
)

// NodeDocument is the persisted form of a region or code node.
type NodeDocument struct {
	Type         string         `json:"type"`
	RegionID     string         `json:"regionId,omitempty"`
	StartTag     string         `json:"startTag,omitempty"`
	EndTag       string         `json:"endTag,omitempty"`
	TemplateCode string         `json:"templateCode,omitempty"`
	Children     []NodeDocument `json:"children,omitempty"`
}

// TreeDocument holds the children of the synthetic root.
type TreeDocument struct {
	Regions []NodeDocument `json:"regions"`
}

// BranchesDocument is the persisted form of page overrides.
type BranchesDocument struct {
	Regions       []NodeDocument                 `json:"regions,omitempty"`
	RegionWidgets map[string][]regions.WidgetItem `json:"regionWidgets,omitempty"`
}

// MergedDocument is the rendering-oriented view of a merge result.
type MergedDocument struct {
	Root   *regions.MergedRegion    `json:"root"`
	Owners map[string]regions.Owner `json:"owners"`
}

// EncodeTree serialises a parsed tree.
func EncodeTree(tree *regions.ParsedRegionTree) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("codec: tree is nil")
	}
	doc := TreeDocument{Regions: documentsFromSpecs(tree.Spec(tree.Root()).Children)}
	if doc.Regions == nil {
		doc.Regions = []NodeDocument{}
	}
	return marshal(doc)
}

// DecodeTree validates data against the tree schema and rebuilds the tree.
func DecodeTree(data []byte) (*regions.ParsedRegionTree, error) {
	if err := validateDocument(treeSchema, "tree", data); err != nil {
		return nil, err
	}
	var doc TreeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DocumentError{Document: "tree", Cause: err}
	}
	return regions.BuildTree(specsFromDocuments(doc.Regions)...)
}

// EncodeBranches serialises page overrides and widget assignments.
func EncodeBranches(branches *regions.RegionBranches) ([]byte, error) {
	if branches == nil {
		return nil, fmt.Errorf("codec: branches are nil")
	}
	tree := branches.Tree()
	doc := BranchesDocument{
		Regions:       documentsFromSpecs(tree.Spec(tree.Root()).Children),
		RegionWidgets: make(map[string][]regions.WidgetItem),
	}
	for _, regionID := range branches.WidgetRegionIDs() {
		doc.RegionWidgets[regionID] = branches.RegionWidgets(regionID)
	}
	return marshal(doc)
}

// DecodeBranches validates data against the branches schema and rebuilds the overrides.
func DecodeBranches(data []byte) (*regions.RegionBranches, error) {
	if err := validateDocument(branchesSchema, "branches", data); err != nil {
		return nil, err
	}
	var doc BranchesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DocumentError{Document: "branches", Cause: err}
	}
	tree, err := regions.BuildTree(specsFromDocuments(doc.Regions)...)
	if err != nil {
		return nil, err
	}
	return regions.NewRegionBranches(tree, doc.RegionWidgets), nil
}

// EncodeMerged serialises a merge result with its owner summary.
func EncodeMerged(tree *regions.MergedRegionTree) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("codec: merged tree is nil")
	}
	return marshal(MergedDocument{
		Root:   tree.Root(),
		Owners: tree.Owners(),
	})
}

// marshal indents v and keeps markup characters unescaped.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func documentsFromSpecs(specs []regions.NodeSpec) []NodeDocument {
	if len(specs) == 0 {
		return nil
	}
	out := make([]NodeDocument, 0, len(specs))
	for _, spec := range specs {
		doc := NodeDocument{Type: nodeTypeCode, TemplateCode: spec.TemplateCode}
		if spec.Kind == regions.KindRegion {
			doc = NodeDocument{
				Type:     nodeTypeRegion,
				RegionID: spec.RegionID,
				StartTag: spec.StartTag,
				EndTag:   spec.EndTag,
				Children: documentsFromSpecs(spec.Children),
			}
		}
		out = append(out, doc)
	}
	return out
}

func specsFromDocuments(docs []NodeDocument) []regions.NodeSpec {
	if len(docs) == 0 {
		return nil
	}
	out := make([]regions.NodeSpec, 0, len(docs))
	for _, doc := range docs {
		if doc.Type == nodeTypeCode {
			out = append(out, regions.CodeSpec(doc.TemplateCode))
			continue
		}
		out = append(out, regions.NodeSpec{
			Kind:     regions.KindRegion,
			RegionID: doc.RegionID,
			StartTag: doc.StartTag,
			EndTag:   doc.EndTag,
			Children: specsFromDocuments(doc.Children),
		})
	}
	return out
}

func decodeAny(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
