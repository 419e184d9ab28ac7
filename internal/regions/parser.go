package regions

import (
	"strings"

	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/pkg/interfaces"
)

// DefaultMarkerClass is the class value that flags an element as a region.
const DefaultMarkerClass = "perc-region"

// MatchMode controls how the marker class is located inside a class attribute.
type MatchMode string

const (
	// MatchSubstring treats any occurrence of the marker inside the class value as a match.
	MatchSubstring MatchMode = "substring"
	// MatchToken requires the marker to be one of the whitespace separated class tokens.
	MatchToken MatchMode = "token"
)

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMarkerClass overrides the region marker class.
func WithMarkerClass(marker string) ParserOption {
	return func(p *Parser) {
		if trimmed := strings.TrimSpace(marker); trimmed != "" {
			p.marker = trimmed
		}
	}
}

// WithMatchMode selects how the marker class is matched.
func WithMatchMode(mode MatchMode) ParserOption {
	return func(p *Parser) {
		switch mode {
		case MatchSubstring, MatchToken:
			p.mode = mode
		}
	}
}

// WithStrict makes unclosed region start tags a parse error.
func WithStrict(strict bool) ParserOption {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithNodeFactory plugs the factory used to create root, region and code nodes.
func WithNodeFactory(factory NodeFactory) ParserOption {
	return func(p *Parser) {
		if factory != nil {
			p.factory = factory
		}
	}
}

// WithParserLogger injects the logger used for parse diagnostics.
func WithParserLogger(logger interfaces.Logger) ParserOption {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser reduces template markup into a ParsedRegionTree. A Parser holds no
// per-call state and is safe for concurrent use.
type Parser struct {
	marker  string
	mode    MatchMode
	strict  bool
	factory NodeFactory
	logger  interfaces.Logger
}

// NewParser constructs a parser with the default marker, substring matching
// and tolerant handling of unbalanced markup.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		marker:  DefaultMarkerClass,
		mode:    MatchSubstring,
		factory: DefaultNodeFactory(),
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds a region tree with a default parser.
func Parse(text string) (*ParsedRegionTree, error) {
	return NewParser().Parse(text)
}

type frame struct {
	element int
	region  NodeID
}

// Parse tokenizes text and walks the segments with an explicit frame stack.
// Text and non region tags collapse into Code nodes attached to the region on
// top of the stack.
func (p *Parser) Parse(text string) (*ParsedRegionTree, error) {
	segments, err := Tokenize(text)
	if err != nil {
		return nil, err
	}

	builder := NewTreeBuilder(p.factory.NewRoot())
	stack := []frame{{element: NoSegment, region: builder.Root()}}
	code := NoNode
	inCode := false

	for i, segment := range segments {
		top := stack[len(stack)-1]

		switch {
		case p.isRegionStart(segment):
			regionID, _ := segment.Attr("id")
			node, err := p.factory.NewRegion(regionID)
			if err != nil {
				return nil, err
			}
			node.StartTag = segment.Raw
			if segment.Paired() {
				node.EndTag = segments[segment.End].Raw
			} else if p.strict && !segment.Void() {
				return nil, validationError(ErrUnclosedRegion, codeRegionUnclosed, "%q", regionID)
			}

			id, err := builder.Append(top.region, node)
			if err != nil {
				return nil, err
			}
			if segment.Paired() {
				stack = append(stack, frame{element: i, region: id})
			}
			inCode = false

		case top.element != NoSegment && segments[top.element].End == i:
			stack = stack[:len(stack)-1]
			inCode = false

		default:
			if inCode {
				builder.AppendText(code, segment.Raw)
				continue
			}
			node := p.factory.NewCode()
			node.TemplateCode = segment.Raw
			id, err := builder.Append(top.region, node)
			if err != nil {
				return nil, err
			}
			code = id
			inCode = true
		}
	}

	tree := builder.Build()
	p.logger.Debug("regions.parse.completed",
		"segments", len(segments),
		"regions", len(tree.regions),
		"nodes", tree.Len(),
		"open_frames", len(stack)-1,
	)
	return tree, nil
}

func (p *Parser) isRegionStart(segment Segment) bool {
	if !segment.IsOpening() {
		return false
	}
	class, ok := segment.Attr("class")
	if !ok {
		return false
	}
	if p.mode == MatchToken {
		for _, token := range strings.Fields(class) {
			if token == p.marker {
				return true
			}
		}
		return false
	}
	return strings.Contains(class, p.marker)
}
