package regions

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// SegmentKind classifies a tokenized slice of template markup.
type SegmentKind uint8

const (
	SegmentText SegmentKind = iota
	SegmentStartTag
	SegmentEndTag
	SegmentSelfClosingTag
	SegmentComment
	SegmentDoctype
)

// Segment is one literal run of the source text. Raw holds the exact bytes the
// tokenizer consumed so concatenating every segment reproduces the input.
type Segment struct {
	Kind  SegmentKind
	Raw   string
	Name  string
	Attrs []html.Attribute
	// End is the index of the paired end tag for start tags, NoSegment otherwise.
	End int
	// Start is the index of the paired start tag for end tags, NoSegment otherwise.
	Start int
}

// NoSegment marks a missing pairing.
const NoSegment = -1

// Attr returns the value of the named attribute and whether it was present.
func (s Segment) Attr(key string) (string, bool) {
	for _, attr := range s.Attrs {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// IsOpening reports whether the segment opens an element.
func (s Segment) IsOpening() bool {
	return s.Kind == SegmentStartTag || s.Kind == SegmentSelfClosingTag
}

// Paired reports whether an opening segment has a discoverable end tag.
func (s Segment) Paired() bool {
	return s.End != NoSegment
}

// Void reports whether the segment opens an element that never takes an end tag.
func (s Segment) Void() bool {
	if s.Kind == SegmentSelfClosingTag {
		return true
	}
	_, ok := voidElements[s.Name]
	return ok && s.Kind == SegmentStartTag
}

// voidElements never take an end tag.
var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// Tokenize splits text into segments with the x/net/html tokenizer and pairs
// start tags with their end tags.
func Tokenize(text string) ([]Segment, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	segments := make([]Segment, 0, 32)

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("regions: tokenize: %w", err)
		}

		// Raw must be captured before Token, which lowercases names in place.
		raw := string(tokenizer.Raw())
		token := tokenizer.Token()

		segment := Segment{
			Raw:   raw,
			End:   NoSegment,
			Start: NoSegment,
		}
		switch tt {
		case html.StartTagToken:
			segment.Kind = SegmentStartTag
			segment.Name = token.Data
			segment.Attrs = token.Attr
		case html.EndTagToken:
			segment.Kind = SegmentEndTag
			segment.Name = token.Data
		case html.SelfClosingTagToken:
			segment.Kind = SegmentSelfClosingTag
			segment.Name = token.Data
			segment.Attrs = token.Attr
		case html.CommentToken:
			segment.Kind = SegmentComment
		case html.DoctypeToken:
			segment.Kind = SegmentDoctype
		default:
			segment.Kind = SegmentText
		}
		segments = append(segments, segment)
	}

	pairSegments(segments)
	return segments, nil
}

// pairSegments links start and end tags. An end tag closes the nearest open
// element with the same name; elements it skips over stay unpaired.
func pairSegments(segments []Segment) {
	type open struct {
		name  string
		index int
	}
	stack := make([]open, 0, 16)

	for i := range segments {
		switch segments[i].Kind {
		case SegmentStartTag:
			if segments[i].Void() {
				continue
			}
			stack = append(stack, open{name: segments[i].Name, index: i})
		case SegmentEndTag:
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].name != segments[i].Name {
					continue
				}
				segments[stack[j].index].End = i
				segments[i].Start = stack[j].index
				stack = stack[:j]
				break
			}
		}
	}
}
