package regions

import (
	"strings"
	"testing"
)

func TestTokenizePreservesRawText(t *testing.T) {
	input := `<!DOCTYPE html><DIV Class="perc-region" ID="a"><!-- note -->#if($x)<br>y#end</DIV>`

	segments, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize() unexpected error: %v", err)
	}

	var joined strings.Builder
	for _, segment := range segments {
		joined.WriteString(segment.Raw)
	}
	if joined.String() != input {
		t.Fatalf("raw concat mismatch\n got: %q\nwant: %q", joined.String(), input)
	}

	if segments[0].Kind != SegmentDoctype {
		t.Fatalf("expected doctype first, got %v", segments[0].Kind)
	}
	if segments[1].Name != "div" || segments[1].Raw != `<DIV Class="perc-region" ID="a">` {
		t.Fatalf("unexpected start segment %+v", segments[1])
	}
	if id, ok := segments[1].Attr("id"); !ok || id != "a" {
		t.Fatalf("expected id attribute a, got %q (present=%v)", id, ok)
	}
	if segments[2].Kind != SegmentComment {
		t.Fatalf("expected comment segment, got %v", segments[2].Kind)
	}
}

func TestTokenizePairsNearestOpenElement(t *testing.T) {
	segments, err := Tokenize(`<div><span><div>x</div></span><img src="a.png"></div>`)
	if err != nil {
		t.Fatalf("Tokenize() unexpected error: %v", err)
	}

	// 0:<div> 1:<span> 2:<div> 3:x 4:</div> 5:</span> 6:<img> 7:</div>
	cases := map[int]int{0: 7, 1: 5, 2: 4, 6: NoSegment}
	for index, end := range cases {
		if segments[index].End != end {
			t.Fatalf("segment %d: expected end %d, got %d", index, end, segments[index].End)
		}
	}
	if segments[4].Start != 2 {
		t.Fatalf("expected inner end tag to pair with 2, got %d", segments[4].Start)
	}
	if !segments[6].Void() {
		t.Fatalf("expected img to be void")
	}
}

func TestTokenizeLeavesSkippedElementsUnpaired(t *testing.T) {
	segments, err := Tokenize(`<div><p>open</div></p>`)
	if err != nil {
		t.Fatalf("Tokenize() unexpected error: %v", err)
	}
	if segments[0].End != 3 {
		t.Fatalf("expected div to close at 3, got %d", segments[0].End)
	}
	if segments[1].Paired() {
		t.Fatalf("expected p to stay unpaired, got end %d", segments[1].End)
	}
	if segments[4].Start != NoSegment {
		t.Fatalf("expected stray end tag to stay unpaired")
	}
}

func TestTokenizeSelfClosingIsVoid(t *testing.T) {
	segments, err := Tokenize(`<div class="perc-region" id="a"/><div></div>`)
	if err != nil {
		t.Fatalf("Tokenize() unexpected error: %v", err)
	}
	if segments[0].Kind != SegmentSelfClosingTag || segments[0].Paired() {
		t.Fatalf("expected unpaired self closing tag, got %+v", segments[0])
	}
	if segments[1].End != 2 {
		t.Fatalf("expected following div to pair with its end tag")
	}
}
