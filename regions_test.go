package regions_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-regions"
	"github.com/goliatone/go-regions/internal/regions/codec"
	"github.com/goliatone/go-regions/pkg/testsupport"
	"github.com/google/go-cmp/cmp"
)

func newModule(t *testing.T) *regions.Module {
	t.Helper()
	cfg := regions.DefaultConfig()
	cfg.Templates.BasePath = filepath.Join("testdata", "templates")

	module, err := regions.New(cfg)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleMergesTemplateFileWithPageBranches(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	doc, err := module.Templates().LoadFile(ctx, "home.html")
	if err != nil {
		t.Fatalf("LoadFile() unexpected error: %v", err)
	}
	if doc.Slug != "home" || doc.Name != "Home" {
		t.Fatalf("unexpected document metadata %+v", doc)
	}

	raw, err := testsupport.LoadFixture("testdata", "templates", "home.branches.json")
	if err != nil {
		t.Fatal(err)
	}
	branches, err := codec.DecodeBranches(raw)
	if err != nil {
		t.Fatalf("DecodeBranches() unexpected error: %v", err)
	}

	merged, err := module.Merge(ctx, doc.Template, branches)
	if err != nil {
		t.Fatalf("Merge() unexpected error: %v", err)
	}

	want := map[string]regions.Owner{
		regions.RootRegionID:   regions.OwnerTemplate,
		"header":               regions.OwnerTemplate,
		"content":              regions.OwnerTemplate,
		"content/main":         regions.OwnerPage,
		"content/main/gallery": regions.OwnerPage,
		"content/aside":        regions.OwnerPage,
		"footer":               regions.OwnerTemplate,
	}
	if diff := cmp.Diff(want, merged.Owners()); diff != "" {
		t.Fatalf("owners mismatch (-want +got):\n%s", diff)
	}

	main, _ := merged.Region("content/main")
	if len(main.Children) != 2 || main.Children[0].Code != "<h2>Welcome</h2>" {
		t.Fatalf("expected override children, got %+v", main.Children)
	}
	header, _ := merged.Region("header")
	if len(header.Widgets) != 1 || header.Widgets[0].Definition == nil || header.Widgets[0].Definition.Category != "media" {
		t.Fatalf("expected header widget with resolved definition, got %+v", header.Widgets)
	}
	aside, _ := merged.Region("content/aside")
	if len(aside.Widgets) != 1 || aside.Widgets[0].Item.ID != "aside-copy" {
		t.Fatalf("unexpected aside widgets %+v", aside.Widgets)
	}
}

func TestModuleParseRoundTripsMarkup(t *testing.T) {
	module := newModule(t)

	markup := `<html><body><div class="perc-region" id="a">x<div class="perc-region" id="b"/></div></body></html>`
	tree, err := module.Parse(markup)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, tree.RegionIDs()); diff != "" {
		t.Fatalf("region ids mismatch (-want +got):\n%s", diff)
	}
	if tree.Markup() != markup {
		t.Fatalf("markup round trip mismatch: %q", tree.Markup())
	}
}

func TestModuleMergeWithoutPageBranches(t *testing.T) {
	module := newModule(t)

	tree, err := module.Parse(`<div class="perc-region" id="a"></div>`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	merged, err := module.Merge(context.Background(), regions.NewTemplate(tree, nil), regions.NewRegionBranches(nil, nil))
	if err != nil {
		t.Fatalf("Merge() unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[string]regions.Owner{regions.RootRegionID: regions.OwnerTemplate, "a": regions.OwnerTemplate}, merged.Owners()); diff != "" {
		t.Fatalf("owners mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := regions.DefaultConfig()
	cfg.Parser.MatchMode = "fuzzy"

	if _, err := regions.New(cfg); !errors.Is(err, regions.ErrParserMatchModeUnknown) {
		t.Fatalf("expected ErrParserMatchModeUnknown, got %v", err)
	}
}
