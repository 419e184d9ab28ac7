package templates

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-regions/internal/identity"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-slug"
	"github.com/google/go-cmp/cmp"
)

func TestLoaderLoadFile(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"), nil, LoaderConfig{BasePath: "pages"})

	doc, err := loader.LoadFile(context.Background(), "landing.html")
	if err != nil {
		t.Fatalf("LoadFile() unexpected error: %v", err)
	}

	wantSlug, err := slug.Normalize("Landing Page")
	if err != nil {
		t.Fatalf("slug.Normalize: %v", err)
	}
	if doc.Name != "Landing Page" || doc.Slug != wantSlug {
		t.Fatalf("unexpected metadata name=%q slug=%q", doc.Name, doc.Slug)
	}
	if doc.Path != "pages/landing.html" {
		t.Fatalf("unexpected path %q", doc.Path)
	}
	if doc.ID != identity.TemplateUUID(wantSlug) {
		t.Fatalf("expected deterministic template id, got %s", doc.ID)
	}
	if len(doc.Checksum) != 32 {
		t.Fatalf("expected sha256 checksum, got %d bytes", len(doc.Checksum))
	}

	tree := doc.Template.Tree
	if diff := cmp.Diff([]string{"content", "footer", "header", "header/logo"}, tree.RegionIDs()); diff != "" {
		t.Fatalf("region ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"footer", "header/logo"}, doc.Template.WidgetRegionIDs()); diff != "" {
		t.Fatalf("widget regions mismatch (-want +got):\n%s", diff)
	}

	logo := doc.Template.RegionWidgets("header/logo")
	want := []regions.WidgetItem{{
		ID:           "logo-1",
		DefinitionID: "percImage",
		Properties:   map[string]any{"src": "/assets/logo.svg", "alt": "Company"},
	}}
	if diff := cmp.Diff(want, logo); diff != "" {
		t.Fatalf("logo widgets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderPlainFileUsesFileNameSlug(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"), nil, LoaderConfig{BasePath: "pages"})

	doc, err := loader.LoadFile(context.Background(), "plain.html")
	if err != nil {
		t.Fatalf("LoadFile() unexpected error: %v", err)
	}
	if doc.Slug != "plain" {
		t.Fatalf("expected file name slug, got %q", doc.Slug)
	}
	if len(doc.Template.WidgetRegionIDs()) != 0 {
		t.Fatalf("expected no widgets, got %v", doc.Template.WidgetRegionIDs())
	}
	if _, ok := doc.Template.Tree.Region("main"); !ok {
		t.Fatal("expected main region")
	}
}

func TestLoaderLoadDirectory(t *testing.T) {
	ctx := context.Background()

	flat := NewLoader(os.DirFS("testdata"), nil, LoaderConfig{})
	docs, err := flat.LoadDirectory(ctx, "pages")
	if err != nil {
		t.Fatalf("LoadDirectory() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"pages/landing.html", "pages/plain.html"}, documentPaths(docs)); diff != "" {
		t.Fatalf("flat paths mismatch (-want +got):\n%s", diff)
	}

	recursive := NewLoader(os.DirFS("testdata"), nil, LoaderConfig{Recursive: true})
	docs, err = recursive.LoadDirectory(ctx, "pages")
	if err != nil {
		t.Fatalf("LoadDirectory() unexpected error: %v", err)
	}
	want := []string{"pages/landing.html", "pages/nested/article.html", "pages/plain.html"}
	if diff := cmp.Diff(want, documentPaths(docs)); diff != "" {
		t.Fatalf("recursive paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderUsesConfiguredParser(t *testing.T) {
	filesystem := fstest.MapFS{
		"page.html": {Data: []byte(`<div class="slot" id="a"></div><div class="perc-region" id="b"></div>`)},
	}
	parser := regions.NewParser(regions.WithMarkerClass("slot"))
	doc, err := NewLoader(filesystem, parser, LoaderConfig{}).LoadFile(context.Background(), "page.html")
	if err != nil {
		t.Fatalf("LoadFile() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, doc.Template.Tree.RegionIDs()); diff != "" {
		t.Fatalf("region ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderErrors(t *testing.T) {
	filesystem := fstest.MapFS{
		"missing-def.html": {Data: []byte("---\nwidgets:\n  a:\n    - id: w1\n---\n<div class=\"perc-region\" id=\"a\"></div>")},
		"bad-slug.html":    {Data: []byte("---\nslug: Not A Slug!\n---\n<p></p>")},
		"dup.html":         {Data: []byte(`<div class="perc-region" id="a"></div><div class="perc-region" id="a"></div>`)},
	}
	loader := NewLoader(filesystem, nil, LoaderConfig{})
	ctx := context.Background()

	if _, err := loader.LoadFile(ctx, "missing-def.html"); !errors.Is(err, ErrWidgetDefinitionRequired) {
		t.Fatalf("expected ErrWidgetDefinitionRequired, got %v", err)
	}
	if _, err := loader.LoadFile(ctx, "bad-slug.html"); !errors.Is(err, ErrSlugInvalid) {
		t.Fatalf("expected ErrSlugInvalid, got %v", err)
	}
	if _, err := loader.LoadFile(ctx, "dup.html"); !errors.Is(err, regions.ErrDuplicateRegionID) {
		t.Fatalf("expected ErrDuplicateRegionID, got %v", err)
	}
	if _, err := loader.LoadFile(ctx, "absent.html"); err == nil {
		t.Fatal("expected read error for absent file")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := loader.LoadFile(cancelled, "dup.html"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func documentPaths(docs []*Document) []string {
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		paths = append(paths, doc.Path)
	}
	return paths
}
