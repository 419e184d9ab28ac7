package regionscmd

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-regions/internal/commands"
	"github.com/goliatone/go-regions/internal/commands/fixtures"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/internal/regions/codec"
	"github.com/goliatone/go-regions/internal/templates"
	"github.com/google/go-cmp/cmp"
)

const homeTemplate = `---
name: Home
widgets:
  sidebar:
    - id: nav
      definitionId: percNavigation
---
<div class="perc-region" id="header"></div>
<div class="perc-region" id="content"><div class="perc-region" id="content/main"></div></div>
<div class="perc-region" id="sidebar"></div>
`

const homeBranches = `{
  "regions": [
    {"type": "region", "regionId": "content", "children": [
      {"type": "code", "templateCode": "<p>page</p>"}
    ]}
  ],
  "regionWidgets": {
    "header": [{"id": "banner", "definitionId": "percImage"}]
  }
}`

func newFixtures() (fstest.MapFS, *templates.Loader) {
	files := fstest.MapFS{
		"home.html":      {Data: []byte(homeTemplate)},
		"home.json":      {Data: []byte(homeBranches)},
		"broken.json":    {Data: []byte(`{"regions":[{"type":"region"}]}`)},
		"duplicate.html": {Data: []byte(`<div class="perc-region" id="a"></div><div class="perc-region" id="a"></div>`)},
	}
	return files, templates.NewLoader(files, nil, templates.LoaderConfig{})
}

func TestParseTemplateCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     ParseTemplateCommand
		wantErr bool
	}{
		{name: "path", cmd: ParseTemplateCommand{Path: "home.html"}},
		{name: "markup", cmd: ParseTemplateCommand{Markup: "<p></p>"}},
		{name: "neither", cmd: ParseTemplateCommand{}, wantErr: true},
		{name: "both", cmd: ParseTemplateCommand{Path: "home.html", Markup: "<p></p>"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestMergePageCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     MergePageCommand
		wantErr bool
	}{
		{name: "template only", cmd: MergePageCommand{TemplatePath: "home.html"}},
		{name: "branches path", cmd: MergePageCommand{TemplatePath: "home.html", BranchesPath: "home.json"}},
		{name: "branches json", cmd: MergePageCommand{TemplatePath: "home.html", BranchesJSON: json.RawMessage(`{}`)}},
		{name: "missing template", cmd: MergePageCommand{BranchesPath: "home.json"}, wantErr: true},
		{name: "both branches", cmd: MergePageCommand{TemplatePath: "home.html", BranchesPath: "home.json", BranchesJSON: json.RawMessage(`{}`)}, wantErr: true},
		{name: "invalid json", cmd: MergePageCommand{TemplatePath: "home.html", BranchesJSON: json.RawMessage(`{`)}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestParseTemplateHandlerSendsResult(t *testing.T) {
	_, loader := newFixtures()

	var results []ParseTemplateResult
	handler := NewParseTemplateHandler(loader, nil, FeatureGates{}, func(_ context.Context, result ParseTemplateResult) {
		results = append(results, result)
	})

	if err := handler.Execute(context.Background(), ParseTemplateCommand{Path: "home.html"}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if err := handler.Execute(context.Background(), ParseTemplateCommand{Markup: `<b class="perc-region" id="x"></b>`}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if diff := cmp.Diff([]string{"content", "content/main", "header", "sidebar"}, results[0].Document.Template.Tree.RegionIDs()); diff != "" {
		t.Fatalf("region ids mismatch (-want +got):\n%s", diff)
	}
	if results[1].Document.Path != "inline" {
		t.Fatalf("expected inline document path, got %q", results[1].Document.Path)
	}
}

func TestParseTemplateHandlerErrors(t *testing.T) {
	_, loader := newFixtures()
	handler := NewParseTemplateHandler(loader, nil, FeatureGates{}, nil)

	err := handler.Execute(context.Background(), ParseTemplateCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category for empty command, got %v", err)
	}

	err = handler.Execute(context.Background(), ParseTemplateCommand{Path: "duplicate.html"})
	if !errors.Is(err, regions.ErrDuplicateRegionID) {
		t.Fatalf("expected ErrDuplicateRegionID, got %v", err)
	}

	disabled := NewParseTemplateHandler(loader, nil, FeatureGates{CommandsEnabled: func() bool { return false }}, nil)
	err = disabled.Execute(context.Background(), ParseTemplateCommand{Path: "home.html"})
	if !errors.Is(err, ErrRegionsFeatureDisabled) {
		t.Fatalf("expected ErrRegionsFeatureDisabled, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestMergePageHandlerMergesBranches(t *testing.T) {
	files, loader := newFixtures()

	var result MergePageResult
	handler := NewMergePageHandler(loader, regions.NewMerger(nil), files, nil, FeatureGates{}, func(_ context.Context, r MergePageResult) {
		result = r
	})

	if err := handler.Execute(context.Background(), MergePageCommand{TemplatePath: "home.html", BranchesPath: "home.json"}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if result.Merged == nil {
		t.Fatal("expected merged tree in result")
	}

	want := map[string]regions.Owner{
		regions.RootRegionID: regions.OwnerTemplate,
		"header":             regions.OwnerPage,
		"content":            regions.OwnerPage,
		"sidebar":            regions.OwnerTemplate,
	}
	if diff := cmp.Diff(want, result.Merged.Owners()); diff != "" {
		t.Fatalf("owners mismatch (-want +got):\n%s", diff)
	}

	inline, err := codec.EncodeBranches(regions.NewRegionBranches(nil, map[string][]regions.WidgetItem{
		"content/main": {{ID: "lead", DefinitionID: "percRawHtml"}},
	}))
	if err != nil {
		t.Fatalf("EncodeBranches() unexpected error: %v", err)
	}
	if err := handler.Execute(context.Background(), MergePageCommand{TemplatePath: "home.html", BranchesJSON: inline}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if owner := result.Merged.Owners()["content/main"]; owner != regions.OwnerPage {
		t.Fatalf("expected content/main to be PAGE owned, got %s", owner)
	}

	if err := handler.Execute(context.Background(), MergePageCommand{TemplatePath: "home.html"}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if owner := result.Merged.Owners()["header"]; owner != regions.OwnerTemplate {
		t.Fatalf("expected header to stay TEMPLATE owned without branches, got %s", owner)
	}
}

func TestMergePageHandlerReportsInvalidBranches(t *testing.T) {
	files, loader := newFixtures()
	handler := NewMergePageHandler(loader, regions.NewMerger(nil), files, nil, FeatureGates{}, nil)

	err := handler.Execute(context.Background(), MergePageCommand{TemplatePath: "home.html", BranchesPath: "broken.json"})
	if !errors.Is(err, codec.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	var tagged *goerrors.Error
	if !errors.As(err, &tagged) || tagged.TextCode != "REGIONS_DOCUMENT_INVALID" {
		t.Fatalf("expected REGIONS_DOCUMENT_INVALID text code, got %v", err)
	}

	err = handler.Execute(context.Background(), MergePageCommand{TemplatePath: "home.html", BranchesPath: "missing.json"})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category for missing branches file, got %v", err)
	}
}

func TestMergePageHandlerPropagatesLoaderErrors(t *testing.T) {
	files, loader := newFixtures()
	loadErr := errors.New("definition store offline")
	merger := regions.NewMerger(regions.WidgetDefinitionLoaderFunc(func(context.Context, string) (*regions.WidgetDefinition, error) {
		return nil, loadErr
	}))
	handler := NewMergePageHandler(loader, merger, files, nil, FeatureGates{}, nil)

	err := handler.Execute(context.Background(), MergePageCommand{TemplatePath: "home.html"})
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected loader error to propagate, got %v", err)
	}
}

func TestRegisterRegionCommandsRegistersHandlers(t *testing.T) {
	files, loader := newFixtures()
	reg := fixtures.NewRecordingRegistry()
	parseApplied := false

	set, err := RegisterRegionCommands(reg, Dependencies{
		Templates: loader,
		Merger:    regions.NewMerger(nil),
		Files:     files,
	}, nil, WithParseHandlerOptions(func(*commands.Handler[ParseTemplateCommand]) {
		parseApplied = true
	}))
	if err != nil {
		t.Fatalf("RegisterRegionCommands() unexpected error: %v", err)
	}
	if set.Parse == nil || set.Merge == nil {
		t.Fatalf("expected parse and merge handlers, got %#v", set)
	}
	if len(reg.Handlers) != 2 || reg.Handlers[0] != set.Parse || reg.Handlers[1] != set.Merge {
		t.Fatalf("unexpected registered handlers %#v", reg.Handlers)
	}
	if !parseApplied {
		t.Fatal("expected parse handler options applied")
	}

	if _, err := RegisterRegionCommands(nil, Dependencies{Merger: regions.NewMerger(nil)}, nil); err == nil {
		t.Fatal("expected error for missing template source")
	}

	reg.Err = errors.New("registry closed")
	if _, err := RegisterRegionCommands(reg, Dependencies{Templates: loader, Merger: regions.NewMerger(nil)}, nil); !errors.Is(err, reg.Err) {
		t.Fatalf("expected registry error, got %v", err)
	}
}
