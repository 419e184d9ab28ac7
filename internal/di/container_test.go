package di_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-regions/internal/commands/fixtures"
	regionscmd "github.com/goliatone/go-regions/internal/commands/regions"
	"github.com/goliatone/go-regions/internal/di"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/internal/runtimeconfig"
	"github.com/goliatone/go-regions/internal/widgets"
	"github.com/google/go-cmp/cmp"
)

const pageTemplate = `---
name: Page
widgets:
  aside:
    - id: nav
      definitionId: percNavigation
---
<div class="perc-region" id="main"></div><div class="perc-region" id="aside"></div>`

func templateFiles() fstest.MapFS {
	return fstest.MapFS{
		"page.html": {Data: []byte(pageTemplate)},
		"page.json": {Data: []byte(`{"regionWidgets":{"main":[{"id":"hero","definitionId":"percImage"}]}}`)},
	}
}

func TestContainerDefaultsSeedWidgetDefinitions(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithTemplateFS(templateFiles()))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	definitions, err := container.WidgetService().ListDefinitions(context.Background())
	if err != nil {
		t.Fatalf("ListDefinitions() unexpected error: %v", err)
	}
	var names []string
	for _, definition := range definitions {
		names = append(names, definition.Name)
	}
	if diff := cmp.Diff([]string{"percImage", "percNavigation", "percRawHtml"}, names); diff != "" {
		t.Fatalf("seeded definitions mismatch (-want +got):\n%s", diff)
	}
	if container.CommandHandlers() != nil {
		t.Fatal("expected no command handlers when commands are disabled")
	}
}

func TestContainerMergeResolvesSeededDefinitions(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Commands = true

	reg := fixtures.NewRecordingRegistry()
	var results []regionscmd.MergePageResult
	container, err := di.NewContainer(cfg,
		di.WithTemplateFS(templateFiles()),
		di.WithCommandRegistry(reg),
		di.WithCommandOptions(regionscmd.WithMergeSink(func(_ context.Context, result regionscmd.MergePageResult) {
			results = append(results, result)
		})),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	handlers := container.CommandHandlers()
	if handlers == nil || len(reg.Handlers) != 2 {
		t.Fatalf("expected command handlers to be registered, got %#v", reg.Handlers)
	}

	if err := handlers.Merge.Execute(context.Background(), regionscmd.MergePageCommand{
		TemplatePath: "page.html",
		BranchesPath: "page.json",
	}); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one merge result, got %d", len(results))
	}

	merged := results[0].Merged
	main, ok := merged.Region("main")
	if !ok || main.Owner != regions.OwnerPage || len(main.Widgets) != 1 {
		t.Fatalf("unexpected main region %+v", main)
	}
	if main.Widgets[0].Definition == nil || main.Widgets[0].Definition.Name != "percImage" {
		t.Fatalf("expected percImage definition to be resolved, got %+v", main.Widgets[0].Definition)
	}
	aside, ok := merged.Region("aside")
	if !ok || aside.Owner != regions.OwnerTemplate {
		t.Fatalf("unexpected aside region %+v", aside)
	}
	if aside.Widgets[0].Definition == nil || aside.Widgets[0].Definition.Category != "navigation" {
		t.Fatalf("expected percNavigation definition to be resolved, got %+v", aside.Widgets[0].Definition)
	}
}

func TestContainerParserFollowsConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Parser.MatchMode = "token"
	cfg.Parser.Strict = true

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	tree, err := container.Parser().Parse(`<div class="not-perc-regionX" id="a"></div><div class="x perc-region" id="b"></div>`)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"b"}, tree.RegionIDs()); diff != "" {
		t.Fatalf("token mode region ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := container.Parser().Parse(`<div class="perc-region" id="open">`); !errors.Is(err, regions.ErrUnclosedRegion) {
		t.Fatalf("expected strict mode ErrUnclosedRegion, got %v", err)
	}
}

func TestContainerWithBunSQLiteStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Dialect = "sqlite"
	cfg.Storage.DSN = "file:container_storage?mode=memory&cache=shared"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	definition, err := container.WidgetService().LoadDefinition(context.Background(), "percRawHtml")
	if err != nil {
		t.Fatalf("LoadDefinition() unexpected error: %v", err)
	}
	if definition.Category != "content" {
		t.Fatalf("expected content category, got %+v", definition)
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = ""

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestContainerUsesInjectedWidgetService(t *testing.T) {
	svc := widgets.NewService(widgets.NewMemoryDefinitionRepository())
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithWidgetService(svc))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.WidgetService() != svc {
		t.Fatal("expected injected widget service")
	}
	if container.WidgetRegistry() != nil {
		t.Fatal("expected no registry when a widget service is injected")
	}
	definitions, err := svc.ListDefinitions(context.Background())
	if err != nil {
		t.Fatalf("ListDefinitions() unexpected error: %v", err)
	}
	if len(definitions) != 0 {
		t.Fatalf("expected injected service to stay empty, got %d definitions", len(definitions))
	}
}
