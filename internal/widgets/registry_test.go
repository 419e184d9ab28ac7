package widgets

import (
	"testing"

	"github.com/goliatone/go-regions/internal/runtimeconfig"
	"github.com/google/go-cmp/cmp"
)

func TestRegistryListIsSortedAndCaseInsensitive(t *testing.T) {
	registry := NewRegistry()
	registry.Register(RegisterDefinitionInput{Name: "percRawHtml"})
	registry.Register(RegisterDefinitionInput{Name: "percImage"})
	registry.Register(RegisterDefinitionInput{Name: "PERCIMAGE"})
	registry.Register(RegisterDefinitionInput{Name: "  "})

	var names []string
	for _, input := range registry.List() {
		names = append(names, input.Name)
	}
	if diff := cmp.Diff([]string{"PERCIMAGE", "percRawHtml"}, names); diff != "" {
		t.Fatalf("registry list mismatch (-want +got):\n%s", diff)
	}

	if _, ok := registry.Lookup("percimage"); !ok {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatal("expected missing lookup to fail")
	}
}

func TestRegistryRegisterFactoryUsesProducedName(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterFactory("", func() RegisterDefinitionInput {
		return RegisterDefinitionInput{Name: "percNavigation"}
	})
	registry.RegisterFactory("ignored", nil)

	if _, ok := registry.Lookup("percNavigation"); !ok {
		t.Fatal("expected factory to register under produced name")
	}
	if got := len(registry.List()); got != 1 {
		t.Fatalf("expected 1 registration, got %d", got)
	}
}

func TestRegistryFromConfig(t *testing.T) {
	registry := RegistryFromConfig(runtimeconfig.DefaultConfig().Widgets.Definitions)

	input, ok := registry.Lookup("percImage")
	if !ok {
		t.Fatal("expected percImage to be registered from config")
	}
	if input.Category == nil || *input.Category != "media" {
		t.Fatalf("expected media category, got %+v", input.Category)
	}
	if input.Description == nil || *input.Description == "" {
		t.Fatalf("expected description to be carried over")
	}
}
