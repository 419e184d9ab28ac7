package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-regions"
	"github.com/google/go-cmp/cmp"
)

func TestRunPrintsTemplateOutline(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-template", filepath.Join("testdata", "home.html")}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var regionLines []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if !strings.Contains(line, "(code") {
			regionLines = append(regionLines, line)
		}
	}
	want := []string{
		regions.RootRegionID,
		"  header",
		"  content",
		"    content/main",
		"    content/aside",
		"  footer",
	}
	if diff := cmp.Diff(want, regionLines); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMergesBranchesAsJSON(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{
		"-template", filepath.Join("testdata", "home.html"),
		"-branches", filepath.Join("testdata", "home.branches.json"),
		"-format", "json",
	}, &out)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	var doc struct {
		Owners map[string]string `json:"owners"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, out.String())
	}
	if doc.Owners["content/main"] != "PAGE" || doc.Owners["header"] != "TEMPLATE" {
		t.Fatalf("unexpected owners %v", doc.Owners)
	}
}

func TestRunRejectsMissingTemplate(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error when template flag is missing")
	}
	if err := run([]string{"-template", "x.html", "-format", "yaml"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRunReportsBootstrapErrors(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	boom := errors.New("boom")
	moduleBuilder = func(regions.Config, ...regions.Option) (*regions.Module, error) {
		return nil, boom
	}
	err := run([]string{"-template", filepath.Join("testdata", "home.html")}, &bytes.Buffer{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}
