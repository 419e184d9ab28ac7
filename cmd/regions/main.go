package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-regions"
	"github.com/goliatone/go-regions/internal/regions/codec"
)

var moduleBuilder = regions.New

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("regions: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("regions", flag.ContinueOnError)
	templatePath := fs.String("template", "", "Template file to parse")
	branchesPath := fs.String("branches", "", "Optional page branches JSON file merged over the template")
	format := fs.String("format", "tree", "Output format: tree or json")
	matchMode := fs.String("match", "substring", "Marker match mode: substring or token")
	strict := fs.Bool("strict", false, "Reject region start tags without an end tag")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*templatePath) == "" {
		return fmt.Errorf("template is required")
	}
	switch *format {
	case "tree", "json":
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	cfg := regions.DefaultConfig()
	cfg.Templates.BasePath = filepath.Dir(*templatePath)
	cfg.Parser.MatchMode = *matchMode
	cfg.Parser.Strict = *strict

	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	ctx := context.Background()
	doc, err := module.Templates().LoadFile(ctx, filepath.Base(*templatePath))
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}

	if *branchesPath == "" {
		if *format == "json" {
			data, err := codec.EncodeTree(doc.Template.Tree)
			if err != nil {
				return err
			}
			return writeJSON(stdout, data)
		}
		writeTree(stdout, doc.Template.Tree)
		return nil
	}

	raw, err := os.ReadFile(*branchesPath)
	if err != nil {
		return fmt.Errorf("read branches: %w", err)
	}
	branches, err := codec.DecodeBranches(raw)
	if err != nil {
		return fmt.Errorf("decode branches: %w", err)
	}
	merged, err := module.Merge(ctx, doc.Template, branches)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if *format == "json" {
		data, err := codec.EncodeMerged(merged)
		if err != nil {
			return err
		}
		return writeJSON(stdout, data)
	}
	writeMerged(stdout, merged.Root(), 0)
	return nil
}

func writeJSON(w io.Writer, data []byte) error {
	_, err := fmt.Fprintln(w, string(data))
	return err
}

func writeTree(w io.Writer, tree *regions.ParsedRegionTree) {
	tree.Walk(func(_ regions.NodeID, node regions.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		if node.IsRegion() {
			fmt.Fprintf(w, "%s%s\n", indent, node.RegionID)
		} else {
			fmt.Fprintf(w, "%s(code %d bytes)\n", indent, len(node.TemplateCode))
		}
		return true
	})
}

func writeMerged(w io.Writer, region *regions.MergedRegion, depth int) {
	fmt.Fprintf(w, "%s%s [%s]", strings.Repeat("  ", depth), region.RegionID, region.Owner)
	for _, widget := range region.Widgets {
		fmt.Fprintf(w, " %s:%s", widget.Item.ID, widget.Item.DefinitionID)
	}
	fmt.Fprintln(w)
	for _, child := range region.Children {
		if child.Region != nil {
			writeMerged(w, child.Region, depth+1)
		}
	}
}
