package regionscmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-regions/internal/commands"
	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/internal/regions/codec"
	"github.com/goliatone/go-regions/internal/templates"
	"github.com/goliatone/go-regions/pkg/interfaces"
)

const (
	parseOperation = "regions.template.parse"
	mergeOperation = "regions.page.merge"
	inlineTemplate = "inline"
)

// ErrRegionsFeatureDisabled is returned when the commands feature flag is disabled at runtime.
var ErrRegionsFeatureDisabled = errors.New("regions command: feature disabled")

// TemplateSource loads templates from files or raw source.
type TemplateSource interface {
	LoadFile(ctx context.Context, path string) (*templates.Document, error)
	Parse(name string, source []byte) (*templates.Document, error)
}

// PageMerger merges page branches onto a template.
type PageMerger interface {
	Merge(ctx context.Context, template regions.Template, branches *regions.RegionBranches) (*regions.MergedRegionTree, error)
}

// ResultSink receives command results after a successful execution.
type ResultSink[R any] func(ctx context.Context, result R)

// ParseTemplateResult is handed to the parse sink.
type ParseTemplateResult struct {
	Command  ParseTemplateCommand
	Document *templates.Document
}

// MergePageResult is handed to the merge sink.
type MergePageResult struct {
	Command  MergePageCommand
	Document *templates.Document
	Merged   *regions.MergedRegionTree
}

// FeatureGates toggles command execution at runtime.
type FeatureGates struct {
	CommandsEnabled func() bool
}

func (g FeatureGates) commandsEnabled() bool {
	if g.CommandsEnabled == nil {
		return true
	}
	return g.CommandsEnabled()
}

var (
	_ command.Commander[ParseTemplateCommand] = (*ParseTemplateHandler)(nil)
	_ command.Commander[MergePageCommand]     = (*MergePageHandler)(nil)
)

// ParseTemplateHandler parses templates via the shared command handler foundation.
type ParseTemplateHandler struct {
	inner *commands.Handler[ParseTemplateCommand]
}

// NewParseTemplateHandler creates a handler bound to source. sink may be nil.
func NewParseTemplateHandler(source TemplateSource, logger interfaces.Logger, gates FeatureGates, sink ResultSink[ParseTemplateResult], opts ...commands.HandlerOption[ParseTemplateCommand]) *ParseTemplateHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ParseTemplateCommand) error {
		if !gates.commandsEnabled() {
			return ErrRegionsFeatureDisabled
		}
		doc, err := loadTemplate(ctx, source, msg.Path, msg.Markup)
		if err != nil {
			return err
		}
		logging.WithTemplateContext(baseLogger, doc.Path, doc.Slug).Info("regions.command.template_parse.completed",
			"regions", len(doc.Template.Tree.RegionIDs()),
		)
		if sink != nil {
			sink(ctx, ParseTemplateResult{Command: msg, Document: doc})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ParseTemplateCommand]{
		commands.WithLogger[ParseTemplateCommand](baseLogger),
		commands.WithOperation[ParseTemplateCommand](parseOperation),
		commands.WithMessageFields(func(msg ParseTemplateCommand) map[string]any {
			if msg.Path != "" {
				return map[string]any{"template_path": msg.Path}
			}
			return map[string]any{"template_path": inlineTemplate}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ParseTemplateCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ParseTemplateHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ParseTemplateCommand].
func (h *ParseTemplateHandler) Execute(ctx context.Context, msg ParseTemplateCommand) error {
	return h.inner.Execute(ctx, msg)
}

// MergePageHandler merges page branches onto templates via the shared command handler foundation.
type MergePageHandler struct {
	inner *commands.Handler[MergePageCommand]
}

// NewMergePageHandler creates a handler bound to the template source and
// merger. Branch files named by BranchesPath are read from files.
func NewMergePageHandler(source TemplateSource, merger PageMerger, files fs.FS, logger interfaces.Logger, gates FeatureGates, sink ResultSink[MergePageResult], opts ...commands.HandlerOption[MergePageCommand]) *MergePageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg MergePageCommand) error {
		if !gates.commandsEnabled() {
			return ErrRegionsFeatureDisabled
		}
		doc, err := loadTemplate(ctx, source, msg.TemplatePath, "")
		if err != nil {
			return err
		}
		branches, err := loadBranches(files, msg)
		if err != nil {
			return err
		}
		merged, err := merger.Merge(ctx, doc.Template, branches)
		if err != nil {
			return err
		}
		logging.WithTemplateContext(baseLogger, doc.Path, doc.Slug).Info("regions.command.page_merge.completed",
			"regions", len(merged.RegionIDs()),
			"overrides", len(branches.Overrides()),
		)
		if sink != nil {
			sink(ctx, MergePageResult{Command: msg, Document: doc, Merged: merged})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[MergePageCommand]{
		commands.WithLogger[MergePageCommand](baseLogger),
		commands.WithOperation[MergePageCommand](mergeOperation),
		commands.WithMessageFields(func(msg MergePageCommand) map[string]any {
			fields := map[string]any{"template_path": msg.TemplatePath}
			if msg.BranchesPath != "" {
				fields["branches_path"] = msg.BranchesPath
			}
			if len(msg.BranchesJSON) > 0 {
				fields["branches_bytes"] = len(msg.BranchesJSON)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MergePageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MergePageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MergePageCommand].
func (h *MergePageHandler) Execute(ctx context.Context, msg MergePageCommand) error {
	return h.inner.Execute(ctx, msg)
}

func loadTemplate(ctx context.Context, source TemplateSource, path, markup string) (*templates.Document, error) {
	if strings.TrimSpace(path) != "" {
		return source.LoadFile(ctx, path)
	}
	return source.Parse(inlineTemplate, []byte(markup))
}

func loadBranches(files fs.FS, msg MergePageCommand) (*regions.RegionBranches, error) {
	switch {
	case len(msg.BranchesJSON) > 0:
		return codec.DecodeBranches(msg.BranchesJSON)
	case strings.TrimSpace(msg.BranchesPath) != "":
		if files == nil {
			return nil, fmt.Errorf("regions command: no filesystem configured for %s", msg.BranchesPath)
		}
		data, err := fs.ReadFile(files, strings.TrimSpace(msg.BranchesPath))
		if err != nil {
			return nil, fmt.Errorf("regions command read %s: %w", msg.BranchesPath, err)
		}
		return codec.DecodeBranches(data)
	default:
		return regions.NewRegionBranches(nil, nil), nil
	}
}
