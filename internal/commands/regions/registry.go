package regionscmd

import (
	"errors"
	"io/fs"

	"github.com/goliatone/go-regions/internal/commands"
	"github.com/goliatone/go-regions/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterRegionCommands.
type HandlerSet struct {
	Parse *ParseTemplateHandler
	Merge *MergePageHandler
}

// Dependencies are the collaborators the region handlers need.
type Dependencies struct {
	Templates TemplateSource
	Merger    PageMerger
	Files     fs.FS
	Gates     FeatureGates
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	parseHandlerOpts []commands.HandlerOption[ParseTemplateCommand]
	mergeHandlerOpts []commands.HandlerOption[MergePageCommand]
	parseSink        ResultSink[ParseTemplateResult]
	mergeSink        ResultSink[MergePageResult]
}

// WithParseHandlerOptions forwards options to the ParseTemplateHandler constructor.
func WithParseHandlerOptions(opts ...commands.HandlerOption[ParseTemplateCommand]) Option {
	return func(cfg *options) {
		cfg.parseHandlerOpts = append(cfg.parseHandlerOpts, opts...)
	}
}

// WithMergeHandlerOptions forwards options to the MergePageHandler constructor.
func WithMergeHandlerOptions(opts ...commands.HandlerOption[MergePageCommand]) Option {
	return func(cfg *options) {
		cfg.mergeHandlerOpts = append(cfg.mergeHandlerOpts, opts...)
	}
}

// WithParseSink receives parse results.
func WithParseSink(sink ResultSink[ParseTemplateResult]) Option {
	return func(cfg *options) {
		cfg.parseSink = sink
	}
}

// WithMergeSink receives merge results.
func WithMergeSink(sink ResultSink[MergePageResult]) Option {
	return func(cfg *options) {
		cfg.mergeSink = sink
	}
}

// RegisterRegionCommands builds the region command handlers and registers them
// with reg when it is non-nil.
func RegisterRegionCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if deps.Templates == nil {
		return nil, errors.New("regions command registration: template source is nil")
	}
	if deps.Merger == nil {
		return nil, errors.New("regions command registration: merger is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "regions")

	parseHandler := NewParseTemplateHandler(deps.Templates, logger, deps.Gates, cfg.parseSink, cfg.parseHandlerOpts...)
	mergeHandler := NewMergePageHandler(deps.Templates, deps.Merger, deps.Files, logger, deps.Gates, cfg.mergeSink, cfg.mergeHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(parseHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(mergeHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Parse: parseHandler,
		Merge: mergeHandler,
	}, nil
}
