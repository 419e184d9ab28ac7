package templates

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-regions/internal/identity"
	"github.com/goliatone/go-regions/internal/logging"
	"github.com/goliatone/go-regions/internal/regions"
	"github.com/goliatone/go-regions/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

var (
	ErrWidgetDefinitionRequired = errors.New("templates: widget definitionId required")
	ErrSlugInvalid              = errors.New("templates: slug invalid")
)

// LoaderConfig configures how template files are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is the root directory where templates live.
	BasePath string
	// Pattern limits discovered files to those matching the glob (defaults to "*.html").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Document is a loaded template file.
type Document struct {
	ID       uuid.UUID
	Path     string
	Name     string
	Slug     string
	Checksum []byte
	Custom   map[string]any
	Template regions.Template
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load events.
func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loader turns template files into region trees with their widget assignments.
type Loader struct {
	fs        fs.FS
	parser    *regions.Parser
	logger    interfaces.Logger
	basePath  string
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader over filesystem. A nil parser uses the
// default region parser.
func NewLoader(filesystem fs.FS, parser *regions.Parser, cfg LoaderConfig, opts ...LoaderOption) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.html"
	}
	if parser == nil {
		parser = regions.NewParser()
	}

	l := &Loader{
		fs:        filesystem,
		parser:    parser,
		logger:    logging.NoOp(),
		basePath:  filepath.ToSlash(filepath.Clean(cfg.BasePath)),
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and parses a single template.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := l.resolve(name)
	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("template loader read %s: %w", rel, err)
	}
	return l.Parse(rel, data)
}

// Parse builds a Document from template source. name is used for logging
// and as the slug fallback.
func (l *Loader) Parse(name string, source []byte) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	slugValue, err := normalizeSlug(meta.Slug, meta.Name, name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	logger := logging.WithTemplateContext(l.logger, name, slugValue)

	tree, err := l.parser.Parse(string(body))
	if err != nil {
		logger.Warn("templates.parse.failed", "error", err)
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	for _, regionID := range sortedRegionIDs(meta.Widgets) {
		if _, ok := tree.Region(regionID); !ok && regionID != regions.RootRegionID {
			logger.Warn("templates.widgets.unknown_region", "region_id", regionID)
		}
	}

	sum := sha256.Sum256(source)
	doc := &Document{
		ID:       identity.TemplateUUID(slugValue),
		Path:     name,
		Name:     meta.Name,
		Slug:     slugValue,
		Checksum: sum[:],
		Custom:   meta.Custom,
		Template: regions.NewTemplate(tree, meta.Widgets),
	}
	logger.Debug("templates.load.completed",
		"regions", len(tree.RegionIDs()),
		"widget_regions", len(meta.Widgets),
	)
	return doc, nil
}

// LoadDirectory discovers templates under dir and returns them ordered by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := l.resolve(dir)
	var results []*Document

	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if matched, _ := path.Match(l.pattern, path.Base(current)); !matched {
			return nil
		}

		data, err := fs.ReadFile(l.fs, current)
		if err != nil {
			return fmt.Errorf("template loader read %s: %w", current, err)
		}
		doc, err := l.Parse(current, data)
		if err != nil {
			return err
		}
		results = append(results, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func (l *Loader) resolve(name string) string {
	name = filepath.ToSlash(strings.TrimSpace(name))
	if name == "" || name == "." {
		if l.basePath == "" {
			return "."
		}
		return l.basePath
	}
	if l.basePath == "" || l.basePath == "." || strings.HasPrefix(name, l.basePath+"/") {
		return path.Clean(name)
	}
	return path.Join(l.basePath, name)
}

func normalizeSlug(explicit, name, file string) (string, error) {
	if explicit != "" {
		if !slug.IsValid(explicit) {
			return "", fmt.Errorf("%w: %q", ErrSlugInvalid, explicit)
		}
		return explicit, nil
	}
	source := name
	if source == "" {
		base := path.Base(filepath.ToSlash(file))
		source = strings.TrimSuffix(base, path.Ext(base))
	}
	normalized, err := slug.Normalize(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSlugInvalid, err)
	}
	return normalized, nil
}

func sortedRegionIDs(widgets map[string][]regions.WidgetItem) []string {
	keys := make([]string, 0, len(widgets))
	for key := range widgets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
