package codec

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-regions/internal/validation"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	treeSchema     = mustCompile("schemas/tree.schema.json")
	branchesSchema = mustCompile("schemas/branches.schema.json")
)

// ErrInvalidDocument is matched by every DocumentError.
var ErrInvalidDocument = errors.New("codec: invalid document")

// DocumentError reports a payload that is not valid JSON or does not match
// its schema.
type DocumentError struct {
	Document string
	Issues   []validation.ValidationIssue
	Cause    error
}

func (e *DocumentError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("codec: invalid %s document: %v", e.Document, e.Cause)
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, location+": "+issue.Message)
	}
	return fmt.Sprintf("codec: invalid %s document: %s", e.Document, strings.Join(parts, "; "))
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

func validateDocument(schema *jsonschema.Schema, name string, data []byte) error {
	value, err := decodeAny(data)
	if err != nil {
		return &DocumentError{Document: name, Cause: err}
	}
	if err := validation.ValidateDocument(schema, value); err != nil {
		return &DocumentError{
			Document: name,
			Issues:   validation.Issues(err),
			Cause:    err,
		}
	}
	return nil
}

func mustCompile(path string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("codec: read %s: %v", path, err))
	}
	schema, err := validation.CompileDocumentSchema(raw)
	if err != nil {
		panic(fmt.Sprintf("codec: compile %s: %v", path, err))
	}
	return schema
}
