package commands

import (
	"context"
	"errors"
	"io/fs"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-regions/internal/regions/codec"
	"github.com/goliatone/go-regions/internal/templates"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	regionsDocumentInvalid   = "REGIONS_DOCUMENT_INVALID"
	regionsSourceNotFound    = "REGIONS_SOURCE_NOT_FOUND"
	templateSlugInvalid      = "TEMPLATE_SLUG_INVALID"
	widgetDefinitionRequired = "WIDGET_DEFINITION_REQUIRED"
)

// domainError tags a sentinel that reaches the handler without a go-errors
// category. Region tree and merge errors are categorised at their source and
// never need an entry here.
type domainError struct {
	sentinel error
	category goerrors.Category
	message  string
	code     string
}

var domainErrors = []domainError{
	{codec.ErrInvalidDocument, goerrors.CategoryValidation, "regions document invalid", regionsDocumentInvalid},
	{templates.ErrSlugInvalid, goerrors.CategoryValidation, "template slug invalid", templateSlugInvalid},
	{templates.ErrWidgetDefinitionRequired, goerrors.CategoryValidation, "widget definition required", widgetDefinitionRequired},
	{fs.ErrNotExist, goerrors.CategoryNotFound, "regions source not found", regionsSourceNotFound},
}

// Errors already carrying a go-errors category pass through untouched.

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	for _, domain := range domainErrors {
		if errors.Is(err, domain.sentinel) {
			return goerrors.Wrap(err, domain.category, domain.message).
				WithTextCode(domain.code)
		}
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}
