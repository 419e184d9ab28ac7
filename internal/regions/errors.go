package regions

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrRegionIDRequired indicates a region start tag without an id attribute.
	ErrRegionIDRequired = errors.New("regions: region id required")
	// ErrDuplicateRegionID indicates two regions in one tree share an id.
	ErrDuplicateRegionID = errors.New("regions: duplicate region id")
	// ErrUnclosedRegion is returned in strict mode for a region start tag without a matching end tag.
	ErrUnclosedRegion = errors.New("regions: region start tag has no end tag")
	// ErrInvalidParent indicates an append against a node that is not a region.
	ErrInvalidParent = errors.New("regions: parent must be a region node")
	// ErrTemplateTreeRequired guards merge against a missing template tree.
	ErrTemplateTreeRequired = errors.New("regions: template tree required")
	// ErrBranchesRequired guards merge against missing page branches.
	ErrBranchesRequired = errors.New("regions: region branches required")
)

const (
	codeRegionIDRequired   = "REGION_ID_REQUIRED"
	codeRegionIDDuplicate  = "REGION_ID_DUPLICATE"
	codeRegionUnclosed     = "REGION_UNCLOSED"
	codeInvalidParent      = "REGION_INVALID_PARENT"
	codeMergeInputRequired = "MERGE_INPUT_REQUIRED"
)

func validationError(sentinel error, code string, format string, args ...any) error {
	cause := sentinel
	if format != "" {
		cause = fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
	}
	return goerrors.Wrap(cause, goerrors.CategoryValidation, sentinel.Error()).
		WithTextCode(code)
}
