package regionscmd

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	parseTemplateMessageType = "regions.template.parse"
	mergePageMessageType     = "regions.page.merge"
)

// ParseTemplateCommand parses a template either from a file (Path) or from
// inline Markup. Exactly one source must be provided.
type ParseTemplateCommand struct {
	Path   string `json:"path,omitempty"`
	Markup string `json:"markup,omitempty"`
}

// Type implements command.Message.
func (ParseTemplateCommand) Type() string { return parseTemplateMessageType }

// Validate ensures exactly one template source is set.
func (cmd ParseTemplateCommand) Validate() error {
	hasPath := strings.TrimSpace(cmd.Path) != ""
	hasMarkup := cmd.Markup != ""
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path,
			validation.When(!hasMarkup, validation.Required.Error("path or markup is required")),
			validation.By(exclusive(hasPath && hasMarkup, parseTemplateMessageType+".source_conflict", "path and markup are mutually exclusive")),
		),
	)
}

// MergePageCommand merges page branches onto the template at TemplatePath.
// Branches come from BranchesPath or inline BranchesJSON; with neither set
// the page contributes no overrides.
type MergePageCommand struct {
	TemplatePath string          `json:"template_path"`
	BranchesPath string          `json:"branches_path,omitempty"`
	BranchesJSON json.RawMessage `json:"branches_json,omitempty"`
}

// Type implements command.Message.
func (MergePageCommand) Type() string { return mergePageMessageType }

// Validate ensures a template is named and at most one branches source is set.
func (cmd MergePageCommand) Validate() error {
	hasPath := strings.TrimSpace(cmd.BranchesPath) != ""
	hasJSON := len(cmd.BranchesJSON) > 0
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.TemplatePath, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError(mergePageMessageType+".template_path_required", "template path is required")
			}
			return nil
		})),
		validation.Field(&cmd.BranchesPath,
			validation.By(exclusive(hasPath && hasJSON, mergePageMessageType+".branches_conflict", "branches path and branches json are mutually exclusive")),
		),
		validation.Field(&cmd.BranchesJSON, validation.By(func(value any) error {
			raw, _ := value.(json.RawMessage)
			if len(raw) > 0 && !json.Valid(raw) {
				return validation.NewError(mergePageMessageType+".branches_json_invalid", "branches json is not valid JSON")
			}
			return nil
		})),
	)
}

func exclusive(conflict bool, code, message string) validation.RuleFunc {
	return func(any) error {
		if conflict {
			return validation.NewError(code, message)
		}
		return nil
	}
}
