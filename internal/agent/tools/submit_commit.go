package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// SubmitCommitToolName is the name the model calls to hand back its result
const SubmitCommitToolName = "submit_commit"

// CommitTypes are the accepted Conventional Commits types
var CommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor", "perf", "test", "chore", "build", "ci", "revert",
}

// IsCommitType reports whether t is one of CommitTypes
func IsCommitType(t string) bool {
	for _, ct := range CommitTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// SubmitCommitParams represents the parameters for the submit_commit tool
type SubmitCommitParams struct {
	// Type is the commit type (required)
	Type string `json:"type" jsonschema:"required,description=The type of commit: feat fix docs style refactor perf test chore build ci revert"`

	// Scope is the commit scope (optional)
	// Example: auth, api, ui, etc.
	Scope string `json:"scope,omitempty" jsonschema:"description=The scope of the commit (e.g. auth api ui)"`

	// Description is the subject line (required)
	Description string `json:"description" jsonschema:"required,description=Short description of the change. Use imperative mood. Do not end with period."`

	Body string `json:"body,omitempty" jsonschema:"description=Detailed description explaining what and why. Bullet lists start with '- '."`

	// Footer is for breaking changes or issue references (optional)
	Footer string `json:"footer,omitempty" jsonschema:"description=Footer for breaking changes or issue references. Example: BREAKING CHANGE: xxx or Closes #123"`

	Breaking bool `json:"breaking,omitempty" jsonschema:"description=True when the change breaks backwards compatibility"`

	// Remark is shown to the user but never becomes part of the message
	Remark string `json:"remark,omitempty" jsonschema:"description=Optional note to the developer. Not included in the commit message."`
}

// Normalize trims whitespace and lowercases the type
func (p *SubmitCommitParams) Normalize() {
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	p.Scope = strings.TrimSpace(p.Scope)
	p.Description = strings.TrimSpace(p.Description)
	p.Body = strings.TrimSpace(p.Body)
	p.Footer = strings.TrimSpace(p.Footer)
	p.Remark = strings.TrimSpace(p.Remark)
}

// Validate validates the commit parameters
func (p *SubmitCommitParams) Validate() error {
	if p.Type == "" {
		return fmt.Errorf("commit type is required")
	}
	if !IsCommitType(p.Type) {
		return fmt.Errorf("invalid commit type: %s", p.Type)
	}
	if p.Description == "" {
		return fmt.Errorf("commit description is required")
	}
	if strings.Contains(p.Description, "\n") {
		return fmt.Errorf("commit description must be a single line")
	}
	return nil
}

// ParseSubmitCommit decodes, normalizes and validates streamed tool arguments
func ParseSubmitCommit(arguments string) (*SubmitCommitParams, error) {
	var params SubmitCommitParams
	if err := json.Unmarshal([]byte(arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse %s arguments: %w", SubmitCommitToolName, err)
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

// SubmitCommitToolInfo describes the tool to the chat model
func SubmitCommitToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: SubmitCommitToolName,
		Desc: "Submit the structured commit information. This tool MUST be called to return the commit message.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"type": {
				Type:     schema.String,
				Desc:     "Commit type: " + strings.Join(CommitTypes, ", "),
				Enum:     CommitTypes,
				Required: true,
			},
			"scope": {
				Type: schema.String,
				Desc: "Commit scope (optional)",
			},
			"description": {
				Type:     schema.String,
				Desc:     "Short description (subject line, imperative mood, no trailing period)",
				Required: true,
			},
			"body": {
				Type: schema.String,
				Desc: "Detailed description explaining what and why (optional). Use '- ' for bullet points",
			},
			"footer": {
				Type: schema.String,
				Desc: "Footer for breaking changes or issue references (optional)",
			},
			"breaking": {
				Type: schema.Boolean,
				Desc: "Set to true for a breaking change",
			},
			"remark": {
				Type: schema.String,
				Desc: "Optional note for the developer, for example a suggestion to split the change. Not part of the commit message",
			},
		}),
	}
}
