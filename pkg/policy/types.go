package policy

import "fmt"

// APIVersion is the document schema version written by this release.
const APIVersion = "paperflow/v1"

// KindPolicy is the kind discriminator for policy documents.
const KindPolicy = "Policy"

// MatchStrategy controls how a policy's conditions are combined.
type MatchStrategy string

const (
	// MatchAll requires every condition to match.
	MatchAll MatchStrategy = "ALL"

	// MatchAny requires at least one condition to match.
	MatchAny MatchStrategy = "ANY"
)

// ConditionType identifies how a single match condition is evaluated upstream.
type ConditionType string

const (
	// ConditionKeyword matches on literal keyword presence.
	ConditionKeyword ConditionType = "keyword"

	// ConditionLLMVerify asks a language model to verify a prompt against the document.
	ConditionLLMVerify ConditionType = "llm_verify"

	// ConditionSemantic matches on embedding similarity above a threshold.
	ConditionSemantic ConditionType = "semantic"
)

// ActionKind identifies one side-effecting step in a policy's action list.
type ActionKind string

const (
	// ActionRename renames the file using a configured pattern.
	ActionRename ActionKind = "rename"

	// ActionAutoRename renames the file using the built-in auto naming scheme.
	// It takes no configuration and is the default rename when no pattern is set.
	ActionAutoRename ActionKind = "auto_rename"

	// ActionMove is a legacy kind from older policy rows. It is dispatched to
	// the rename handler, whose pattern may include a directory component.
	ActionMove ActionKind = "move"

	// ActionLogCSV appends one row describing the document to a CSV file.
	ActionLogCSV ActionKind = "log_csv"

	// ActionNotify interpolates and logs a notification message.
	ActionNotify ActionKind = "notify"

	// ActionCopy copies the file to a local destination directory.
	ActionCopy ActionKind = "copy"

	// ActionCopyToRemote uploads the file to the configured remote storage.
	ActionCopyToRemote ActionKind = "copy_to_remote"

	// ActionWebhook issues an HTTP POST with an interpolated JSON payload.
	ActionWebhook ActionKind = "webhook"
)

// Condition is one match condition. Evaluation semantics live upstream; the
// fields here are carried through storage verbatim.
type Condition struct {
	Type          ConditionType `json:"type" yaml:"type"`
	Value         string        `json:"value,omitempty" yaml:"value,omitempty"`
	Prompt        string        `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Threshold     float64       `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	CaseSensitive bool          `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
}

// MatchSpec describes which documents a policy applies to.
type MatchSpec struct {
	Strategy   MatchStrategy `json:"strategy" yaml:"strategy"`
	Conditions []Condition   `json:"conditions" yaml:"conditions"`
}

// Transformer derives an additional variable from one extracted value.
// Name selects the derivation (get_year, get_month, get_month_name) and As
// is the variable key the result is written under.
type Transformer struct {
	Name string `json:"name" yaml:"name"`
	As   string `json:"as" yaml:"as"`
}

// ExtractField declares one field the extraction stage should produce.
type ExtractField struct {
	Key          string        `json:"key" yaml:"key"`
	Type         string        `json:"type" yaml:"type"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Required     bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Transformers []Transformer `json:"transformers,omitempty" yaml:"transformers,omitempty"`
}

// ActionSpec is one entry in a policy's ordered action list. Config is a
// free-form bag whose keys depend on the action kind.
type ActionSpec struct {
	Kind   ActionKind     `json:"kind" yaml:"kind"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ConfigString returns the string value under key, or "" when absent or not
// a string.
func (a *ActionSpec) ConfigString(key string) string {
	if a.Config == nil {
		return ""
	}
	if s, ok := a.Config[key].(string); ok {
		return s
	}
	return ""
}

// ConfigBool returns the bool value under key, or false when absent.
func (a *ActionSpec) ConfigBool(key string) bool {
	if a.Config == nil {
		return false
	}
	b, _ := a.Config[key].(bool)
	return b
}

// Metadata carries a policy's identity and scheduling attributes. Priority
// orders execution (higher first). Only Enabled, Name, Description, Tags and
// Priority may change through a partial update; everything else requires a
// full Save.
type Metadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Version     int      `json:"version,omitempty" yaml:"version,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    int      `json:"priority" yaml:"priority"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
}

// Spec is the functional half of a policy document.
type Spec struct {
	Match   MatchSpec      `json:"match" yaml:"match"`
	Extract []ExtractField `json:"extract,omitempty" yaml:"extract,omitempty"`
	Actions []ActionSpec   `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Policy is a complete policy document as persisted and as served by the
// registry. PolicyID mirrors Metadata.ID and is the upsert key together with
// the owning user.
type Policy struct {
	PolicyID   string   `json:"policy_id" yaml:"policy_id"`
	APIVersion string   `json:"api_version" yaml:"api_version"`
	Kind       string   `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata" yaml:"metadata"`
	Spec       Spec     `json:"spec" yaml:"spec"`
}

// MetadataPatch is the narrow set of attributes a partial update may change.
// Nil fields are left untouched.
type MetadataPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Priority    *int      `json:"priority,omitempty"`
	Enabled     *bool     `json:"enabled,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p *MetadataPatch) IsZero() bool {
	return p.Name == nil && p.Description == nil && p.Tags == nil &&
		p.Priority == nil && p.Enabled == nil
}

// Apply merges the patch into md.
func (p *MetadataPatch) Apply(md *Metadata) {
	if p.Name != nil {
		md.Name = *p.Name
	}
	if p.Description != nil {
		md.Description = *p.Description
	}
	if p.Tags != nil {
		md.Tags = *p.Tags
	}
	if p.Priority != nil {
		md.Priority = *p.Priority
	}
	if p.Enabled != nil {
		md.Enabled = *p.Enabled
	}
}

// KnownActionKinds lists every action kind the pipeline can dispatch,
// including legacy kinds kept for old policy rows.
func KnownActionKinds() []ActionKind {
	return []ActionKind{
		ActionRename,
		ActionAutoRename,
		ActionMove,
		ActionLogCSV,
		ActionNotify,
		ActionCopy,
		ActionCopyToRemote,
		ActionWebhook,
	}
}

// IsKnownActionKind reports whether kind is dispatchable.
func IsKnownActionKind(kind ActionKind) bool {
	for _, k := range KnownActionKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log output.
func (p *Policy) String() string {
	return fmt.Sprintf("policy %q (priority=%d, enabled=%t, actions=%d)",
		p.Metadata.ID, p.Metadata.Priority, p.Metadata.Enabled, len(p.Spec.Actions))
}
