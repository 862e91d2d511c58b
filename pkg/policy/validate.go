package policy

import "fmt"

// Validate checks the structural well-formedness of a policy document. It has
// no side effects and does not consult storage.
//
// A valid policy has a non-empty metadata id, a recognized match strategy,
// typed conditions, extraction fields with unique non-empty keys, and actions
// whose kinds are dispatchable.
func (p *Policy) Validate() error {
	if p == nil {
		return NewValidationError("", "policy cannot be nil")
	}

	if p.Metadata.ID == "" {
		return NewValidationError("metadata.id", "policy id cannot be empty")
	}
	if p.PolicyID != "" && p.PolicyID != p.Metadata.ID {
		return NewValidationError("policy_id",
			fmt.Sprintf("policy_id %q does not match metadata.id %q", p.PolicyID, p.Metadata.ID))
	}

	switch p.Spec.Match.Strategy {
	case MatchAll, MatchAny:
	case "":
		// Absent strategy defaults to ALL at evaluation time.
	default:
		return NewValidationError("spec.match.strategy",
			fmt.Sprintf("unknown strategy %q", p.Spec.Match.Strategy))
	}

	for i, cond := range p.Spec.Match.Conditions {
		switch cond.Type {
		case ConditionKeyword, ConditionLLMVerify, ConditionSemantic:
		default:
			return NewValidationError(fmt.Sprintf("spec.match.conditions[%d].type", i),
				fmt.Sprintf("unknown condition type %q", cond.Type))
		}
	}

	seen := make(map[string]bool, len(p.Spec.Extract))
	for i, field := range p.Spec.Extract {
		if field.Key == "" {
			return NewValidationError(fmt.Sprintf("spec.extract[%d].key", i),
				"extract field key cannot be empty")
		}
		if seen[field.Key] {
			return NewValidationError(fmt.Sprintf("spec.extract[%d].key", i),
				fmt.Sprintf("duplicate extract field key %q", field.Key))
		}
		seen[field.Key] = true

		for j, tr := range field.Transformers {
			if tr.Name == "" || tr.As == "" {
				return NewValidationError(
					fmt.Sprintf("spec.extract[%d].transformers[%d]", i, j),
					"transformer requires both name and target key")
			}
		}
	}

	for i, action := range p.Spec.Actions {
		if !IsKnownActionKind(action.Kind) {
			return NewValidationError(fmt.Sprintf("spec.actions[%d].kind", i),
				fmt.Sprintf("unknown action kind %q", action.Kind))
		}
	}

	return nil
}

// Normalize fills derivable fields on a policy document before persistence:
// policy_id from metadata.id, api_version and kind when absent.
func (p *Policy) Normalize() {
	if p.PolicyID == "" {
		p.PolicyID = p.Metadata.ID
	}
	if p.APIVersion == "" {
		p.APIVersion = APIVersion
	}
	if p.Kind == "" {
		p.Kind = KindPolicy
	}
}
