// Package policy defines the document types for intake policies.
//
// A policy pairs a match specification (which documents it applies to) with
// an ordered list of extraction fields and an ordered list of actions. The
// persisted form is a versioned document:
//
//	{
//	  "policy_id": "tax-invoices",
//	  "api_version": "paperflow/v1",
//	  "kind": "Policy",
//	  "metadata": {"id": "tax-invoices", "name": "...", "priority": 10, "enabled": true},
//	  "spec": {"match": {...}, "extract": [...], "actions": [...]}
//	}
//
// Condition evaluation (keyword, llm_verify, semantic) happens upstream; this
// package only carries the condition definitions so they round-trip through
// storage unchanged.
//
// Subpackages:
//   - registry: TTL-cached read-through registry over a storage.Store
//   - importer: YAML file loading and directory watching for policy definitions
package policy
