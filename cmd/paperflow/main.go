// Paperflow is a document intake automation service.
//
// Extracted document metadata is matched against user-defined policies and
// run through an ordered chain of actions (rename, copy, upload, notify,
// webhook) that transform a file's location and name and leave an auditable
// trace.
//
// Usage:
//
//	# Start the service with default configuration
//	paperflow run
//
//	# Start with a custom configuration file
//	paperflow run --config /path/to/config.yaml
//
//	# Run a policy's actions against documents
//	paperflow process --user alice --policy invoices --data extracted.json scan1.pdf scan2.pdf
//
//	# Manage policies
//	paperflow policy list --user alice
//	paperflow policy validate policies/*.yaml
//	paperflow policy import policies/ --user system
//
//	# Manage field schema versions
//	paperflow schema list --user alice
//	paperflow schema activate --user alice <version-id>
//
//	# Inspect and prune the audit trail
//	paperflow audit list --document doc-123
//	paperflow audit prune
package main

func main() {
	Execute()
}
