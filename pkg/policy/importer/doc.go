// Package importer syncs policy documents from YAML files on disk into the
// registry, optionally watching the source directory and re-syncing on
// change. It exists so deployments can manage policies as files under
// version control instead of through API calls.
package importer
