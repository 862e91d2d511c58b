package fieldschema

// Defaults returns the compiled-in baseline field set used when an owner has
// no active schema version. The returned slice is a fresh copy; callers may
// disable entries but the defaults themselves never change.
func Defaults() []Field {
	return []Field{
		{Key: "date", Type: "date", Description: "Document date (issue date if present)", Enabled: true, IsDefault: true},
		{Key: "issuer", Type: "string", Description: "Issuing company or sender", Enabled: true, IsDefault: true},
		{Key: "document_type", Type: "string", Description: "Document category (invoice, contract, letter, ...)", Enabled: true, IsDefault: true},
		{Key: "amount", Type: "currency", Description: "Total amount if the document is financial", Enabled: true, IsDefault: true},
		{Key: "recipient", Type: "string", Description: "Addressed recipient", Enabled: true, IsDefault: true},
		{Key: "suggested_filename", Type: "string", Description: "Filename suggested by the extraction stage", Enabled: true, IsDefault: true},
	}
}
