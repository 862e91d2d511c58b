package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// UserIDKey is the context key for the acting user.
	UserIDKey contextKey = "user_id"

	// DocumentIDKey is the context key for the document being processed.
	DocumentIDKey contextKey = "document_id"

	// PolicyIDKey is the context key for the policy being applied.
	PolicyIDKey contextKey = "policy_id"
)

// WithUserID adds the acting user to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID retrieves the acting user from the context.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// WithDocumentID adds the document identifier to the context.
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, DocumentIDKey, documentID)
}

// GetDocumentID retrieves the document identifier from the context.
func GetDocumentID(ctx context.Context) string {
	if documentID, ok := ctx.Value(DocumentIDKey).(string); ok {
		return documentID
	}
	return ""
}

// WithPolicyID adds the policy identifier to the context.
func WithPolicyID(ctx context.Context, policyID string) context.Context {
	return context.WithValue(ctx, PolicyIDKey, policyID)
}

// GetPolicyID retrieves the policy identifier from the context.
func GetPolicyID(ctx context.Context) string {
	if policyID, ok := ctx.Value(PolicyIDKey).(string); ok {
		return policyID
	}
	return ""
}

// FromContext returns the default logger enriched with whatever intake
// fields the context carries.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if userID := GetUserID(ctx); userID != "" {
		logger = logger.With("user_id", userID)
	}
	if documentID := GetDocumentID(ctx); documentID != "" {
		logger = logger.With("document_id", documentID)
	}
	if policyID := GetPolicyID(ctx); policyID != "" {
		logger = logger.With("policy_id", policyID)
	}
	return logger
}
