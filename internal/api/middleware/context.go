package middleware

import (
	"context"
	"net/http"
	"slices"
)

type contextKey string

const (
	keyNameKey      contextKey = "key_name"
	keyPrefixKey    contextKey = "key_prefix"
	apiKeyScopesKey contextKey = "api_key_scopes"
)

// WithAPIKey returns ctx carrying the identity of an authenticated key.
func WithAPIKey(ctx context.Context, name, prefix string, scopes []string) context.Context {
	ctx = context.WithValue(ctx, keyNameKey, name)
	ctx = context.WithValue(ctx, keyPrefixKey, prefix)
	return context.WithValue(ctx, apiKeyScopesKey, scopes)
}

// KeyName returns the name of the key that authenticated r.
func KeyName(r *http.Request) (string, bool) {
	name, ok := r.Context().Value(keyNameKey).(string)
	return name, ok
}

func getKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

func getScopes(r *http.Request) []string {
	scopes, _ := r.Context().Value(apiKeyScopesKey).([]string)
	return scopes
}

// HasScope reports whether the authenticated key carries scope. Admin
// implies every scope.
func HasScope(r *http.Request, scope string) bool {
	scopes := getScopes(r)
	return slices.Contains(scopes, scope) || slices.Contains(scopes, "admin")
}
