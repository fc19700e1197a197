package ctxutil

import "context"

// userIDKeyType is unexported to avoid collisions with other context keys.
type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// WithUserID injects a user id into the context. Meant to be called by the
// auth middleware after a successful token validation.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the user id from the context.
func GetUserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(userIDKey)
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
