package utils

import "context"

// Value reads the value stored under key as a T.
func Value[T any](ctx context.Context, key any) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// GetString is Value for string keys set by the auth middleware. Empty
// strings count as missing.
func GetString(ctx context.Context, key any) (string, bool) {
	s, ok := Value[string](ctx, key)
	return s, ok && s != ""
}
