package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const updateIDKey contextKey = "update_id"

// Err returns an error attribute.
func Err(err error) slog.Attr {
	return slog.Any("err", err)
}

func ContextWithUpdateID(ctx context.Context, updateID int) context.Context {
	return context.WithValue(ctx, updateIDKey, updateID)
}

func UpdateIDFromContext(ctx context.Context) (int, bool) {
	updateID, ok := ctx.Value(updateIDKey).(int)
	return updateID, ok
}
