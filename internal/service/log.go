package service

import (
	"context"
	"log/slog"

	"github.com/listenupapp/catalog-server/internal/logger"
)

// logFor prefers the request-scoped logger carried by ctx.
func logFor(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	return logger.FromContext(ctx, fallback)
}
