package middleware

import (
	"context"
	"log/slog"
	"time"

	"drively/internal/app/commands"
)

// Logging records every dispatched command with its outcome and duration.
func Logging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			result, err := nextFn(ctx, cmd)
			if logger != nil {
				if err != nil {
					logger.Warn("command failed", "command", cmd.Key(), "duration", time.Since(start), "error", err)
				} else {
					logger.Debug("command handled", "command", cmd.Key(), "duration", time.Since(start))
				}
			}
			return result, err
		})
	}
}
