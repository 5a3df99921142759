// Package middleware provides stage interceptors for vocabgen runs.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/broady/vocabgen"
)

// LoggingInterceptor creates an interceptor that logs pipeline stages using slog.
// It logs the start and end of each stage, including duration, item count
// and error status.
func LoggingInterceptor(logger *slog.Logger) vocabgen.StageInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, stage vocabgen.Stage, next vocabgen.StageFunc) (int, error) {
		start := time.Now()
		attrs := []any{
			slog.String("stage", string(stage)),
			slog.String("run", vocabgen.RunID(ctx)),
		}

		logger.DebugContext(ctx, "stage started", attrs...)

		n, err := next(ctx)
		attrs = append(attrs, slog.Duration("duration", time.Since(start)))

		if err != nil {
			logger.ErrorContext(ctx, "stage failed", append(attrs, slog.Any("error", err))...)
		} else {
			logger.InfoContext(ctx, "stage completed", append(attrs, slog.Int("count", n))...)
		}

		return n, err
	}
}
