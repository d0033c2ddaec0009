package logger

import (
	"context"
	"os"

	"go.uber.org/zap"

	"mail-dispatch-service/pkg/trace"
)

// NewLogger builds the service logger. Production JSON output by default;
// set LOG_MODE=dev for console output during local work. Every line
// carries the service name.
func NewLogger() *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("LOG_MODE") == "dev" {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return l.With(zap.String("service", "mail-dispatch"))
}

// WithTrace returns a logger carrying the trace_id from the context, if any.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
