package answer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ragdemo/internal/metrics"
)

// Instrumented decorates an Asker with metrics and logging.
type Instrumented struct {
	next     Asker
	provider string
	logger   *zap.Logger
}

// NewInstrumented wraps next; provider labels metrics and log lines.
func NewInstrumented(next Asker, provider string, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{next: next, provider: provider, logger: logger}
}

// Ask forwards to the wrapped Asker and records the outcome.
func (a *Instrumented) Ask(ctx context.Context, prompt, userID string) Result {
	start := time.Now()
	res := a.next.Ask(ctx, prompt, userID)
	elapsed := time.Since(start)

	metrics.AnswerRequestsTotal.WithLabelValues(a.provider, res.Kind.String()).Inc()
	metrics.AnswerRequestDuration.WithLabelValues(a.provider).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("provider", a.provider),
		zap.String("outcome", res.Kind.String()),
		zap.Duration("elapsed", elapsed),
	}
	switch res.Kind {
	case Success:
		a.logger.Info("model answered", fields...)
	case HTTPError:
		a.logger.Warn("model endpoint returned error", append(fields, zap.Int("status", res.StatusCode))...)
	default:
		a.logger.Error("model request failed", append(fields, zap.Error(res.Err))...)
	}
	return res
}
