package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/ekaraca/tutorly/internal/observability"
)

type instrumentedClient struct {
	next    Client
	metrics *observability.Metrics
}

// WithMetrics wraps a client so every completion records its round-trip
// latency and failures land in the error counter by code.
func WithMetrics(next Client, m *observability.Metrics) Client {
	if m == nil {
		return next
	}
	return &instrumentedClient{next: next, metrics: m}
}

func (c *instrumentedClient) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	start := time.Now()
	out, err := c.next.Complete(ctx, messages, model)
	c.metrics.ObserveOracleLatency(time.Since(start))
	if err != nil {
		c.metrics.OracleErrors.WithLabelValues(completionErrorCode(err)).Inc()
	}
	return out, err
}

func completionErrorCode(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "transport"
	}
}
