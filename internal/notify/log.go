package notify

import (
	"context"
	"io"
	"log"

	"minishop/internal/cart"
)

// LogSink writes every notification to a logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink writes to logger, or discards when it is nil.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogSink{logger: logger}
}

// Publish logs n and never fails.
func (s *LogSink) Publish(_ context.Context, n cart.Notification) error {
	s.logger.Printf("cart notification: kind=%s product_id=%d message=%q", n.Kind, n.ProductID, n.Message)
	return nil
}
