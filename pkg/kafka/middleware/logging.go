package kafka_middleware

import (
	"context"
	"time"

	"tablebook/pkg/kafka"
	"tablebook/pkg/logger"
)

// LoggingProducerMiddleware writes one line per published message: debug on
// success, error with the cause on failure.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(context.Context, kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := append(msg.LogAttrs(), "duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			log.ErrorContext(ctx, "Kafka publish failed", append(attrs, "error", err)...)
			return err
		}
		log.DebugContext(ctx, "Kafka message published", attrs...)
		return nil
	}
}
