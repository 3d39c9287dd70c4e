package kafka

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	kafka_config "tablebook/pkg/kafka/config"
	"tablebook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type PublishFunc func(ctx context.Context, msg Message) error

// ProducerMiddleware wraps a publish call. Middleware registered first runs
// outermost.
type ProducerMiddleware func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error

// Producer writes event messages to one topic. Messages the broker refuses
// are copied to the dead letter topic when one is configured.
type Producer struct {
	mu         sync.RWMutex
	writer     messageWriter
	dlqWriter  messageWriter
	topic      string
	middleware []ProducerMiddleware
	publish    PublishFunc
	closed     bool
}

func NewProducer(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*Producer, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("kafka config is required")
	case len(cfg.Brokers) == 0:
		return nil, errors.New("at least one kafka broker is required")
	case topic == "":
		return nil, errors.New("kafka topic is required")
	}

	transport := &kafka.Transport{ClientID: cfg.ClientID}
	writer := newWriter(cfg, transport, topic, cfg.Acks(), log)
	writer.BatchSize = cfg.BatchSize
	writer.BatchTimeout = cfg.BatchTimeout
	writer.Async = cfg.Async

	var dlqWriter messageWriter
	if dlqTopic != "" {
		dlqWriter = newWriter(cfg, transport, dlqTopic, kafka.RequireAll, log)
	}

	return newProducer(writer, dlqWriter, topic, dlqTopic), nil
}

// newWriter hashes on the message key, so every event of one table lands on
// one partition in commit order.
func newWriter(cfg *kafka_config.Config, transport *kafka.Transport, topic string, acks kafka.RequiredAcks, log *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		Compression:  cfg.Codec(),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		Transport:    transport,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("Kafka writer error", "topic", topic, "detail", fmt.Sprintf(msg, args...))
		}),
	}
}

func newProducer(writer, dlqWriter messageWriter, topic, dlqTopic string) *Producer {
	p := &Producer{writer: writer, topic: topic}
	if dlqTopic != "" {
		p.dlqWriter = dlqWriter
	}
	p.publish = p.write
	return p
}

// Use appends middleware and rebuilds the publish chain.
func (p *Producer) Use(mw ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.middleware = append(p.middleware, mw)

	chain := PublishFunc(p.write)
	for _, m := range slices.Backward(p.middleware) {
		next := chain
		chain = func(ctx context.Context, msg Message) error { return m(ctx, msg, next) }
	}
	p.publish = chain
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	closed, publish := p.closed, p.publish
	p.mu.RUnlock()

	if closed {
		return ErrProducerClosed
	}
	if err := validate(msg); err != nil {
		return err
	}

	msg.Topic = p.topic
	return publish(ctx, msg)
}

func validate(msg Message) error {
	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}
	return nil
}

func (p *Producer) write(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, wireMessage(msg, msg.Headers, msg.Timestamp))
	if err == nil || p.dlqWriter == nil {
		return err
	}

	if dlqErr := p.deadLetter(ctx, msg, err); dlqErr != nil {
		return fmt.Errorf("dead letter write failed: %v (original error: %w)", dlqErr, err)
	}
	return err
}

// deadLetter copies msg to the DLQ with the failure attached. The caller's
// header map is left untouched.
func (p *Producer) deadLetter(ctx context.Context, msg Message, cause error) error {
	now := time.Now().UTC()
	headers := maps.Clone(msg.Headers)
	if headers == nil {
		headers = make(map[string]string, 3)
	}
	headers[HeaderOriginalTopic] = p.topic
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQTimestamp] = now.Format(time.RFC3339)

	return p.dlqWriter.WriteMessages(ctx, wireMessage(msg, headers, now))
}

func wireMessage(msg Message, headers map[string]string, ts time.Time) kafka.Message {
	out := kafka.Message{
		Key:     []byte(msg.Key),
		Value:   msg.Value,
		Time:    ts,
		Headers: make([]kafka.Header, 0, len(headers)),
	}
	for k, v := range headers {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

// Close flushes and closes both writers. It is safe to call more than once.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.writer != nil {
		errs = append(errs, p.writer.Close())
	}
	if p.dlqWriter != nil {
		errs = append(errs, p.dlqWriter.Close())
	}
	return errors.Join(errs...)
}
