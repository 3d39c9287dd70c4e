package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrInvalidMessage = errors.New("invalid message")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderOriginalTopic = "original-topic"
	HeaderDLQError      = "dlq-error"
	HeaderDLQTimestamp  = "dlq-timestamp"
)

// Message is a JSON event ready for the producer. Topic is filled in by
// Publish.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Timestamp time.Time
}

type MessageOption func(*Message)

// WithHeader sets an arbitrary header. Empty values are skipped.
func WithHeader(key, value string) MessageOption {
	return func(m *Message) {
		if value != "" {
			m.Headers[key] = value
		}
	}
}

func WithCorrelationID(id string) MessageOption { return WithHeader(HeaderCorrelationID, id) }

func WithSchemaVersion(version string) MessageOption {
	return WithHeader(HeaderSchemaVersion, version)
}

func WithSource(source string) MessageOption { return WithHeader(HeaderSource, source) }

// WithTimestamp overrides the event time, which defaults to now.
func WithTimestamp(ts time.Time) MessageOption {
	return func(m *Message) { m.Timestamp = ts.UTC() }
}

// NewEventMessage encodes payload as JSON and stamps the event id, type and
// time headers. key picks the partition.
func NewEventMessage(eventType, key string, payload any, opts ...MessageOption) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	msg := Message{
		Key:       key,
		Value:     value,
		Headers:   map[string]string{HeaderEventType: eventType},
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&msg)
	}

	if msg.Headers[HeaderEventID] == "" {
		msg.Headers[HeaderEventID] = uuid.NewString()
	}
	msg.Headers[HeaderTimestamp] = msg.Timestamp.Format(time.RFC3339)
	return msg, nil
}

func (m Message) DecodeValue(v any) error {
	return json.Unmarshal(m.Value, v)
}

func (m Message) EventID() string       { return m.Headers[HeaderEventID] }
func (m Message) EventType() string     { return m.Headers[HeaderEventType] }
func (m Message) CorrelationID() string { return m.Headers[HeaderCorrelationID] }

// LogAttrs are the fields producer middleware attaches to log lines.
func (m Message) LogAttrs() []any {
	return []any{
		"topic", m.Topic,
		"key", m.Key,
		"event_id", m.EventID(),
		"event_type", m.EventType(),
		"correlation_id", m.CorrelationID(),
	}
}
