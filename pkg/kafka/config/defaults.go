package kafka_config

import "time"

const (
	DefaultKafkaBrokers  = "localhost:9092"
	DefaultKafkaClientID = "tablebook"

	// Reservation events are small and rare, so batches flush almost at once.
	DefaultMaxAttempts  = 3
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 10 * time.Millisecond
	DefaultWriteTimeout = 5 * time.Second
	DefaultRequiredAcks = -1
	DefaultCompression  = "snappy"
	DefaultAsync        = false

	DefaultLogMessages = true
)

var (
	compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}
	acks         = []int{-1, 0, 1}
)
