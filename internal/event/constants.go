package event

import "time"

// EventSchemaVersion is the current event schema version
const EventSchemaVersion = "1.0"

// Retry configuration
const (
	RetryQueueBufferSize = 256
	RetryMaxAttempts     = 5
	RetryInitialDelay    = 500 * time.Millisecond
)

// DeadLetterFilePermissions is the file mode for dead-letter files
const DeadLetterFilePermissions = 0o644

// Log messages
const (
	LogMsgEventPublishFailed    = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event dropped to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter"
	LogMsgEventRetryExhausted   = "Event retry exhausted, writing to dead-letter"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"

	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %w"
)

// CalculateRetryDelay returns baseDelay * 2^(attempt-1)
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	return baseDelay * time.Duration(1<<(attempt-1))
}
