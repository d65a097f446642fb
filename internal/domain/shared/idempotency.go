package shared

import (
	"context"
	"time"
)

// IdempotencyStore is a best-effort duplicate filter for inbound messages.
// It sits in front of the durable ProcessedMessage check: a hit lets a
// consumer skip a redelivered message without opening a database
// transaction, a miss proves nothing.
type IdempotencyStore interface {
	// MarkProcessed marks a message as processed with a TTL
	// Returns true if the message was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a message has already been processed
	IsProcessed(ctx context.Context, messageID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed message IDs
	TTL time.Duration

	// Enabled determines whether the fast-path duplicate filter is consulted
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
