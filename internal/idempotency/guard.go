// Package idempotency keeps a short-lived record of finished report keys so
// a redelivered job does not regenerate and re-upload the same report.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"student-report-worker/internal/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "report:status:"

// Guard records terminal job status per output key. A missing entry means
// the key has never completed, so a lost Redis record only costs a repeat
// of otherwise idempotent work.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Guard {
	return &Guard{client: client, ttl: ttl}
}

// AlreadyDone reports whether the output key has already been completed.
// Only a recorded DONE counts; an ERROR record allows a retry.
func (g *Guard) AlreadyDone(ctx context.Context, outputKey string) (bool, error) {
	val, err := g.client.Get(ctx, keyPrefix+outputKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read idempotency record for %s: %w", outputKey, err)
	}
	return val == string(models.StatusDone), nil
}

// Mark records the terminal status for an output key.
func (g *Guard) Mark(ctx context.Context, outputKey string, status models.JobStatus) error {
	if err := g.client.Set(ctx, keyPrefix+outputKey, string(status), g.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write idempotency record for %s: %w", outputKey, err)
	}
	return nil
}
