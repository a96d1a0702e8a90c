package interfaces

import (
	"context"
	"time"
)

// ICache stores serialized values by key. Get reports a miss with found=false
// and a nil error.
type ICache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context) error
	Close() error
}
