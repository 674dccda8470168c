package adapter

import (
	"context"
	"time"
)

// AssetSigner mints time-boxed retrieval URLs for stored objects.
type AssetSigner interface {
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
