package marker

import (
	"context"
	"time"
)

// Store records that a key was acted on recently. CheckAndMark is a single
// atomic operation: it reports whether the key was already marked inside its
// TTL window and, if it was not, marks it. Two concurrent calls for the same
// key must never both observe seen=false.
type Store interface {
	// CheckAndMark returns seen=true if key is already marked. Otherwise it
	// marks key for ttl and returns seen=false.
	CheckAndMark(ctx context.Context, key string, ttl time.Duration) (seen bool, err error)

	// Close releases any background resources held by the store.
	Close() error
}
