package messaging

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultDedupCapacity bounds the idempotency cache when no capacity is
// configured.
const DefaultDedupCapacity = 10000

// Dedup is the bounded set of processed event ids used to skip duplicate
// deliveries. It is process-local and not persisted: a restart resets it,
// so duplicate suppression is best-effort across restarts. Safe for
// concurrent use.
type Dedup struct {
	cache *lru.Cache[string, struct{}]
}

func NewDedup(capacity int) (*Dedup, error) {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	cache, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Dedup{cache: cache}, nil
}

// Seen reports whether eventID was already processed. A hit refreshes the
// entry's recency so hot ids survive eviction pressure.
func (d *Dedup) Seen(eventID string) bool {
	_, ok := d.cache.Get(eventID)
	return ok
}

// Mark records eventID as processed, evicting the least-recently-used id
// once capacity is exceeded.
func (d *Dedup) Mark(eventID string) {
	d.cache.Add(eventID, struct{}{})
}

func (d *Dedup) Len() int { return d.cache.Len() }
