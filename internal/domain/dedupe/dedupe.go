// Package dedupe drops repeated (player, match) records from a batch.
package dedupe

import (
	"context"
	"sync"

	"github.com/okian/xpoints/internal/domain/model"
)

// Deduper records seen record keys so a batch scores each pair once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a later record with it is accepted again.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper keeps keys in a map. In bounded mode the oldest key is
// evicted once maxSize is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, bounded mode only
	maxSize int      // 0 or negative = unbounded
}

// NewInMemoryDeduper creates a deduper. It is unbounded by default.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	if d.maxSize > 0 {
		for i, k := range d.order {
			if k == key {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if len(d.order) == 0 {
		return
	}
	delete(d.seen, d.order[0])
	d.order = d.order[1:]
}

// Size returns the number of keys currently held.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// Filter returns recs without repeats of an earlier (player, match) key, and
// the number of records dropped. A later row replaces the values of an
// earlier one, since re-exported rows correct what came before, but the pair
// keeps the position it was first seen at.
func Filter(ctx context.Context, d Deduper, recs []model.PlayerMatchRecord) ([]model.PlayerMatchRecord, int) {
	out := make([]model.PlayerMatchRecord, 0, len(recs))
	slot := make(map[string]int, len(recs))
	dropped := 0
	for i := range recs {
		key := recs[i].Key()
		if d.SeenAndRecord(ctx, key) {
			dropped++
			if j, ok := slot[key]; ok {
				out[j] = recs[i]
			}
			continue
		}
		slot[key] = len(out)
		out = append(out, recs[i])
	}
	return out, dropped
}
