// Package counters implements a stateful subscription to a set of cumulative
// platform counters. A Query is refreshed as a whole, one raw value per
// subscribed counter per cycle, and read back by logical key.
package counters

import (
	"fmt"
	"log"
)

// TicksPerSecond is the unit of raw counter samples: cumulative busy time is
// expressed in 100-nanosecond ticks.
const TicksPerSecond = 10_000_000

// Handle identifies one subscription inside a Source.
type Handle int

// Source is the platform half of a query: it resolves counter paths into
// handles, takes one batch sample per Sample call, and serves per-handle
// values out of the latest batch.
type Source interface {
	Subscribe(path string) (Handle, error)
	Sample() error
	Read(h Handle) (uint64, error)
}

type counter struct {
	handle Handle
	value  uint64
}

// Query owns the mapping from logical metric keys to counter subscriptions.
// It is not safe for concurrent use; callers serialize Refresh with reads.
type Query struct {
	source   Source
	counters map[string]*counter
}

// Open starts a query session on the given source. It returns nil when the
// counter subsystem is unavailable, in which case every dependent metric
// stays permanently unavailable for the run while all other metric categories
// are unaffected.
func Open(src Source) *Query {
	if src == nil {
		return nil
	}
	if err := src.Sample(); err != nil {
		log.Printf("counters: subsystem unavailable: %v", err)
		return nil
	}
	return &Query{
		source:   src,
		counters: make(map[string]*counter),
	}
}

// AddCounter subscribes path under the logical key and reports whether the
// key is registered. Adding the same key twice is a no-op returning true; a
// path that cannot be resolved is logged and skipped.
func (q *Query) AddCounter(path, key string) bool {
	if _, ok := q.counters[key]; ok {
		return true
	}
	h, err := q.source.Subscribe(path)
	if err != nil {
		log.Printf("counters: cannot subscribe %q: %v", path, err)
		return false
	}
	q.counters[key] = &counter{handle: h}
	return true
}

// Refresh pulls one fresh raw value for every added counter, overwriting the
// previous values. All counters reflect the same sampling instant modulo
// platform granularity. Must be called before any Get.
func (q *Query) Refresh() {
	if err := q.source.Sample(); err != nil {
		log.Printf("counters: refresh failed: %v", err)
		return
	}
	for key, c := range q.counters {
		v, err := q.source.Read(c.handle)
		if err != nil {
			log.Printf("counters: read %q failed: %v", key, err)
			continue
		}
		c.value = v
	}
}

// Get returns the raw sample stored for key by the last Refresh. Querying a
// key that was never added is a programming error and panics.
func (q *Query) Get(key string) uint64 {
	c, ok := q.counters[key]
	if !ok {
		panic(fmt.Sprintf("counters: key %q was never added to the query", key))
	}
	return c.value
}
