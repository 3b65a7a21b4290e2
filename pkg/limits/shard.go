package limits

import (
	"hash/fnv"
	"sync"
)

// shardCount is the number of lock shards for per-key state. Mutation is
// per-key; sharding keeps unrelated keys off the same lock on the hot path.
const shardCount = 64

// shardedKeys maps string keys to per-shard locks. Both the cooldown gate
// and the abuse monitor build their state on it.
//
// The maps grow without bound: stale client keys are never evicted. This
// matches the observed production behaviour and is a documented constraint,
// not an oversight; a TTL sweep would be the production hardening.
type shardedKeys[V any] struct {
	shards [shardCount]struct {
		mu   sync.Mutex
		keys map[string]V
	}
}

func newShardedKeys[V any]() *shardedKeys[V] {
	s := &shardedKeys[V]{}
	for i := range s.shards {
		s.shards[i].keys = make(map[string]V)
	}
	return s
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}

// update applies fn to the entry for key under the shard lock and stores
// the returned value. fn receives the zero value when the key is new.
func (s *shardedKeys[V]) update(key string, fn func(v V) V) {
	shard := &s.shards[shardIndex(key)]
	shard.mu.Lock()
	shard.keys[key] = fn(shard.keys[key])
	shard.mu.Unlock()
}

// snapshot copies every entry, shard by shard. Used for persistence; it
// never holds more than one shard lock at a time.
func (s *shardedKeys[V]) snapshot() map[string]V {
	out := make(map[string]V)
	for i := range s.shards {
		shard := &s.shards[i]
		shard.mu.Lock()
		for k, v := range shard.keys {
			out[k] = v
		}
		shard.mu.Unlock()
	}
	return out
}

// restore replaces entries from a saved snapshot.
func (s *shardedKeys[V]) restore(entries map[string]V) {
	for k, v := range entries {
		shard := &s.shards[shardIndex(k)]
		shard.mu.Lock()
		shard.keys[k] = v
		shard.mu.Unlock()
	}
}
