// Package limits provides the two rate-limiting mechanisms of Beacon.
//
// # Cooldown gate
//
// The Gate enforces a minimum interval between admitted requests per client
// key by delaying early arrivals, never rejecting them. Waits are
// cooperative (timer + context), so a waiting request blocks no one else.
// Admission slots are reserved atomically per key, giving the invariant
// that two admissions for the same key start at least the cooldown apart.
//
// # Abuse monitor
//
// The Monitor counts requests per key over a fixed window and reports when
// a key crosses the configured threshold, debounced to one notification per
// key per window. It only observes; enforcement is the operator's call.
//
// # State
//
// Both mechanisms keep per-key state in sharded maps with per-shard locks.
// The maps are never evicted, a deliberate constraint matching the observed
// production behaviour. The storage sub-package can persist cooldown state
// across restarts.
package limits
