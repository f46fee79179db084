// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread over shards with murmur3; each shard has its own
// RWMutex, so unrelated keys rarely contend:
//
//	m := cmap.New[*rate.Limiter](cmap.WithShardCount(32))
//	l, _ := m.GetOrCompute(ip, newLimiter)
//
// All operations are safe for concurrent use. Range and DeleteFunc lock
// one shard at a time, so they do not see a consistent snapshot.
package cmap
