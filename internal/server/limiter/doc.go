// Package limiter keeps one token bucket per client key.
//
// Both the expression server (per remote IP connection rate) and the ops
// HTTP middleware (per client IP request rate) use a Set. Buckets idle
// for longer than a configured duration are pruned by a janitor.
package limiter
