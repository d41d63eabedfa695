// Package ratelimit provides the in-process throttling primitives for the
// gateway's untrusted surfaces: a token-bucket counter, a bounded keyed
// limiter with LRU eviction and a background sweep, a penalizing limiter for
// the control-plane socket, and an optional Redis-backed window store for
// multi-process deployments.
//
// Callers pick a key namespace per abuse surface so budgets stay independent:
//
//	auth:<ip>              gateway authentication attempts per address
//	auth:device:<id>       authentication attempts per device identity
//	conn:<ip>              connection churn per address
//	req:<ip>               request volume per address
//	pair:<channel>:<id>    pairing requests per channel sender
//	hook:token:<token>     webhook deliveries per token
//	hook:path:<path>       webhook deliveries per path
//
// Exhausting login attempts for one IP must not exhaust an unrelated pairing
// budget for the same IP; namespacing is what guarantees that.
package ratelimit
