// Package store persists the session state of the authorization flow.
//
// Two entries are kept in a [KV] backend:
//
//   - [TokenKey] : the serialized [TokenRecord] (access token, refresh token and absolute expiry)
//   - [StateKey] : the CSRF nonce generated before redirecting to the authorization page
//
// Backends are selected by [New]: [MemoryKV] for tests and single-shot processes,
// [SQLiteKV] for the CLI (state survives the browser round trip between processes), and
// [RedisKV] when several processes share one session.
//
// [TokenStore] owns the token record; no other component writes [TokenKey] directly.
// Every write replaces the whole record with a single Set, so readers never observe a partial record.
package store
