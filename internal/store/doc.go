// Package store persists small string values under string keys.
//
// It stands in for browser local storage: the rate limiter, the diagnostic
// logs and the review history all keep JSON documents here. Backends are
// in-memory, one-file-per-key on disk, Pebble and Redis.
package store
