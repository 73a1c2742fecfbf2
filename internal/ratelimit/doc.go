// Package ratelimit enforces a minimum interval between review requests per
// provider and API key. The last request time is persisted in a store so the
// cooldown survives restarts.
package ratelimit
