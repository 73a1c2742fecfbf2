// Package review contains the core types and client for LLM-based code
// review of a single file.
//
// Client.ReviewCode gates the request through the per-key cooldown, builds
// the prompt, dispatches it to the selected provider and normalizes the
// model's free-form answer into a Review. Normalization never fails: output
// that is not the expected JSON becomes FallbackReview and is recorded in the
// diagnostic error log.
//
// Rules files (rules.go) toggle focus areas, declare required checks that are
// listed in every prompt, and override issue types per category.
package review
