// Package diag keeps the capped, newest-first logs codelens persists for
// troubleshooting: raw provider errors, successful responses and past
// reviews. Each log is a JSON array under a fixed store key.
package diag
