package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
)

// pebbleKeyPrefix namespaces codelens keys inside the database.
const pebbleKeyPrefix = "kv:"

// Pebble is a durable on-disk Store.
type Pebble struct {
	db *pebble.DB
}

// NewPebble opens (or creates) a Pebble database in dir. A second process
// holding the lock is retried briefly before giving up.
func NewPebble(dir string) (*Pebble, error) {
	opts := &pebble.Options{}

	var (
		db  *pebble.DB
		err error
	)
	const maxRetries = 4
	for i := 0; i < maxRetries; i++ {
		db, err = pebble.Open(dir, opts)
		if err == nil {
			return &Pebble{db: db}, nil
		}
		if !strings.Contains(err.Error(), "lock") {
			return nil, fmt.Errorf("opening store %q: %w", dir, err)
		}
		time.Sleep(50 * time.Millisecond * time.Duration(1<<i))
	}
	return nil, fmt.Errorf("store %q is locked by another process: %w", dir, err)
}

func (p *Pebble) Get(_ context.Context, key string) (string, bool, error) {
	v, closer, err := p.db.Get([]byte(pebbleKeyPrefix + key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	// v is only valid until closer.Close.
	value := string(v)
	closer.Close()
	return value, true, nil
}

func (p *Pebble) Set(_ context.Context, key, value string) error {
	if err := p.db.Set([]byte(pebbleKeyPrefix+key), []byte(value), pebble.Sync); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (p *Pebble) Delete(_ context.Context, key string) error {
	if err := p.db.Delete([]byte(pebbleKeyPrefix+key), pebble.Sync); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (p *Pebble) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
