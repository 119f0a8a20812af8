// Package session keeps in-flight handshake state between the two rounds of
// a registration or login.
//
// A Store maps a correlation key to the server-side session created by the
// first round. The second round takes the session out exactly once. Entries
// that are never completed expire after a TTL, either lazily on access or
// through Sweep, which Run calls on a timer.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrKeyCollision is returned by Insert when a live session already uses the key.
	ErrKeyCollision = errors.New("session key already in use")

	// ErrCapacity is returned by Insert when the store holds MaxEntries live sessions.
	ErrCapacity = errors.New("session store is full")
)

type entry[T any] struct {
	value   T
	expires time.Time
}

// Store is safe for concurrent use. The zero value is not usable; call NewStore.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]

	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	onEvict    func(key string, value T)
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithMaxEntries bounds the number of live sessions. Zero or less means unbounded.
func WithMaxEntries[T any](n int) Option[T] {
	return func(s *Store[T]) { s.maxEntries = n }
}

// WithClock replaces time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) { s.now = now }
}

// WithEvictHook registers fn to be called for every session removed because
// it expired. fn runs without the store lock held.
func WithEvictHook[T any](fn func(key string, value T)) Option[T] {
	return func(s *Store[T]) { s.onEvict = fn }
}

// NewStore creates a store whose sessions live for ttl. A ttl of zero or less
// disables expiry.
func NewStore[T any](ttl time.Duration, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[T]) expired(e entry[T], now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Insert stores value under key unless a live session already holds it.
// An expired session under the same key is evicted and replaced.
func (s *Store[T]) Insert(key string, value T) error {
	var evicted []evictedEntry[T]
	defer func() { s.notify(evicted) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if cur, ok := s.entries[key]; ok {
		if !s.expired(cur, now) {
			return ErrKeyCollision
		}
		delete(s.entries, key)
		evicted = append(evicted, evictedEntry[T]{key, cur.value})
	}

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		evicted = append(evicted, s.sweepLocked(now)...)
		if len(s.entries) >= s.maxEntries {
			return ErrCapacity
		}
	}

	e := entry[T]{value: value}
	if s.ttl > 0 {
		e.expires = now.Add(s.ttl)
	}
	s.entries[key] = e
	return nil
}

// Take removes the session stored under key and returns it. The second
// return value is false when the key is unknown, already taken or expired.
// Of any number of concurrent Take calls for one key at most one succeeds.
func (s *Store[T]) Take(key string) (T, bool) {
	var zero T

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if !ok {
		return zero, false
	}
	if s.expired(e, s.now()) {
		s.notify([]evictedEntry[T]{{key, e.value}})
		return zero, false
	}
	return e.value, true
}

// Abort drops the session under key without handing it out. It reports
// whether a session was present.
func (s *Store[T]) Abort(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Len returns the number of stored sessions, including expired ones that
// have not been swept yet.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts every session that has expired at now and returns how many
// were removed.
func (s *Store[T]) Sweep(now time.Time) int {
	s.mu.Lock()
	evicted := s.sweepLocked(now)
	s.mu.Unlock()

	s.notify(evicted)
	return len(evicted)
}

// Run sweeps the store every interval until ctx is cancelled.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

type evictedEntry[T any] struct {
	key   string
	value T
}

func (s *Store[T]) sweepLocked(now time.Time) []evictedEntry[T] {
	var evicted []evictedEntry[T]
	for k, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, k)
			evicted = append(evicted, evictedEntry[T]{k, e.value})
		}
	}
	return evicted
}

func (s *Store[T]) notify(evicted []evictedEntry[T]) {
	if s.onEvict == nil {
		return
	}
	for _, e := range evicted {
		s.onEvict(e.key, e.value)
	}
}
