// Package mempool maintains the data waiting to be mined into blocks.
package mempool

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entry does not exist in the pool.
var ErrNotFound = errors.New("entry not found")

// Entry represents data waiting to be mined.
type Entry[T any] struct {
	ID        string    `json:"id"`
	TimeStamp time.Time `json:"timestamp"`
	Data      T         `json:"data"`

	order uint64
}

// Mempool represents a cache of pending data keyed by a unique id.
type Mempool[T any] struct {
	pool  map[string]Entry[T]
	added uint64
	mu    sync.RWMutex
}

// New constructs a new, empty mempool.
func New[T any]() *Mempool[T] {
	return &Mempool[T]{
		pool: make(map[string]Entry[T]),
	}
}

// Count returns the current number of entries in the pool.
func (mp *Mempool[T]) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add places the data into the pool and returns the new entry.
func (mp *Mempool[T]) Add(data T) Entry[T] {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.added++

	entry := Entry[T]{
		ID:        uuid.NewString(),
		TimeStamp: time.Now().UTC(),
		Data:      data,
		order:     mp.added,
	}

	mp.pool[entry.ID] = entry

	return entry
}

// Delete removes an entry from the pool.
func (mp *Mempool[T]) Delete(id string) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[id]; !exists {
		return ErrNotFound
	}

	delete(mp.pool, id)

	return nil
}

// Truncate clears all the entries from the pool.
func (mp *Mempool[T]) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]Entry[T])
}

// Copy returns the entries in the order they were added.
func (mp *Mempool[T]) Copy() []Entry[T] {
	mp.mu.RLock()
	entries := make([]Entry[T], 0, len(mp.pool))
	for _, entry := range mp.pool {
		entries = append(entries, entry)
	}
	mp.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].order < entries[j].order
	})

	return entries
}

// PickOldest returns the entry that has been waiting the longest.
func (mp *Mempool[T]) PickOldest() (Entry[T], bool) {
	entries := mp.Copy()
	if len(entries) == 0 {
		return Entry[T]{}, false
	}

	return entries[0], true
}
