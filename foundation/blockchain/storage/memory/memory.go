// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Memory represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory[T any] struct {
	mu     sync.RWMutex
	blocks []database.Block[T]
}

// New constructs an empty Memory value for use.
func New[T any]() *Memory[T] {
	return &Memory[T]{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory[T]) Close() error {
	return nil
}

// Write appends the block. The block sequence must be the next sequence in
// the chain.
func (m *Memory[T]) Write(block database.Block[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := uint64(len(m.blocks))
	if block.Payload.Sequence != l {
		return fmt.Errorf("%w: got %d, exp %d", database.ErrOutOfOrder, block.Payload.Sequence, l)
	}

	m.blocks = append(m.blocks, block)

	return nil
}

// GetBlock returns the block with the specified sequence.
func (m *Memory[T]) GetBlock(sequence uint64) (database.Block[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if sequence >= uint64(len(m.blocks)) {
		return database.Block[T]{}, fmt.Errorf("%w: sequence %d", database.ErrBlockNotFound, sequence)
	}

	return m.blocks[sequence], nil
}

// Last returns the most recently written block.
func (m *Memory[T]) Last() (database.Block[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return database.Block[T]{}, database.ErrBlockNotFound
	}

	return m.blocks[len(m.blocks)-1], nil
}

// Count returns the number of blocks in storage.
func (m *Memory[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}

// Copy returns a snapshot of the blocks. Changing the returned slice does
// not affect storage.
func (m *Memory[T]) Copy() []database.Block[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blocks := make([]database.Block[T], len(m.blocks))
	copy(blocks, m.blocks)

	return blocks
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (m *Memory[T]) ForEach() database.Iterator[T] {
	return &memoryIterator[T]{storage: m, eoc: m.Count() == 0}
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the blocks in memory. This implements the database Iterator
// interface.
type memoryIterator[T any] struct {
	storage *Memory[T] // Access to the storage API.
	current uint64     // Current block sequence being iterated over.
	eoc     bool       // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator[T]) Next() (database.Block[T], error) {
	if mi.eoc {
		return database.Block[T]{}, database.ErrEndOfChain
	}

	block, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
		return database.Block[T]{}, database.ErrEndOfChain
	}

	mi.current++
	if mi.current >= uint64(mi.storage.Count()) {
		mi.eoc = true
	}

	return block, nil
}

// Done returns the end of chain value.
func (mi *memoryIterator[T]) Done() bool {
	return mi.eoc
}
