// Package database defines the block types for the blockchain and the
// behavior required by any package that stores them.
package database

import "errors"

// Set of errors returned by storage implementations.
var (
	ErrOutOfOrder    = errors.New("block is out of order")
	ErrBlockNotFound = errors.New("block does not exist")
	ErrEndOfChain    = errors.New("end of chain")
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain. There is
// no way to change or remove a block once it has been written.
type Storage[T any] interface {
	Write(block Block[T]) error
	GetBlock(sequence uint64) (Block[T], error)
	Last() (Block[T], error)
	Count() int
	Copy() []Block[T]
	ForEach() Iterator[T]
	Close() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator[T any] interface {
	Next() (Block[T], error)
	Done() bool
}
