package chain

import "errors"

// Set of errors returned when validating, appending, or mining blocks.
// Callers are expected to use errors.Is to react to each failure mode.
var (
	ErrChainLinkage       = errors.New("previous hash does not match the chain tip")
	ErrProofInvalid       = errors.New("hash does not satisfy the proof of work")
	ErrHeaderHashMismatch = errors.New("header block hash does not match the payload")
	ErrEmptyChain         = errors.New("chain has no blocks")
	ErrMiningCancelled    = errors.New("mining cancelled")
)
