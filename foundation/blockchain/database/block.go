package database

import (
	"encoding/json"
	"fmt"
)

// SerializationVersion identifies the canonical payload encoding used for
// hashing. Any change to the Payload shape or its encoding must bump this
// value since it invalidates every block mined under the old encoding.
const SerializationVersion = 1

// =============================================================================

// BlockHeader represents the proof artifacts for a block.
type BlockHeader struct {
	Nonce     uint64 `json:"nonce"`     // Value identified to solve the hash solution.
	BlockHash string `json:"blockHash"` // Hash of the serialized payload at mining time.
}

// Payload represents the content being chained. The field order is part of
// the canonical encoding and must not change.
type Payload[T any] struct {
	Sequence     uint64 `json:"sequence"`     // Position of the block in the chain, genesis is 0.
	TimeStamp    int64  `json:"timestamp"`    // Epoch milliseconds when the payload was constructed.
	Data         T      `json:"data"`         // Opaque data carried by the block.
	PreviousHash string `json:"previousHash"` // Block hash of the parent, empty for genesis.
}

// Serialize returns the canonical encoding of the payload used for hashing.
func (p Payload[T]) Serialize() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("serialize payload[%d]: %w", p.Sequence, err)
	}

	return string(data), nil
}

// Block represents a payload with the proof that was found for it. Once a
// block is written to storage it is never changed.
type Block[T any] struct {
	Header  BlockHeader `json:"header"`
	Payload Payload[T]  `json:"payload"`
}

// ShortHash returns the first 12 characters of a hash for display.
func ShortHash(hash string) string {
	const size = 12

	if len(hash) <= size {
		return hash
	}

	return hash[:size]
}
