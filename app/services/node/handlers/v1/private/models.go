package private

import (
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// header is the proof artifacts of a submitted block.
type header struct {
	Nonce     uint64 `json:"nonce"`
	BlockHash string `json:"blockHash" validate:"required,hexadecimal"`
}

// payload is the content of a submitted block.
type payload struct {
	Sequence     uint64     `json:"sequence" validate:"gt=0"`
	TimeStamp    int64      `json:"timestamp" validate:"gt=0"`
	Data         state.Data `json:"data"`
	PreviousHash string     `json:"previousHash" validate:"required,hexadecimal"`
}

// Validate checks the payload is well formed.
func (p payload) Validate() error {
	return validate.Check(p)
}

func (p payload) toPayload() state.Payload {
	return state.Payload{
		Sequence:     p.Sequence,
		TimeStamp:    p.TimeStamp,
		Data:         p.Data,
		PreviousHash: p.PreviousHash,
	}
}

// block is a block submitted by another miner.
type block struct {
	Header  header  `json:"header"`
	Payload payload `json:"payload"`
}

// Validate checks the block is well formed.
func (b block) Validate() error {
	return validate.Check(b)
}

func (b block) toBlock() state.Block {
	return state.Block{
		Header: database.BlockHeader{
			Nonce:     b.Header.Nonce,
			BlockHash: b.Header.BlockHash,
		},
		Payload: b.Payload.toPayload(),
	}
}

// verification is the result of checking a block against the tip.
type verification struct {
	Valid bool   `json:"valid"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}
