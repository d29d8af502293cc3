// Package state is the core API for the ledger node and ties the chain,
// the mempool, and the mining worker together.
package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
)

// Data represents the opaque data carried by the blocks of the node. Any
// JSON document is accepted.
type Data = json.RawMessage

// Block represents a block carrying node data.
type Block = database.Block[Data]

// Payload represents a payload carrying node data.
type Payload = database.Payload[Data]

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Genesis     genesis.Genesis
	Workers     int
	MineTimeout time.Duration
	EvHandler   chain.EventHandler
}

// Status represents a summary of the node.
type Status struct {
	Blocks     int    `json:"blocks"`
	TipSeq     uint64 `json:"tip_sequence"`
	TipHash    string `json:"tip_hash"`
	Difficulty uint   `json:"difficulty"`
	Hasher     string `json:"hasher"`
	Pending    int    `json:"pending"`
}

// State manages the chain for the node.
type State struct {
	genesis     genesis.Genesis
	mineTimeout time.Duration
	evHandler   chain.EventHandler

	chain   *chain.Chain[Data]
	mempool *mempool.Mempool[Data]
	worker  *worker.Worker[Data]
}

// New constructs the chain from the genesis information and starts the
// background mining worker.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	hasher, err := digest.New(cfg.Genesis.Hasher)
	if err != nil {
		return nil, err
	}

	chn, err := chain.New(chain.Config[Data]{
		Difficulty:       cfg.Genesis.Difficulty,
		GenesisData:      cfg.Genesis.Data,
		Hasher:           hasher,
		Workers:          cfg.Workers,
		StrictHeaderHash: cfg.Genesis.StrictHeaderHash,
		EvHandler:        ev,
	})
	if err != nil {
		return nil, err
	}

	mp := mempool.New[Data]()

	state := State{
		genesis:     cfg.Genesis,
		mineTimeout: cfg.MineTimeout,
		evHandler:   ev,
		chain:       chn,
		mempool:     mp,
	}

	state.worker = worker.Run(worker.Config[Data]{
		Chain:       chn,
		Mempool:     mp,
		MineTimeout: cfg.MineTimeout,
		EvHandler:   ev,
	})

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	s.worker.Shutdown()
}

// =============================================================================

// RetrieveGenesis returns the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveStatus returns a summary of the node.
func (s *State) RetrieveStatus() (Status, error) {
	tip, err := s.chain.Tip()
	if err != nil {
		return Status{}, err
	}

	status := Status{
		Blocks:     s.chain.Len(),
		TipSeq:     tip.Payload.Sequence,
		TipHash:    tip.Header.BlockHash,
		Difficulty: s.chain.Difficulty(),
		Hasher:     s.chain.HasherName(),
		Pending:    s.mempool.Count(),
	}

	return status, nil
}

// RetrieveBlocks returns the blocks from genesis to the tip.
func (s *State) RetrieveBlocks() []Block {
	return s.chain.Blocks()
}

// RetrieveBlocksByRange returns the blocks between from and to inclusive.
func (s *State) RetrieveBlocksByRange(from uint64, to uint64) []Block {
	blocks := s.chain.Blocks()

	var out []Block
	for _, block := range blocks {
		seq := block.Payload.Sequence
		if seq >= from && seq <= to {
			out = append(out, block)
		}
	}

	return out
}

// RetrieveBlock returns the block at the specified sequence.
func (s *State) RetrieveBlock(sequence uint64) (Block, error) {
	return s.chain.Block(sequence)
}

// RetrieveTip returns the most recent block.
func (s *State) RetrieveTip() (Block, error) {
	return s.chain.Tip()
}

// RetrieveMempool returns the data waiting to be mined.
func (s *State) RetrieveMempool() []mempool.Entry[Data] {
	return s.mempool.Copy()
}

// Audit checks the entire chain.
func (s *State) Audit() error {
	return s.chain.Audit()
}

// =============================================================================

// ConstructPayload returns the payload for the next block.
func (s *State) ConstructPayload(data Data) (Payload, error) {
	return s.chain.ConstructPayload(data)
}

// MinePayload performs the proof of work for the payload without appending
// the block, bounded by the configured mining timeout.
func (s *State) MinePayload(ctx context.Context, payload Payload) (chain.MineResult[Data], error) {
	ctx, cancel := s.withMineTimeout(ctx)
	defer cancel()

	return s.chain.MinePayload(ctx, payload)
}

// MineData mines the data into the next block and appends it, bounded by
// the configured mining timeout.
func (s *State) MineData(ctx context.Context, data Data) (chain.MineResult[Data], error) {
	ctx, cancel := s.withMineTimeout(ctx)
	defer cancel()

	return s.chain.MineNext(ctx, data)
}

// ValidateBlock checks the block can be appended to the current tip.
func (s *State) ValidateBlock(block Block) error {
	return s.chain.Validate(block)
}

// SubmitBlock validates and appends the block.
func (s *State) SubmitBlock(block Block) error {
	return s.chain.Append(block)
}

// SubmitData queues the data for the mining worker.
func (s *State) SubmitData(data Data) mempool.Entry[Data] {
	entry := s.mempool.Add(data)
	s.worker.SignalStartMining()

	return entry
}

// SignalMining asks the worker to mine the pending data.
func (s *State) SignalMining() {
	s.worker.SignalStartMining()
}

// CancelMining asks the worker to stop the current mining operation.
func (s *State) CancelMining() {
	s.worker.SignalCancelMining()
}

// withMineTimeout applies the configured mining timeout to the context.
func (s *State) withMineTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.mineTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.mineTimeout)
}
