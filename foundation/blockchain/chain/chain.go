// Package chain implements a proof of work ledger. The chain starts with a
// genesis block and grows by constructing a payload, mining it, and then
// appending the mined block after it has been validated against the tip.
package chain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
)

// ProofPrefix is the character a proof hash must start with, repeated
// difficulty times.
const ProofPrefix = '0'

// GenesisData is the data stored in the genesis block when no other data
// is configured.
const GenesisData = "Genesis Block"

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to construct a chain.
type Config[T any] struct {
	Difficulty       uint
	GenesisData      T
	Hasher           digest.Hasher
	Storage          database.Storage[T]
	Workers          int
	StrictHeaderHash bool
	EvHandler        EventHandler
}

// Chain manages the sequence of blocks. All mutation happens through the
// Append and AppendBlock methods.
type Chain[T any] struct {
	mu         sync.RWMutex
	storage    database.Storage[T]
	difficulty uint
	prefix     byte
	hasher     digest.Hasher
	workers    int
	strict     bool
	evHandler  EventHandler
}

// New constructs a chain and installs the genesis block. When the configured
// storage already holds blocks, they are audited and no genesis block is
// written.
func New[T any](cfg Config[T]) (*Chain[T], error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = digest.SHA256{}
	}

	if size := uint(len(hasher.Hash(""))); cfg.Difficulty > size {
		return nil, fmt.Errorf("difficulty %d is larger than the hash size %d", cfg.Difficulty, size)
	}

	strg := cfg.Storage
	if strg == nil {
		strg = memory.New[T]()
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c := Chain[T]{
		storage:    strg,
		difficulty: cfg.Difficulty,
		prefix:     ProofPrefix,
		hasher:     hasher,
		workers:    workers,
		strict:     cfg.StrictHeaderHash,
		evHandler:  ev,
	}

	// Storage that already holds blocks is audited under this configuration
	// instead of receiving a new genesis block.
	if strg.Count() != 0 {
		if err := c.Audit(); err != nil {
			return nil, fmt.Errorf("audit existing storage: %w", err)
		}

		c.evHandler("chain: New: existing storage: blocks[%d]: difficulty[%d]: hasher[%s]", strg.Count(), c.difficulty, c.hasher.Name())
		return &c, nil
	}

	genesis, err := c.constructGenesis(cfg.GenesisData)
	if err != nil {
		return nil, err
	}

	if err := c.storage.Write(genesis); err != nil {
		return nil, fmt.Errorf("write genesis: %w", err)
	}

	c.evHandler("chain: New: genesis: blk[%d]: hash[%s]: difficulty[%d]: hasher[%s]", genesis.Payload.Sequence, database.ShortHash(genesis.Header.BlockHash), c.difficulty, c.hasher.Name())

	return &c, nil
}

// constructGenesis builds the first block. Genesis is never mined so
// the nonce is always 0.
func (c *Chain[T]) constructGenesis(data T) (database.Block[T], error) {
	payload := database.Payload[T]{
		Sequence:     0,
		TimeStamp:    time.Now().UnixMilli(),
		Data:         data,
		PreviousHash: "",
	}

	blockHash, err := c.hashPayload(payload)
	if err != nil {
		return database.Block[T]{}, fmt.Errorf("genesis: %w", err)
	}

	genesis := database.Block[T]{
		Header: database.BlockHeader{
			Nonce:     0,
			BlockHash: blockHash,
		},
		Payload: payload,
	}

	return genesis, nil
}

// =============================================================================

// Difficulty returns the number of prefix characters a proof must have.
func (c *Chain[T]) Difficulty() uint {
	return c.difficulty
}

// HasherName returns the name of the hasher used by the chain.
func (c *Chain[T]) HasherName() string {
	return c.hasher.Name()
}

// Len returns the number of blocks in the chain.
func (c *Chain[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.storage.Count()
}

// Tip returns the most recently appended block.
func (c *Chain[T]) Tip() (database.Block[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tip()
}

// Blocks returns a snapshot of the chain from genesis to the tip.
func (c *Chain[T]) Blocks() []database.Block[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.storage.Copy()
}

// Block returns the block at the specified sequence.
func (c *Chain[T]) Block(sequence uint64) (database.Block[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.storage.GetBlock(sequence)
}

// ConstructPayload produces the payload for the next block carrying the
// specified data. The chain is not changed.
func (c *Chain[T]) ConstructPayload(data T) (database.Payload[T], error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tip, err := c.tip()
	if err != nil {
		return database.Payload[T]{}, err
	}

	payload := database.Payload[T]{
		Sequence:     tip.Payload.Sequence + 1,
		TimeStamp:    time.Now().UnixMilli(),
		Data:         data,
		PreviousHash: tip.Header.BlockHash,
	}

	c.evHandler("chain: ConstructPayload: blk[%d]: prevHash[%s]", payload.Sequence, database.ShortHash(payload.PreviousHash))

	return payload, nil
}

// =============================================================================

// Validate checks the candidate block can be appended to the current tip:
// it must link to the tip, carry the next sequence, and satisfy the proof.
// The block hash is recomputed from the payload for the proof check. Unless
// the chain is configured with StrictHeaderHash, the block hash stored in
// the candidate's header is not compared against that recomputation.
func (c *Chain[T]) Validate(candidate database.Block[T]) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tip, err := c.tip()
	if err != nil {
		return err
	}

	return c.validate(tip, candidate)
}

// Verify reports whether the candidate block can be appended to the current
// tip. The reason for a failure is sent to the event handler.
func (c *Chain[T]) Verify(candidate database.Block[T]) bool {
	if err := c.Validate(candidate); err != nil {
		c.evHandler("chain: Verify: blk[%d]: INVALID: %s", candidate.Payload.Sequence, err)
		return false
	}

	return true
}

// Append validates the candidate block and appends it to the chain. The
// validation error is returned when the block is rejected.
func (c *Chain[T]) Append(candidate database.Block[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evHandler("chain: Append: blk[%d]: hash[%s]: nonce[%d]: prevHash[%s]", candidate.Payload.Sequence, database.ShortHash(candidate.Header.BlockHash), candidate.Header.Nonce, database.ShortHash(candidate.Payload.PreviousHash))

	tip, err := c.tip()
	if err != nil {
		return err
	}

	if err := c.validate(tip, candidate); err != nil {
		c.evHandler("chain: Append: blk[%d]: REJECTED: %s", candidate.Payload.Sequence, err)
		return err
	}

	if err := c.storage.Write(candidate); err != nil {
		c.evHandler("chain: Append: blk[%d]: REJECTED: %s", candidate.Payload.Sequence, err)
		return err
	}

	c.evHandler("chain: Append: blk[%d]: APPENDED", candidate.Payload.Sequence)

	return nil
}

// AppendBlock validates the candidate block and appends it to the chain
// when valid. A rejected block leaves the chain unchanged. The current
// sequence of blocks is returned either way.
func (c *Chain[T]) AppendBlock(candidate database.Block[T]) []database.Block[T] {
	// The rejection is reported through the event handler by Append.
	_ = c.Append(candidate)
	return c.Blocks()
}

// Audit walks the entire chain and checks the sequence, linkage, and proof
// of every block.
func (c *Chain[T]) Audit() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	iter := c.storage.ForEach()
	if iter.Done() {
		return ErrEmptyChain
	}

	genesis, err := iter.Next()
	if err != nil {
		return err
	}

	if genesis.Payload.Sequence != 0 || genesis.Payload.PreviousHash != "" {
		return fmt.Errorf("%w: genesis block is malformed", ErrChainLinkage)
	}

	hash, err := c.hashPayload(genesis.Payload)
	if err != nil {
		return err
	}

	if hash != genesis.Header.BlockHash {
		return fmt.Errorf("%w: blk[0]: got %s, exp %s", ErrHeaderHashMismatch, database.ShortHash(genesis.Header.BlockHash), database.ShortHash(hash))
	}

	prev := genesis
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return err
		}

		if err := c.validate(prev, block); err != nil {
			return err
		}

		prev = block
	}

	return nil
}

// =============================================================================

// tip returns the last block. The caller must hold the lock.
func (c *Chain[T]) tip() (database.Block[T], error) {
	block, err := c.storage.Last()
	if err != nil {
		if errors.Is(err, database.ErrBlockNotFound) {
			return database.Block[T]{}, ErrEmptyChain
		}
		return database.Block[T]{}, err
	}

	return block, nil
}

// validate checks the candidate against the specified parent block.
func (c *Chain[T]) validate(parent database.Block[T], candidate database.Block[T]) error {
	seq := candidate.Payload.Sequence

	if candidate.Payload.PreviousHash != parent.Header.BlockHash {
		return fmt.Errorf("%w: blk[%d]: got %s, exp %s", ErrChainLinkage, seq, database.ShortHash(candidate.Payload.PreviousHash), database.ShortHash(parent.Header.BlockHash))
	}

	if seq != parent.Payload.Sequence+1 {
		return fmt.Errorf("%w: got %d, exp %d", database.ErrOutOfOrder, seq, parent.Payload.Sequence+1)
	}

	blockHash, err := c.hashPayload(candidate.Payload)
	if err != nil {
		return fmt.Errorf("%w: blk[%d]: %s", ErrProofInvalid, seq, err)
	}

	if c.strict && candidate.Header.BlockHash != blockHash {
		return fmt.Errorf("%w: blk[%d]: got %s, exp %s", ErrHeaderHashMismatch, seq, database.ShortHash(candidate.Header.BlockHash), database.ShortHash(blockHash))
	}

	if !c.isProofed(c.proofHash(blockHash, candidate.Header.Nonce)) {
		return fmt.Errorf("%w: blk[%d]: nonce %d is not valid", ErrProofInvalid, seq, candidate.Header.Nonce)
	}

	return nil
}

// isProofed checks the hash against the difficulty of the chain.
func (c *Chain[T]) isProofed(hash string) bool {
	return digest.IsProofed(hash, c.difficulty, c.prefix)
}

// hashPayload returns the hash of the canonical encoding of the payload.
func (c *Chain[T]) hashPayload(payload database.Payload[T]) (string, error) {
	data, err := payload.Serialize()
	if err != nil {
		return "", err
	}

	return c.hasher.Hash(data), nil
}
