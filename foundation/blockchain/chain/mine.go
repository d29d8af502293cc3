package chain

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// checkInterval is the number of attempts a mining G makes between checks
// of the context for cancellation.
const checkInterval = 1_024

// reportInterval is the number of attempts between progress events.
const reportInterval = 1_000_000

// MineResult represents the outcome of a successful mining operation.
type MineResult[T any] struct {
	Block     database.Block[T] `json:"block"`
	ProofHash string            `json:"proof_hash"` // Hash of the block hash and nonce that satisfies the difficulty.
	ShortHash string            `json:"short_hash"` // First 12 characters of the block hash.
	MineTime  float64           `json:"mine_time"`  // Wall clock seconds spent mining.
	Attempts  uint64            `json:"attempts"`
}

// solution represents a nonce that solves the puzzle.
type solution struct {
	nonce     uint64
	proofHash string
}

// MinePayload performs the proof of work for the payload. The block hash is
// computed once and nonces are tried until the hash of the block hash and
// the nonce satisfies the difficulty. With a single worker the nonces are
// tried from 0 upward, so the lowest solving nonce is found. With more
// workers the nonce space is striped and the first solution found wins.
// The operation only ends early when the context is cancelled.
func (c *Chain[T]) MinePayload(ctx context.Context, payload database.Payload[T]) (MineResult[T], error) {
	blockHash, err := c.hashPayload(payload)
	if err != nil {
		return MineResult[T]{}, err
	}

	c.evHandler("chain: MinePayload: MINING: started: blk[%d]: workers[%d]: difficulty[%d]", payload.Sequence, c.workers, c.difficulty)

	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The channel is buffered for every worker so a solving G never blocks.
	solved := make(chan solution, c.workers)
	var attempts atomic.Uint64

	var wg sync.WaitGroup
	wg.Add(c.workers)

	for i := 0; i < c.workers; i++ {
		go func(first uint64) {
			defer wg.Done()
			c.search(ctx, blockHash, first, uint64(c.workers), &attempts, solved)
		}(uint64(i))
	}

	go func() {
		wg.Wait()
		close(solved)
	}()

	sol, found := <-solved

	// Stop the remaining G's and wait so the attempts count is final.
	cancel()
	for range solved {
	}

	if !found {
		c.evHandler("chain: MinePayload: MINING: CANCELLED: blk[%d]: attempts[%d]", payload.Sequence, attempts.Load())
		return MineResult[T]{}, fmt.Errorf("%w: blk[%d]: %w", ErrMiningCancelled, payload.Sequence, context.Cause(ctx))
	}

	mr := MineResult[T]{
		Block: database.Block[T]{
			Header: database.BlockHeader{
				Nonce:     sol.nonce,
				BlockHash: blockHash,
			},
			Payload: payload,
		},
		ProofHash: sol.proofHash,
		ShortHash: database.ShortHash(blockHash),
		MineTime:  time.Since(start).Seconds(),
		Attempts:  attempts.Load(),
	}

	c.evHandler("chain: MinePayload: MINING: SOLVED: blk[%d] in %.3f seconds: hash[%s]: nonce[%d]: attempts[%d]", payload.Sequence, mr.MineTime, mr.ShortHash, sol.nonce, mr.Attempts)

	return mr, nil
}

// MineNext constructs a payload for the data, mines it, and appends the
// mined block. If another block is appended while mining, the append fails
// with ErrChainLinkage and the mined block is discarded.
func (c *Chain[T]) MineNext(ctx context.Context, data T) (MineResult[T], error) {
	payload, err := c.ConstructPayload(data)
	if err != nil {
		return MineResult[T]{}, err
	}

	mr, err := c.MinePayload(ctx, payload)
	if err != nil {
		return MineResult[T]{}, err
	}

	if err := c.Append(mr.Block); err != nil {
		return MineResult[T]{}, err
	}

	return mr, nil
}

// search tries nonces starting at first and moving by step until a solution
// is found or the context is cancelled.
func (c *Chain[T]) search(ctx context.Context, blockHash string, first uint64, step uint64, attempts *atomic.Uint64, solved chan<- solution) {
	var tried uint64
	defer func() {
		attempts.Add(tried)
	}()

	nonce := first
	for {
		if tried%checkInterval == 0 && ctx.Err() != nil {
			return
		}

		tried++
		if tried%reportInterval == 0 {
			c.evHandler("chain: MinePayload: MINING: worker[%d]: attempts[%d]", first, tried)
		}

		proofHash := c.proofHash(blockHash, nonce)
		if c.isProofed(proofHash) {
			solved <- solution{nonce: nonce, proofHash: proofHash}
			return
		}

		nonce += step
	}
}

// proofHash returns the hash of the block hash and the decimal nonce.
func (c *Chain[T]) proofHash(blockHash string, nonce uint64) string {
	return c.hasher.Hash(blockHash + strconv.FormatUint(nonce, 10))
}
