package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
)

// miningOperations handles mining.
func (w *Worker[T]) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation takes the oldest entry from the mempool and mines it
// into the next block of the chain.
func (w *Worker[T]) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	entry, ok := w.mempool.PickOldest()
	if !ok {
		w.evHandler("worker: runMiningOperation: MINING: no data to mine")
		return
	}

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled or timed out.
	var ctx context.Context
	var cancel context.CancelFunc
	switch {
	case w.mineTimeout > 0:
		ctx, cancel = context.WithTimeout(context.Background(), w.mineTimeout)
	default:
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-ctx.Done():
		}
	}()

	// Only signal a new operation when this one made progress, otherwise an
	// entry that can't be mined in time would spin the worker.
	var again bool

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		t := time.Now()
		mr, err := w.chain.MineNext(ctx, entry.Data)
		duration := time.Since(t)

		w.evHandler("worker: runMiningOperation: MINING: entry[%s]: mining duration[%v]", entry.ID, duration)

		if err != nil {
			switch {
			case errors.Is(err, chain.ErrMiningCancelled):
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete: entry[%s]", entry.ID)
			case errors.Is(err, chain.ErrChainLinkage):
				w.evHandler("worker: runMiningOperation: MINING: WARNING: tip moved, entry[%s] stays queued", entry.ID)
				again = true
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: entry[%s]: %s", entry.ID, err)
			}
			return
		}

		w.mempool.Delete(entry.ID)
		w.evHandler("worker: runMiningOperation: MINING: SOLVED: entry[%s]: blk[%d]: hash[%s]", entry.ID, mr.Block.Payload.Sequence, mr.ShortHash)
		again = true
	}()

	// Wait for both G's to terminate.
	wg.Wait()

	if again && !w.isShutdown() && w.mempool.Count() > 0 {
		w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: entries[%d]", w.mempool.Count())
		w.SignalStartMining()
	}
}
