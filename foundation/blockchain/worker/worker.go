// Package worker implements the background mining of pending data into
// blocks for the chain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Config represents the systems required by the worker.
type Config[T any] struct {
	Chain       *chain.Chain[T]
	Mempool     *mempool.Mempool[T]
	MineTimeout time.Duration
	EvHandler   chain.EventHandler
}

// Worker manages the POW workflows for the chain.
type Worker[T any] struct {
	chain        *chain.Chain[T]
	mempool      *mempool.Mempool[T]
	mineTimeout  time.Duration
	wg           sync.WaitGroup
	shut         chan struct{}
	startMining  chan bool
	cancelMining chan bool
	evHandler    chain.EventHandler
}

// Run creates a worker and starts up all the background processes.
func Run[T any](cfg Config[T]) *Worker[T] {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	w := Worker[T]{
		chain:        cfg.Chain,
		mempool:      cfg.Mempool,
		mineTimeout:  cfg.MineTimeout,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan bool, 1),
		evHandler:    ev,
	}

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	// Pick up anything that was queued before the worker started.
	if w.mempool.Count() > 0 {
		w.SignalStartMining()
	}

	return &w
}

// Shutdown terminates the goroutine performing work.
func (w *Worker[T]) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker[T]) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker[T]) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker[T]) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
