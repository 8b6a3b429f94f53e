// Package worker runs the background operations of the node, currently the
// periodic consensus resolution against known peers.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/minichain/minichain/foundation/blockchain/state"
)

// Worker manages the background goroutines of the node.
type Worker struct {
	state     *state.State
	ticker    *time.Ticker
	shut      chan struct{}
	wg        sync.WaitGroup
	evHandler state.EventHandler
}

// Run constructs a worker and starts the background operations.
func Run(st *state.State, resolveInterval time.Duration, evHandler state.EventHandler) *Worker {
	w := Worker{
		state:     st,
		ticker:    time.NewTicker(resolveInterval),
		shut:      make(chan struct{}),
		evHandler: evHandler,
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.consensusOperations()
	}()

	return &w
}

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.ticker.Stop()
	w.state.CancelMining()

	close(w.shut)
	w.wg.Wait()
}

// consensusOperations periodically reconciles the local chain against the
// chains held by known peers.
func (w *Worker) consensusOperations() {
	w.evHandler("worker: consensusOperations: G started")
	defer w.evHandler("worker: consensusOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			w.runResolveOperation()
		case <-w.shut:
			w.evHandler("worker: consensusOperations: received shut signal")
			return
		}
	}
}

// runResolveOperation performs one consensus resolution pass.
func (w *Worker) runResolveOperation() {
	w.evHandler("worker: runResolveOperation: started")
	defer w.evHandler("worker: runResolveOperation: completed")

	replaced, chain, err := w.state.ResolveConsensus(context.Background())
	if err != nil {
		w.evHandler("worker: runResolveOperation: ERROR: %s", err)
		return
	}

	if replaced {
		w.evHandler("worker: runResolveOperation: chain replaced: length[%d]", len(chain))
	}
}
