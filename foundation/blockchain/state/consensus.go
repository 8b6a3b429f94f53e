package state

import (
	"context"
	"sync"

	"github.com/minichain/minichain/foundation/blockchain/ledger"
)

// ResolveConsensus queries every known peer for its chain and adopts the
// longest externally valid one if it is strictly longer than the local
// chain. Unreachable peers and invalid candidates are skipped; partial peer
// availability never aborts resolution. It reports whether the local chain
// was replaced and returns the chain now in effect.
func (s *State) ResolveConsensus(ctx context.Context) (bool, []ledger.Block, error) {
	peers := s.knownPeers.Copy()

	s.evHandler("state: ResolveConsensus: started: peers[%d]", len(peers))
	defer s.evHandler("state: ResolveConsensus: completed")

	// Fan out one fetch per peer. The requests are independent so they run
	// concurrently, each under its own timeout.
	type fetch struct {
		host  string
		chain []ledger.Block
	}

	var wg sync.WaitGroup
	results := make(chan fetch, len(peers))

	for _, host := range peers {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()

			chain, err := s.fetchPeerChain(ctx, host)
			if err != nil {
				s.evHandler("state: ResolveConsensus: peer[%s] unavailable: %s", host, err)
				return
			}
			results <- fetch{host: host, chain: chain}
		}(host)
	}

	wg.Wait()
	close(results)

	// Accumulate the best candidate in a single step under the lock so the
	// length comparison and the replacement cannot interleave with a
	// concurrent block append. The running maximum is always a length; a
	// candidate must be strictly longer than both the local chain and any
	// previously accepted candidate.
	s.mu.Lock()
	defer s.mu.Unlock()

	maxLength := len(s.chain)
	var newChain []ledger.Block

	for result := range results {
		if len(result.chain) <= maxLength {
			continue
		}
		if !ledger.ValidChain(result.chain, s.genesis.Difficulty) {
			s.evHandler("state: ResolveConsensus: peer[%s] chain invalid: discarded", result.host)
			continue
		}

		maxLength = len(result.chain)
		newChain = result.chain
		s.evHandler("state: ResolveConsensus: peer[%s] candidate: length[%d]", result.host, maxLength)
	}

	if newChain == nil {
		s.evHandler("state: ResolveConsensus: local chain is authoritative")
		return false, s.copyChain(), nil
	}

	s.chain = newChain
	s.evHandler("state: ResolveConsensus: chain REPLACED: length[%d]", len(newChain))

	// A solved nonce for the old tip is worthless now.
	s.CancelMining()

	return true, s.copyChain(), nil
}

// copyChain returns a copy of the chain. Callers must hold the mutex.
func (s *State) copyChain() []ledger.Block {
	chain := make([]ledger.Block, len(s.chain))
	copy(chain, s.chain)
	return chain
}
