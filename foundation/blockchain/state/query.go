package state

import (
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/ledger"
)

// NodeID returns the identity of this node, the account credited with
// mining rewards.
func (s *State) NodeID() string {
	return s.nodeID
}

// Chain returns a copy of the current chain.
func (s *State) Chain() []ledger.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyChain()
}

// LatestBlock returns the block at the tip of the chain.
func (s *State) LatestBlock() ledger.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain[len(s.chain)-1]
}

// PendingTransactions returns a copy of the transactions not yet mined.
func (s *State) PendingTransactions() []ledger.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]ledger.Tx, len(s.pending))
	copy(pending, s.pending)

	return pending
}

// KnownPeers returns the current set of known peers.
func (s *State) KnownPeers() []string {
	return s.knownPeers.Copy()
}

// Genesis returns the chain parameters this node runs with.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}
