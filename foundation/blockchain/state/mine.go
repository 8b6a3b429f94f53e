package state

import (
	"context"
	"errors"

	"github.com/minichain/minichain/foundation/blockchain/ledger"
)

// ErrChainChanged is returned when the chain tip moved while the proof of
// work search was running, usually because consensus adopted a peer chain.
var ErrChainChanged = errors.New("chain changed during mining")

// Mine performs the proof of work search over the current pending pool and
// folds the result into a new block, crediting the mining reward to this
// node's identity. The search blocks until solved or the context is
// cancelled; cancellation leaves all state untouched.
func (s *State) Mine(ctx context.Context) (ledger.Block, error) {
	s.evHandler("state: Mine: MINING: started")
	defer s.evHandler("state: Mine: MINING: completed")

	// Snapshot the work set and the chain tip. Transactions submitted after
	// this point are not covered by the proof and stay pending.
	s.mu.Lock()
	work := make([]ledger.Tx, len(s.pending))
	copy(work, s.pending)
	lastBlock := s.chain[len(s.chain)-1]
	s.mu.Unlock()

	lastHash, err := ledger.BlockHash(lastBlock)
	if err != nil {
		return ledger.Block{}, err
	}

	// Register the search with the cancel hook so an adopted peer chain
	// aborts it mid-flight.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.registerMineCancel(cancel)

	nonce, err := ledger.FindNonce(ctx, work, lastHash, s.genesis.Difficulty)
	if err != nil {
		s.evHandler("state: Mine: MINING: CANCELLED: %s", err)
		return ledger.Block{}, err
	}

	s.evHandler("state: Mine: MINING: SOLVED: nonce[%d]", nonce)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The proof binds to the tip the search started from. If consensus
	// replaced the chain in the meantime the solution is worthless.
	tip := s.chain[len(s.chain)-1]
	tipHash, err := ledger.BlockHash(tip)
	if err != nil {
		return ledger.Block{}, err
	}
	if tipHash != lastHash {
		return ledger.Block{}, ErrChainChanged
	}

	// The reward transaction is always the final entry of the block.
	reward := ledger.Tx{
		SenderPublicKey:    s.genesis.RewardSender,
		RecipientPublicKey: s.nodeID,
		Amount:             s.genesis.MiningReward,
	}

	block := ledger.NewBlock(tip, append(work, reward), nonce)
	s.chain = append(s.chain, block)
	s.pending = append([]ledger.Tx{}, s.pending[len(work):]...)

	s.evHandler("state: Mine: MINING: new block: blk[%d] txs[%d]", block.BlockNumber, len(block.Transactions))

	return block, nil
}
