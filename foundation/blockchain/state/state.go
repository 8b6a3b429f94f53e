// Package state is the core API for the node and implements all the business
// rules for extending and replacing the chain.
package state

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/ledger"
	"github.com/minichain/minichain/foundation/blockchain/peer"
	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// ErrInvalidSignature is returned when a submitted transaction does not
// carry a valid signature from its claimed sender.
var ErrInvalidSignature = errors.New("invalid transaction signature")

// EventHandler defines a function that is called when events occur in the
// processing of transactions and blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the node.
type Config struct {
	Genesis     genesis.Genesis
	KnownPeers  *peer.Set
	PeerTimeout time.Duration
	EvHandler   EventHandler
}

// State manages the chain, the pending transaction pool and the peer set.
// All mutations funnel through one mutex: mining snapshots and clears the
// pool, and consensus replaces the whole chain, and neither may interleave
// with concurrent submissions.
type State struct {
	mu      sync.Mutex
	chain   []ledger.Block
	pending []ledger.Tx

	nodeID      string
	genesis     genesis.Genesis
	knownPeers  *peer.Set
	peerTimeout time.Duration
	evHandler   EventHandler

	mineMu     sync.Mutex
	mineCancel func()
}

// New constructs a State with a fresh genesis block and a process lifetime
// node identity used as the mining reward recipient.
func New(cfg Config) *State {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout == 0 {
		peerTimeout = 5 * time.Second
	}

	return &State{
		chain:       []ledger.Block{ledger.NewGenesisBlock(cfg.Genesis.PrevHash)},
		pending:     []ledger.Tx{},
		nodeID:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		genesis:     cfg.Genesis,
		knownPeers:  knownPeers,
		peerTimeout: peerTimeout,
		evHandler:   ev,
	}
}

// SubmitTransaction authenticates and buffers a transaction into the pending
// pool. A transaction whose sender is the reward sentinel is accepted
// unconditionally; any other sender must pass signature verification. On
// acceptance the block number the transaction is expected to land in is
// returned. Rejection is ErrInvalidSignature, never a fault.
func (s *State) SubmitTransaction(sender string, recipient string, sigHex string, amount uint64) (uint64, error) {
	tx := ledger.Tx{
		SenderPublicKey:    sender,
		RecipientPublicKey: recipient,
		Amount:             amount,
	}

	if sender != s.genesis.RewardSender {
		if !signature.Verify(sender, sigHex, tx) {
			s.evHandler("state: SubmitTransaction: REJECTED: recipient[%s] amount[%d]", recipient, amount)
			return 0, ErrInvalidSignature
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, tx)
	blockNumber := uint64(len(s.chain)) + 1

	s.evHandler("state: SubmitTransaction: accepted: expected blk[%d]", blockNumber)

	return blockNumber, nil
}

// RegisterPeer normalizes and adds a peer address to the known peer set.
// A malformed address surfaces to the caller and leaves the set untouched.
func (s *State) RegisterPeer(addr string) (string, error) {
	host, added, err := s.knownPeers.Add(addr)
	if err != nil {
		return "", err
	}

	if added {
		s.evHandler("state: RegisterPeer: added peer[%s]", host)
	}

	return host, nil
}

// registerMineCancel records the cancel function of an in-flight work
// search so chain replacement can abort it.
func (s *State) registerMineCancel(cancel func()) {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	s.mineCancel = cancel
}

// CancelMining aborts any in-flight proof of work search. It is called when
// a longer chain is adopted from a peer and is safe to call at any time.
func (s *State) CancelMining() {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	if s.mineCancel != nil {
		s.mineCancel()
		s.mineCancel = nil
	}
}
