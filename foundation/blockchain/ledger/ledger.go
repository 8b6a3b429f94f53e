// Package ledger implements the append-only chain of blocks and the rules
// for hashing and validating it.
//
// The JSON layout of Tx and Block below is the wire contract of the network.
// Hashing serializes values in declared field order, so every field name,
// field position and numeric representation here is normative. Nodes written
// in other languages must serialize the same way or their hashes will not be
// reproducible.
package ledger

import (
	"time"

	"github.com/minichain/minichain/foundation/blockchain/signature"
)

// GenesisNonce is the nonce recorded on the genesis block.
const GenesisNonce = 0

// Tx is an immutable transfer record between two public keys. The sender of
// a system minted mining reward is the reward sentinel, not a real key.
type Tx struct {
	SenderPublicKey    string `json:"sender_public_key"`
	RecipientPublicKey string `json:"recipient_public_key"`
	Amount             uint64 `json:"amount"`
}

// Block represents a group of transactions folded into the chain. A block is
// immutable once appended. The final transaction of every mined block is the
// mining reward.
type Block struct {
	BlockNumber  uint64 `json:"block_number"`
	Timestamp    uint64 `json:"timestamp"`
	Transactions []Tx   `json:"transactions"`
	Nonce        uint64 `json:"nonce"`
	PreviousHash string `json:"previous_hash"`
}

// NewGenesisBlock constructs block number 1. The genesis block carries no
// transactions and references the fixed previous hash sentinel rather than a
// real digest.
func NewGenesisBlock(prevHash string) Block {
	return Block{
		BlockNumber:  1,
		Timestamp:    uint64(time.Now().UTC().Unix()),
		Transactions: []Tx{},
		Nonce:        GenesisNonce,
		PreviousHash: prevHash,
	}
}

// NewBlock constructs the next block in the chain from the snapshot of
// pending transactions. No validation is performed here. The caller is
// trusted to have already solved the work for the nonce.
func NewBlock(prevBlock Block, trans []Tx, nonce uint64) Block {
	prevHash, _ := BlockHash(prevBlock)

	return Block{
		BlockNumber:  prevBlock.BlockNumber + 1,
		Timestamp:    uint64(time.Now().UTC().Unix()),
		Transactions: trans,
		Nonce:        nonce,
		PreviousHash: prevHash,
	}
}

// BlockHash returns the canonical hash of the block, the value the next
// block records as its previous hash.
func BlockHash(block Block) (string, error) {
	if block.Transactions == nil {
		block.Transactions = []Tx{}
	}

	return signature.Hash(block)
}

// ValidChain walks a candidate chain from its second block onward and
// reports whether every block correctly binds to its predecessor and
// carries a solved proof of work. A single violation invalidates the whole
// candidate.
func ValidChain(chain []Block, difficulty int) bool {
	if len(chain) == 0 {
		return false
	}

	lastBlock := chain[0]
	for _, block := range chain[1:] {
		prevHash, err := BlockHash(lastBlock)
		if err != nil || block.PreviousHash != prevHash {
			return false
		}

		// The proof covers the block's transactions minus the trailing
		// mining reward, rebuilt from the canonical fields only.
		trans := block.Transactions
		if len(trans) > 0 {
			trans = trans[:len(trans)-1]
		}
		work := make([]Tx, len(trans))
		for i, tx := range trans {
			work[i] = Tx{
				SenderPublicKey:    tx.SenderPublicKey,
				RecipientPublicKey: tx.RecipientPublicKey,
				Amount:             tx.Amount,
			}
		}

		if !ValidProof(work, block.PreviousHash, block.Nonce, difficulty) {
			return false
		}

		lastBlock = block
	}

	return true
}
