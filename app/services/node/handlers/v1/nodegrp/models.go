package nodegrp

import (
	"github.com/minichain/minichain/foundation/blockchain/ledger"
)

// submitTx is what a wallet submits to transfer funds.
type submitTx struct {
	SenderPublicKey    string `json:"sender_public_key" validate:"required"`
	RecipientPublicKey string `json:"recipient_public_key" validate:"required"`
	Signature          string `json:"signature"`
	Amount             uint64 `json:"amount" validate:"required,gt=0"`
}

// registerPeers is the payload for adding nodes to the known peer set.
type registerPeers struct {
	Nodes []string `json:"nodes" validate:"required,min=1"`
}

// chain is the wire representation of the full ledger. Length is advisory;
// the chain content is authoritative.
type chain struct {
	Chain  []ledger.Block `json:"chain"`
	Length int            `json:"length"`
}

// minedBlock is returned after a successful mining operation.
type minedBlock struct {
	Message      string      `json:"message"`
	BlockNumber  uint64      `json:"block_number"`
	Transactions []ledger.Tx `json:"transactions"`
	Nonce        uint64      `json:"nonce"`
	PreviousHash string      `json:"previous_hash"`
}

// resolution reports the outcome of a consensus pass.
type resolution struct {
	Message string         `json:"message"`
	Chain   []ledger.Block `json:"chain"`
}
