// Package nodegrp maintains the group of handlers for node access.
package nodegrp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minichain/minichain/business/web/errs"
	"github.com/minichain/minichain/foundation/blockchain/state"
	"github.com/minichain/minichain/foundation/events"
	"github.com/minichain/minichain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
	WS    websocket.Upgrader
}

// Chain returns the full chain and its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.Chain()

	resp := chain{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the transactions not yet folded into a block.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Transactions any `json:"transactions"`
	}{
		Transactions: h.State.PendingTransactions(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx submitTx
	if err := web.Decode(r, &tx); err != nil {
		return err
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "recipient", tx.RecipientPublicKey, "amount", tx.Amount)

	blockNumber, err := h.State.SubmitTransaction(tx.SenderPublicKey, tx.RecipientPublicKey, tx.Signature, tx.Amount)
	if err != nil {
		if errors.Is(err, state.ErrInvalidSignature) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	resp := struct {
		BlockNumber uint64 `json:"block_number"`
	}{
		BlockNumber: blockNumber,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mine runs the proof of work search and appends the solved block to the
// chain. The search blocks for as long as it takes; a client disconnect
// cancels it through the request context.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.Mine(r.Context())
	if err != nil {
		if errors.Is(err, state.ErrChainChanged) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	resp := minedBlock{
		Message:      "New block created",
		BlockNumber:  block.BlockNumber,
		Transactions: block.Transactions,
		Nonce:        block.Nonce,
		PreviousHash: block.PreviousHash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// KnownPeers returns the registered peer set.
func (h Handlers) KnownPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Nodes []string `json:"nodes"`
	}{
		Nodes: h.State.KnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterPeers adds the provided node addresses to the known peer set.
func (h Handlers) RegisterPeers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rp registerPeers
	if err := web.Decode(r, &rp); err != nil {
		return err
	}

	for _, addr := range rp.Nodes {
		if _, err := h.State.RegisterPeer(addr); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	resp := struct {
		Message string   `json:"message"`
		Nodes   []string `json:"nodes"`
	}{
		Message: "Nodes have been added",
		Nodes:   h.State.KnownPeers(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Resolve runs the consensus protocol against the known peers.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, blocks, err := h.State.ResolveConsensus(r.Context())
	if err != nil {
		return err
	}

	msg := "Our chain is authoritative"
	if replaced {
		msg = "Our chain was replaced"
	}

	resp := resolution{
		Message: msg,
		Chain:   blocks,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide node events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
