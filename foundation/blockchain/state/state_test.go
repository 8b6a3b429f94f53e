package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/minichain/minichain/foundation/blockchain/genesis"
	"github.com/minichain/minichain/foundation/blockchain/ledger"
	"github.com/minichain/minichain/foundation/blockchain/signature"
	"github.com/minichain/minichain/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// testKey is a fixed private key so the tests are deterministic.
const testKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func newState(t *testing.T) *state.State {
	t.Helper()

	return state.New(state.Config{
		Genesis:     genesis.Default(),
		PeerTimeout: 2 * time.Second,
	})
}

// serveChain exposes the blocks under the /v1/chain route a node queries
// during consensus resolution.
func serveChain(t *testing.T, blocks []ledger.Block) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chain", func(w http.ResponseWriter, r *http.Request) {
		resp := struct {
			Chain  []ledger.Block `json:"chain"`
			Length int            `json:"length"`
		}{
			Chain:  blocks,
			Length: len(blocks),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func Test_SubmitTransaction(t *testing.T) {
	gen := genesis.Default()

	privateKey, err := crypto.HexToECDSA(testKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}
	sender := signature.PublicKeyString(privateKey)

	t.Log("Given the need to admit only authorized transactions.")
	{
		t.Logf("\tTest 0:\tWhen handling a properly signed transaction.")
		{
			st := newState(t)

			tx := ledger.Tx{SenderPublicKey: sender, RecipientPublicKey: "bob", Amount: 25}
			sig, err := signature.Sign(tx, privateKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}

			blockNumber, err := st.SubmitTransaction(sender, "bob", sig, 25)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the transaction.", success)

			if blockNumber != 2 {
				t.Errorf("\t%s\tTest 0:\tShould expect the transaction in block 2, got %d.", failed, blockNumber)
			} else {
				t.Logf("\t%s\tTest 0:\tShould expect the transaction in block 2.", success)
			}

			if len(st.PendingTransactions()) != 1 {
				t.Errorf("\t%s\tTest 0:\tShould hold the transaction in the pending pool.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould hold the transaction in the pending pool.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen handling a signature over different data.")
		{
			st := newState(t)

			// A syntactically valid signature that does not match the
			// submitted transaction.
			other := ledger.Tx{SenderPublicKey: sender, RecipientPublicKey: "bob", Amount: 9999}
			sig, err := signature.Sign(other, privateKey)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to sign the decoy transaction: %v", failed, err)
			}

			if _, err := st.SubmitTransaction(sender, "bob", sig, 25); !errors.Is(err, state.ErrInvalidSignature) {
				t.Fatalf("\t%s\tTest 1:\tShould reject with ErrInvalidSignature, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject with ErrInvalidSignature.", success)

			if len(st.PendingTransactions()) != 0 {
				t.Errorf("\t%s\tTest 1:\tShould keep the pending pool empty.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould keep the pending pool empty.", success)
			}

			// The rejected transaction must never surface in a mined block.
			block, err := st.Mine(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine: %v", failed, err)
			}
			for _, tx := range block.Transactions {
				if tx.RecipientPublicKey == "bob" {
					t.Errorf("\t%s\tTest 1:\tShould not include the rejected transaction in a block.", failed)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould not include the rejected transaction in a block.", success)
		}

		t.Logf("\tTest 2:\tWhen handling a reward sentinel sender.")
		{
			st := newState(t)

			if _, err := st.SubmitTransaction(gen.RewardSender, "bob", "", 1); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould accept without signature verification: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould accept without signature verification.", success)
		}
	}
}

func Test_Mine(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to fold pending transactions into a mined block.")
	{
		st := newState(t)

		if _, err := st.SubmitTransaction(gen.RewardSender, "bob", "", 5); err != nil {
			t.Fatalf("\t%s\tShould be able to submit a transaction: %v", failed, err)
		}

		block, err := st.Mine(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if block.BlockNumber != 2 {
			t.Errorf("\t%s\tShould mint block number 2, got %d.", failed, block.BlockNumber)
		} else {
			t.Logf("\t%s\tShould mint block number 2.", success)
		}

		if len(block.Transactions) != 2 {
			t.Fatalf("\t%s\tShould carry the pending transaction plus the reward, got %d.", failed, len(block.Transactions))
		}
		t.Logf("\t%s\tShould carry the pending transaction plus the reward.", success)

		reward := block.Transactions[len(block.Transactions)-1]
		if reward.SenderPublicKey != gen.RewardSender || reward.RecipientPublicKey != st.NodeID() || reward.Amount != gen.MiningReward {
			t.Errorf("\t%s\tShould credit the mining reward to the node identity as the final entry.", failed)
		} else {
			t.Logf("\t%s\tShould credit the mining reward to the node identity as the final entry.", success)
		}

		if len(st.PendingTransactions()) != 0 {
			t.Errorf("\t%s\tShould clear the pending pool.", failed)
		} else {
			t.Logf("\t%s\tShould clear the pending pool.", success)
		}

		if !ledger.ValidChain(st.Chain(), gen.Difficulty) {
			t.Errorf("\t%s\tShould produce a chain that passes its own validation.", failed)
		} else {
			t.Logf("\t%s\tShould produce a chain that passes its own validation.", success)
		}

		// Mine a second block on top to confirm the chain keeps validating.
		if _, err := st.Mine(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a second block: %v", failed, err)
		}
		if !ledger.ValidChain(st.Chain(), gen.Difficulty) {
			t.Errorf("\t%s\tShould keep validating after a second block.", failed)
		} else {
			t.Logf("\t%s\tShould keep validating after a second block.", success)
		}
	}
}

func Test_ResolveConsensus(t *testing.T) {
	// remoteChain mines the requested number of blocks on a fresh node and
	// returns its chain.
	remoteChain := func(t *testing.T, blocks int) []ledger.Block {
		t.Helper()

		st := newState(t)
		for i := 0; i < blocks; i++ {
			if _, err := st.Mine(context.Background()); err != nil {
				t.Fatalf("\t%s\tShould be able to mine the remote chain: %v", failed, err)
			}
		}
		return st.Chain()
	}

	t.Log("Given the need to reconcile divergent chains across peers.")
	{
		t.Logf("\tTest 0:\tWhen a peer holds a strictly longer valid chain.")
		{
			st := newState(t)
			srv := serveChain(t, remoteChain(t, 2))

			if _, err := st.RegisterPeer(srv.URL); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to register the peer: %v", failed, err)
			}

			replaced, chain, err := st.ResolveConsensus(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to resolve: %v", failed, err)
			}
			if !replaced {
				t.Fatalf("\t%s\tTest 0:\tShould report the chain replaced.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the chain replaced.", success)

			if len(chain) != 3 || len(st.Chain()) != 3 {
				t.Errorf("\t%s\tTest 0:\tShould adopt the three block chain.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould adopt the three block chain.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen a peer holds an equal length chain.")
		{
			st := newState(t)
			if _, err := st.Mine(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine locally: %v", failed, err)
			}

			srv := serveChain(t, remoteChain(t, 1))
			if _, err := st.RegisterPeer(srv.URL); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to register the peer: %v", failed, err)
			}

			replaced, _, err := st.ResolveConsensus(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to resolve: %v", failed, err)
			}
			if replaced {
				t.Errorf("\t%s\tTest 1:\tShould keep the local chain authoritative.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould keep the local chain authoritative.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen a peer holds a longer but invalid chain.")
		{
			st := newState(t)

			tampered := remoteChain(t, 3)
			tampered[2].PreviousHash = "deadbeef"
			srv := serveChain(t, tampered)

			if _, err := st.RegisterPeer(srv.URL); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to register the peer: %v", failed, err)
			}

			replaced, _, err := st.ResolveConsensus(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to resolve: %v", failed, err)
			}
			if replaced {
				t.Errorf("\t%s\tTest 2:\tShould not adopt an invalid chain.", failed)
			} else {
				t.Logf("\t%s\tTest 2:\tShould not adopt an invalid chain.", success)
			}
			if len(st.Chain()) != 1 {
				t.Errorf("\t%s\tTest 2:\tShould leave the local chain untouched.", failed)
			} else {
				t.Logf("\t%s\tTest 2:\tShould leave the local chain untouched.", success)
			}
		}

		t.Logf("\tTest 3:\tWhen one peer is unreachable and another holds a longer chain.")
		{
			st := newState(t)

			if _, err := st.RegisterPeer("127.0.0.1:1"); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to register the dead peer: %v", failed, err)
			}

			srv := serveChain(t, remoteChain(t, 2))
			if _, err := st.RegisterPeer(srv.URL); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to register the live peer: %v", failed, err)
			}

			replaced, _, err := st.ResolveConsensus(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to resolve: %v", failed, err)
			}
			if !replaced {
				t.Errorf("\t%s\tTest 3:\tShould skip the dead peer and adopt the longer chain.", failed)
			} else {
				t.Logf("\t%s\tTest 3:\tShould skip the dead peer and adopt the longer chain.", success)
			}
		}
	}
}
