package state

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/minichain/minichain/foundation/blockchain/ledger"
)

const chainURL = "http://%s/v1/chain"

// fetchPeerChain retrieves the full chain held by the specified peer. Any
// transport failure or non-200 response is reported as an error, which the
// consensus resolver treats as "peer unavailable".
func (s *State) fetchPeerChain(ctx context.Context, host string) ([]ledger.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(chainURL, host), nil)
	if err != nil {
		return nil, err
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer responded with status %d", resp.StatusCode)
	}

	var body struct {
		Chain  []ledger.Block `json:"chain"`
		Length int            `json:"length"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	// The reported length is advisory. Comparisons use the actual content.
	if body.Length != len(body.Chain) {
		s.evHandler("state: fetchPeerChain: peer[%s] reported length[%d] but sent [%d] blocks", host, body.Length, len(body.Chain))
	}

	return body.Chain, nil
}
