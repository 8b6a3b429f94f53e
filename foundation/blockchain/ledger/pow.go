package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// zeros provides the prefix a solved hash is matched against. Its length
// bounds the configurable difficulty.
const zeros = "0000000000000000"

// ValidProof reports whether the nonce solves the work puzzle for the given
// transaction set and previous block hash. The guess is the canonical JSON
// of the transactions, the previous hash and the decimal nonce concatenated
// in that order; its SHA-256 hex digest must begin with difficulty zero
// characters.
func ValidProof(trans []Tx, lastHash string, nonce uint64, difficulty int) bool {
	if difficulty < 0 || difficulty > len(zeros) {
		return false
	}

	if trans == nil {
		trans = []Tx{}
	}

	data, err := json.Marshal(trans)
	if err != nil {
		return false
	}

	guess := string(data) + lastHash + strconv.FormatUint(nonce, 10)
	sum := sha256.Sum256([]byte(guess))
	hash := hex.EncodeToString(sum[:])

	return hash[:difficulty] == zeros[:difficulty]
}

// FindNonce performs the proof of work search: an exhaustive ascending scan
// from nonce 0 until ValidProof is satisfied. The search is CPU bound and
// blocks the calling goroutine for an unbounded time, so it honors context
// cancellation between attempts.
func FindNonce(ctx context.Context, trans []Tx, lastHash string, difficulty int) (uint64, error) {
	if difficulty < 0 || difficulty > len(zeros) {
		return 0, fmt.Errorf("difficulty must be between 0 and %d, got %d", len(zeros), difficulty)
	}

	var nonce uint64
	for {
		if nonce%1024 == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}

		if ValidProof(trans, lastHash, nonce, difficulty) {
			return nonce, nil
		}

		nonce++
	}
}
