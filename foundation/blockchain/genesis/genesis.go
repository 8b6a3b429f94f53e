// Package genesis maintains access to the chain parameters every node on the
// network must agree on.
package genesis

import (
	"encoding/json"
	"os"
)

// These values match the reference network. A node configured differently
// will reject the chains of its peers.
const (
	defaultDifficulty   = 2
	defaultMiningReward = 1
	defaultRewardSender = "The Blockchain"
	defaultPrevHash     = "00"
)

// Genesis represents the fixed parameters of the chain.
type Genesis struct {
	Difficulty   int    `json:"difficulty"`    // Number of leading zero hex characters required of a solved hash.
	MiningReward uint64 `json:"mining_reward"` // Amount credited to the miner of each block.
	RewardSender string `json:"reward_sender"` // Sentinel sender identifying system minted reward transactions.
	PrevHash     string `json:"prev_hash"`     // Previous hash recorded on the genesis block.
}

// Default returns the parameters of the reference network.
func Default() Genesis {
	return Genesis{
		Difficulty:   defaultDifficulty,
		MiningReward: defaultMiningReward,
		RewardSender: defaultRewardSender,
		PrevHash:     defaultPrevHash,
	}
}

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
