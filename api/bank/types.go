// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/thor"
)

// Bank summarizes the staking pool and its governance.
type Bank struct {
	Address        thor.Address   `json:"address"`
	Token          thor.Address   `json:"token"`
	TotalStaked    *utils.Amount  `json:"totalStaked"`
	RewardPerBlock *utils.Amount  `json:"rewardPerBlock"`
	Managers       []thor.Address `json:"managers"`
	Quorum         string         `json:"quorum"`
	Confirmed      []thor.Address `json:"confirmed"`
}

// Stake of an account, with the reward a withdrawal in the pending block would pay.
type Stake struct {
	Address       thor.Address  `json:"address"`
	Principal     *utils.Amount `json:"principal"`
	Checkpoint    uint32        `json:"checkpoint"`
	PendingReward *utils.Amount `json:"pendingReward"`
	BlockNumber   uint32        `json:"blockNumber"`
}

type Manager struct {
	Index     uint64       `json:"index"`
	Address   thor.Address `json:"address"`
	Confirmed bool         `json:"confirmed"`
}
