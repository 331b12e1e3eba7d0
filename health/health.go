// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/thor"
)

type BlockIngestion struct {
	BestBlock                   thor.Bytes32 `json:"bestBlock"`
	BestBlockNumber             uint32       `json:"bestBlockNumber"`
	BestBlockIngestionTimestamp time.Time    `json:"bestBlockIngestionTimestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
}

// Health reports whether the ledger keeps sealing blocks. The best block is
// polled from the repository, so no hook into the runtime is needed.
type Health struct {
	lock        sync.Mutex
	repo        *chain.Repository
	maxBlockAge time.Duration
	bestBlockID thor.Bytes32
	seenAt      time.Time
	now         func() time.Time
}

// New creates a health tracker. A zero maxBlockAge disables the block age check,
// as in on-demand mode blocks are only sealed when transactions arrive.
func New(repo *chain.Repository, maxBlockAge time.Duration) *Health {
	return &Health{
		repo:        repo,
		maxBlockAge: maxBlockAge,
		now:         time.Now,
	}
}

func (h *Health) Status() *Status {
	h.lock.Lock()
	defer h.lock.Unlock()

	best := h.repo.BestBlock()
	now := h.now()
	if id := best.ID(); id != h.bestBlockID || h.seenAt.IsZero() {
		h.bestBlockID = id
		h.seenAt = now
	}

	return &Status{
		Healthy: h.maxBlockAge == 0 || now.Sub(h.seenAt) <= h.maxBlockAge,
		BlockIngestion: &BlockIngestion{
			BestBlock:                   h.bestBlockID,
			BestBlockNumber:             best.Number,
			BestBlockIngestionTimestamp: h.seenAt,
		},
	}
}
