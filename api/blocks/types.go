// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/thor"
)

// JSONBlockSummary block summary
type JSONBlockSummary struct {
	Number       uint32         `json:"number"`
	ID           thor.Bytes32   `json:"id"`
	ParentID     thor.Bytes32   `json:"parentID"`
	Timestamp    uint64         `json:"timestamp"`
	Transactions []thor.Bytes32 `json:"transactions"`
}

func buildJSONBlockSummary(b *chain.Block) *JSONBlockSummary {
	txs := b.Txs
	if txs == nil {
		txs = []thor.Bytes32{}
	}
	return &JSONBlockSummary{
		Number:       b.Number,
		ID:           b.ID(),
		ParentID:     b.ParentID,
		Timestamp:    b.Timestamp,
		Transactions: txs,
	}
}
