// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

// RawTx raw transaction
type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	var trx *tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// Event an event emitted by a clause.
type Event struct {
	Address thor.Address  `json:"address"`
	Name    string        `json:"name"`
	Subject thor.Address  `json:"subject"`
	Object  thor.Address  `json:"object"`
	Amount  *utils.Amount `json:"amount"`
}

// Receipt for json marshal
type Receipt struct {
	TxID         thor.Bytes32 `json:"txID"`
	TxOrigin     thor.Address `json:"txOrigin"`
	BlockNumber  uint32       `json:"blockNumber"`
	Reverted     bool         `json:"reverted"`
	RevertKind   string       `json:"revertKind,omitempty"`
	RevertReason string       `json:"revertReason,omitempty"`
	RevertClause *uint32      `json:"revertClause,omitempty"`
	Events       []*Event     `json:"events"`
}

func convertReceipt(receipt *tx.Receipt) *Receipt {
	r := &Receipt{
		TxID:         receipt.TxID,
		TxOrigin:     receipt.Origin,
		BlockNumber:  receipt.BlockNumber,
		Reverted:     receipt.Reverted,
		RevertKind:   receipt.RevertKind,
		RevertReason: receipt.RevertReason,
		Events:       make([]*Event, len(receipt.Events)),
	}
	if receipt.Reverted {
		clause := receipt.RevertClause
		r.RevertClause = &clause
	}
	for i, ev := range receipt.Events {
		r.Events[i] = &Event{
			Address: ev.Address,
			Name:    ev.Name,
			Subject: ev.Subject,
			Object:  ev.Object,
			Amount:  utils.NewAmount(ev.Amount),
		}
	}
	return r
}
