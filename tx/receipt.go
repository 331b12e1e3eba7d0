// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/vechain/tinybank/thor"
)

// Receipt represents the result of a transaction.
type Receipt struct {
	TxID        thor.Bytes32
	Origin      thor.Address
	BlockNumber uint32
	// Reverted is set when any clause failed, in which case no state change and no event was kept.
	Reverted     bool
	RevertKind   string
	RevertReason string
	// RevertClause is the index of the failed clause.
	RevertClause uint32
	Events       Events
}

// Receipts slice of receipts.
type Receipts []*Receipt
