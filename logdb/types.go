// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/holiman/uint256"

	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	BlockID     thor.Bytes32
	BlockNumber uint32
	BlockTime   uint64
	Index       uint32
	TxID        thor.Bytes32
	TxOrigin    thor.Address
	Address     thor.Address // always a contract address
	Name        string
	Subject     thor.Address
	Object      thor.Address
	Amount      *uint256.Int
}

// newEvent converts tx.Event to Event.
func newEvent(b *chain.Block, index uint32, txID thor.Bytes32, txOrigin thor.Address, ev *tx.Event) *Event {
	amount := new(uint256.Int)
	if ev.Amount != nil {
		amount.Set(ev.Amount)
	}
	return &Event{
		BlockID:     b.ID(),
		BlockNumber: b.Number,
		BlockTime:   b.Timestamp,
		Index:       index,
		TxID:        txID,
		TxOrigin:    txOrigin,
		Address:     ev.Address,
		Name:        ev.Name,
		Subject:     ev.Subject,
		Object:      ev.Object,
		Amount:      amount,
	}
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range of block numbers, both ends included.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Address *thor.Address // always a contract address
	Name    *string
	Subject *thor.Address
	Object  *thor.Address
}

// EventFilter filter. Criteria of the set are or-ed.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	TxID        *thor.Bytes32
	Options     *Options
	Order       Order // default asc
}
