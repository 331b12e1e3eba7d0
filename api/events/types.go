// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"

	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/logdb"
	"github.com/vechain/tinybank/thor"
)

type LogMeta struct {
	BlockID        thor.Bytes32 `json:"blockID"`
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	TxID           thor.Bytes32 `json:"txID"`
	TxOrigin       thor.Address `json:"txOrigin"`
	EventIndex     uint32       `json:"eventIndex"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address thor.Address  `json:"address"`
	Name    string        `json:"name"`
	Subject thor.Address  `json:"subject"`
	Object  thor.Address  `json:"object"`
	Amount  *utils.Amount `json:"amount"`
	Meta    LogMeta       `json:"meta"`
}

func convertEvent(event *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Address: event.Address,
		Name:    event.Name,
		Subject: event.Subject,
		Object:  event.Object,
		Amount:  utils.NewAmount(event.Amount),
		Meta: LogMeta{
			BlockID:        event.BlockID,
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
			EventIndex:     event.Index,
		},
	}
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	Name    *string       `json:"name"`
	Subject *thor.Address `json:"subject"`
	Object  *thor.Address `json:"object"`
}

type Range struct {
	From *uint32 `json:"from"`
	To   *uint32 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	TxID        *thor.Bytes32    `json:"txID"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertRange(r *Range) (*logdb.Range, error) {
	if r == nil || (r.From == nil && r.To == nil) {
		return nil, nil
	}
	var rng logdb.Range
	if r.From != nil {
		rng.From = *r.From
	}
	if r.To == nil {
		// open ended, To below From
		if rng.From == 0 {
			return nil, nil
		}
		return &rng, nil
	}
	if *r.To < rng.From {
		return nil, fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	rng.To = *r.To
	return &rng, nil
}

func convertEventFilter(filter *EventFilter) (*logdb.EventFilter, error) {
	rng, err := convertRange(filter.Range)
	if err != nil {
		return nil, err
	}
	f := &logdb.EventFilter{
		Range: rng,
		TxID:  filter.TxID,
		Order: filter.Order,
	}
	if filter.Options != nil {
		f.Options = &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  filter.Options.Limit,
		}
	}
	for i, c := range filter.CriteriaSet {
		// {} is accepted and matches everything
		if c == nil {
			return nil, fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Name:    c.Name,
			Subject: c.Subject,
			Object:  c.Object,
		})
	}
	return f, nil
}
