// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/vechain/tinybank/thor"
)

// Event is emitted by a contract during execution.
// Subject is the primary account concerned, Object the counter party if any.
type Event struct {
	Address thor.Address
	Name    string
	Subject thor.Address
	Object  thor.Address
	Amount  *uint256.Int
}

func (e *Event) String() string {
	return fmt.Sprintf("%v(%v, %v, %v)@%v", e.Name, e.Subject, e.Object, e.Amount, e.Address)
}

// Events slice of events.
type Events []*Event
