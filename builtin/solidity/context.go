// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/holiman/uint256"

	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

// Journal collects events emitted during execution.
type Journal interface {
	AddEvent(ev *tx.Event)
	EventCount() int
	TruncateEvents(n int)
}

type Context struct {
	address thor.Address
	state   *state.State
	journal Journal
}

// NewContext creates a context, journal is optional.
func NewContext(address thor.Address, state *state.State, journal Journal) *Context {
	return &Context{
		address: address,
		state:   state,
		journal: journal,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Emit records an event of the contract.
func (c *Context) Emit(name string, subject, object thor.Address, amount *uint256.Int) {
	if c.journal == nil {
		return
	}
	ev := &tx.Event{
		Address: c.address,
		Name:    name,
		Subject: subject,
		Object:  object,
		Amount:  new(uint256.Int),
	}
	if amount != nil {
		ev.Amount.Set(amount)
	}
	c.journal.AddEvent(ev)
}

// Atomic runs fn, discarding its storage writes and events if it fails.
func (c *Context) Atomic(fn func() error) error {
	checkpoint := c.state.NewCheckpoint()
	events := 0
	if c.journal != nil {
		events = c.journal.EventCount()
	}
	if err := fn(); err != nil {
		c.state.RevertTo(checkpoint)
		if c.journal != nil {
			c.journal.TruncateEvents(events)
		}
		return err
	}
	return nil
}
