// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     thor.Bytes32
	Origin thor.Address
}

// Environment an env to execute native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	events   tx.Events
}

// New create a new env.
func New(
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
) *Environment {
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }

// Caller returns the account calling native methods, which is the tx origin.
func (env *Environment) Caller() thor.Address { return env.txCtx.Origin }

// AddEvent appends an event to the journal.
func (env *Environment) AddEvent(ev *tx.Event) {
	env.events = append(env.events, ev)
}

// EventCount returns the number of journaled events.
func (env *Environment) EventCount() int {
	return len(env.events)
}

// TruncateEvents drops events journaled after the first n.
func (env *Environment) TruncateEvents(n int) {
	if n < len(env.events) {
		env.events = env.events[:n]
	}
}

// Events returns journaled events.
func (env *Environment) Events() tx.Events {
	return append(tx.Events(nil), env.events...)
}
