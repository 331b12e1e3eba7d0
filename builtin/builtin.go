// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/tinybank/builtin/bank"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/builtin/token"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
)

// Builtin contracts binding.
var (
	Token = &tokenContract{mustNewContract("Token")}
	Bank  = &bankContract{mustNewContract("Bank")}
)

type (
	tokenContract struct{ *contract }
	bankContract  struct{ *contract }
)

// Native binds the token ledger to the state. The journal is optional.
func (t *tokenContract) Native(state *state.State, journal solidity.Journal) *token.Token {
	return token.New(t.Address, state, journal)
}

// Native binds the bank, and the token ledger it depends on, to the state. The journal is optional.
func (b *bankContract) Native(state *state.State, journal solidity.Journal) *bank.Bank {
	return bank.New(b.Address, state, journal, Token.Native(state, journal), nil)
}

type contract struct {
	name    string
	Address thor.Address
}

func mustNewContract(name string) *contract {
	return &contract{
		name,
		thor.BytesToAddress([]byte(name)),
	}
}

// Name returns the contract name.
func (c *contract) Name() string {
	return c.name
}
