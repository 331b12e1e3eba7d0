// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
	"github.com/vechain/tinybank/xenv"
)

type methodKey struct {
	thor.Address
	name string
}

type nativeMethod struct {
	name string
	run  func(env *xenv.Environment, clause *tx.Clause) error
}

var nativeMethods = make(map[methodKey]*nativeMethod)

func (c *contract) impl(name string, run func(env *xenv.Environment, clause *tx.Clause) error) *nativeMethod {
	key := methodKey{c.Address, name}
	if _, dup := nativeMethods[key]; dup {
		panic("duplicated native method " + c.name + "." + name)
	}
	m := &nativeMethod{name, run}
	nativeMethods[key] = m
	return m
}

// Call executes the native method the clause targets, on behalf of the env caller.
func Call(env *xenv.Environment, clause *tx.Clause) error {
	m, ok := nativeMethods[methodKey{clause.To(), clause.Method()}]
	if !ok {
		return reverts.New(reverts.InvalidArgument, "unknown method "+clause.Method())
	}
	return m.run(env, clause)
}

// HasMethod returns whether the contract at addr implements the named method.
func HasMethod(addr thor.Address, name string) bool {
	_, ok := nativeMethods[methodKey{addr, name}]
	return ok
}

func decodeArgs(clause *tx.Clause, val any) error {
	if err := clause.DecodeArgs(val); err != nil {
		return reverts.New(reverts.InvalidArgument, "invalid arguments: "+err.Error())
	}
	return nil
}
