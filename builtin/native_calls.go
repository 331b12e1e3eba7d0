// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/holiman/uint256"

	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
	"github.com/vechain/tinybank/xenv"
)

func init() {
	Token.impl("transfer", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			To     thor.Address
			Amount *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Token.Native(env.State(), env).Transfer(env.Caller(), args.To, args.Amount)
	})
	Token.impl("approve", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			Spender thor.Address
			Amount  *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Token.Native(env.State(), env).Approve(env.Caller(), args.Spender, args.Amount)
	})
	Token.impl("transferFrom", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			From   thor.Address
			To     thor.Address
			Amount *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Token.Native(env.State(), env).TransferFrom(env.Caller(), args.From, args.To, args.Amount)
	})
	Token.impl("mint", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			To     thor.Address
			Amount *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Token.Native(env.State(), env).Mint(env.Caller(), args.To, args.Amount)
	})
	Token.impl("setMinter", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			Minter thor.Address
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Token.Native(env.State(), env).SetMinter(env.Caller(), args.Minter)
	})

	Bank.impl("stake", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			Amount *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Bank.Native(env.State(), env).Stake(env.Caller(), args.Amount, env.BlockContext().Number)
	})
	Bank.impl("withdraw", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			Amount *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		_, err := Bank.Native(env.State(), env).Withdraw(env.Caller(), args.Amount, env.BlockContext().Number)
		return err
	})
	Bank.impl("confirm", func(env *xenv.Environment, _ *tx.Clause) error {
		return Bank.Native(env.State(), env).Confirm(env.Caller())
	})
	Bank.impl("setRewardPerBlock", func(env *xenv.Environment, clause *tx.Clause) error {
		var args struct {
			Rate *uint256.Int
		}
		if err := decodeArgs(clause, &args); err != nil {
			return err
		}
		return Bank.Native(env.State(), env).SetRewardPerBlock(env.Caller(), args.Rate)
	})
}
