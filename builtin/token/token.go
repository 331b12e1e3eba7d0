// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible token ledger with a single authorized minter.
package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
)

// Event names.
const (
	EventTransfer      = "Transfer"
	EventApproval      = "Approval"
	EventMinterChanged = "MinterChanged"
)

// MaxDecimals keeps 10^decimals within 256 bits.
const MaxDecimals = 77

var (
	slotName        = thor.BytesToBytes32([]byte("name"))
	slotSymbol      = thor.BytesToBytes32([]byte("symbol"))
	slotDecimals    = thor.BytesToBytes32([]byte("decimals"))
	slotTotalSupply = thor.BytesToBytes32([]byte("total-supply"))
	slotOwner       = thor.BytesToBytes32([]byte("owner"))
	slotMinter      = thor.BytesToBytes32([]byte("minter"))
	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotAllowances  = thor.BytesToBytes32([]byte("allowances"))
)

var (
	ErrUnauthorized          = reverts.New(reverts.Unauthorized, "You are not authorized to manage this contract")
	ErrInsufficientBalance   = reverts.New(reverts.InsufficientBalance, "insufficient balance")
	ErrInsufficientAllowance = reverts.New(reverts.InsufficientAllowance, "insufficient allowance")
)

type allowanceKey struct {
	owner   thor.Address
	spender thor.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token implements native methods of the token contract.
type Token struct {
	sctx        *solidity.Context
	name        *solidity.String
	symbol      *solidity.String
	decimals    *solidity.Uint256
	totalSupply *solidity.Uint256
	owner       *solidity.Address
	minter      *solidity.Address
	balances    *solidity.Mapping[thor.Address, *uint256.Int]
	allowances  *solidity.Mapping[allowanceKey, *uint256.Int]
}

// New create a new instance.
func New(addr thor.Address, state *state.State, journal solidity.Journal) *Token {
	sctx := solidity.NewContext(addr, state, journal)
	return &Token{
		sctx:        sctx,
		name:        solidity.NewString(sctx, slotName),
		symbol:      solidity.NewString(sctx, slotSymbol),
		decimals:    solidity.NewUint256(sctx, slotDecimals),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		owner:       solidity.NewAddress(sctx, slotOwner),
		minter:      solidity.NewAddress(sctx, slotMinter),
		balances:    solidity.NewMapping[thor.Address, *uint256.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *uint256.Int](sctx, slotAllowances),
	}
}

// Address returns the contract address.
func (t *Token) Address() thor.Address {
	return t.sctx.Address()
}

// Initialize sets up the token metadata and mints initialMint × 10^decimals to the deployer,
// who becomes owner and minter.
func (t *Token) Initialize(name, symbol string, decimals uint8, initialMint *uint256.Int, deployer thor.Address) error {
	owner, err := t.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return errors.New("token already initialized")
	}
	if deployer.IsZero() {
		return reverts.New(reverts.InvalidArgument, "deployer is the zero address")
	}
	if decimals > MaxDecimals {
		return reverts.New(reverts.InvalidArgument, "decimals out of range")
	}
	unit := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	supply, overflow := new(uint256.Int).MulOverflow(initialMint, unit)
	if overflow {
		return reverts.New(reverts.ArithmeticOverflow, "initial supply overflows")
	}

	return t.sctx.Atomic(func() error {
		if err := t.name.Set(name); err != nil {
			return err
		}
		if err := t.symbol.Set(symbol); err != nil {
			return err
		}
		t.decimals.Set(uint256.NewInt(uint64(decimals)))
		t.owner.Set(deployer)
		t.minter.Set(deployer)
		if err := t.mint(deployer, supply); err != nil {
			return err
		}
		t.sctx.Emit(EventMinterChanged, deployer, thor.Address{}, nil)
		return nil
	})
}

//
// Getters - no state change
//

func (t *Token) Name() (string, error) {
	return t.name.Get()
}

func (t *Token) Symbol() (string, error) {
	return t.symbol.Get()
}

func (t *Token) Decimals() (uint8, error) {
	d, err := t.decimals.Get()
	if err != nil {
		return 0, err
	}
	return uint8(d.Uint64()), nil
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) Owner() (thor.Address, error) {
	return t.owner.Get()
}

// Minter returns the single account allowed to mint.
func (t *Token) Minter() (thor.Address, error) {
	return t.minter.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*uint256.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) Allowance(owner, spender thor.Address) (*uint256.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

//
// Setters - state change
//

// Transfer moves amount from the caller to the recipient.
func (t *Token) Transfer(from, to thor.Address, amount *uint256.Int) error {
	return t.sctx.Atomic(func() error {
		return t.transfer(from, to, amount)
	})
}

// Approve sets the amount the spender may pull from the owner.
func (t *Token) Approve(owner, spender thor.Address, amount *uint256.Int) error {
	return t.sctx.Atomic(func() error {
		if err := t.setAllowance(owner, spender, amount); err != nil {
			return err
		}
		t.sctx.Emit(EventApproval, owner, spender, amount)
		return nil
	})
}

// TransferFrom moves amount from the owner to the recipient on behalf of the spender.
func (t *Token) TransferFrom(spender, owner, to thor.Address, amount *uint256.Int) error {
	return t.sctx.Atomic(func() error {
		allowance, err := t.Allowance(owner, spender)
		if err != nil {
			return err
		}
		if allowance.Lt(amount) {
			return ErrInsufficientAllowance
		}
		if err := t.setAllowance(owner, spender, new(uint256.Int).Sub(allowance, amount)); err != nil {
			return err
		}
		return t.transfer(owner, to, amount)
	})
}

// Mint creates amount to the recipient. Only the minter may call it.
func (t *Token) Mint(caller, to thor.Address, amount *uint256.Int) error {
	minter, err := t.minter.Get()
	if err != nil {
		return err
	}
	if caller != minter {
		return ErrUnauthorized
	}
	return t.sctx.Atomic(func() error {
		return t.mint(to, amount)
	})
}

// SetMinter hands the mint capability over. Only the owner may call it.
func (t *Token) SetMinter(caller, minter thor.Address) error {
	owner, err := t.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrUnauthorized
	}
	t.minter.Set(minter)
	t.sctx.Emit(EventMinterChanged, minter, caller, nil)
	return nil
}

func (t *Token) mint(to thor.Address, amount *uint256.Int) error {
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}
	t.sctx.Emit(EventTransfer, thor.Address{}, to, amount)
	return nil
}

func (t *Token) transfer(from, to thor.Address, amount *uint256.Int) error {
	if err := t.subBalance(from, amount); err != nil {
		return err
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}
	t.sctx.Emit(EventTransfer, from, to, amount)
	return nil
}

func (t *Token) subBalance(addr thor.Address, amount *uint256.Int) error {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	return t.setBalance(addr, bal.Sub(bal, amount))
}

func (t *Token) addBalance(addr thor.Address, amount *uint256.Int) error {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(bal, amount); overflow {
		return reverts.New(reverts.ArithmeticOverflow, "balance overflows")
	}
	return t.setBalance(addr, bal)
}

func (t *Token) setBalance(addr thor.Address, bal *uint256.Int) error {
	if bal.IsZero() {
		t.balances.Delete(addr)
		return nil
	}
	return t.balances.Set(addr, bal)
}

func (t *Token) setAllowance(owner, spender thor.Address, amount *uint256.Int) error {
	key := allowanceKey{owner, spender}
	if amount.IsZero() {
		t.allowances.Delete(key)
		return nil
	}
	return t.allowances.Set(key, amount)
}
