// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/holiman/uint256"

	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/thor"
)

var (
	slotTotalStaked = thor.BytesToBytes32([]byte("total-staked"))
	slotStakes      = thor.BytesToBytes32([]byte("stakes"))
)

var ErrInsufficientStake = reverts.New(reverts.InsufficientStake, "insufficient stake")

// Stake is the principal of one account and the block its accrual interval starts at.
type Stake struct {
	Principal  *uint256.Int
	Checkpoint uint32
}

// IsEmpty returns true if nothing is staked.
func (s *Stake) IsEmpty() bool {
	return s.Principal == nil || s.Principal.IsZero()
}

// Service tracks per-account principal and the aggregate total.
// The total always equals the sum of all principals.
type Service struct {
	totalStaked *solidity.Uint256
	stakes      *solidity.Mapping[thor.Address, *Stake]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		totalStaked: solidity.NewUint256(sctx, slotTotalStaked),
		stakes:      solidity.NewMapping[thor.Address, *Stake](sctx, slotStakes),
	}
}

// Get returns the stake of the account, a zero stake if absent.
func (s *Service) Get(addr thor.Address) (*Stake, error) {
	stake, err := s.stakes.Get(addr)
	if err != nil {
		return nil, err
	}
	if stake.Principal == nil {
		stake.Principal = new(uint256.Int)
	}
	return stake, nil
}

func (s *Service) TotalStaked() (*uint256.Int, error) {
	return s.totalStaked.Get()
}

// Deposit adds amount to the principal and restarts the accrual interval at block.
func (s *Service) Deposit(addr thor.Address, amount *uint256.Int, block uint32) error {
	stake, err := s.Get(addr)
	if err != nil {
		return err
	}
	if _, overflow := stake.Principal.AddOverflow(stake.Principal, amount); overflow {
		return reverts.New(reverts.ArithmeticOverflow, "stake overflows")
	}
	if err := s.totalStaked.Add(amount); err != nil {
		return err
	}
	stake.Checkpoint = block
	return s.stakes.Set(addr, stake)
}

// Withdraw removes amount from the principal and restarts the accrual interval at block.
// A fully withdrawn stake is cleared.
func (s *Service) Withdraw(addr thor.Address, amount *uint256.Int, block uint32) error {
	stake, err := s.Get(addr)
	if err != nil {
		return err
	}
	if stake.Principal.Lt(amount) {
		return ErrInsufficientStake
	}
	if err := s.totalStaked.Sub(amount); err != nil {
		return err
	}
	stake.Principal.Sub(stake.Principal, amount)
	if stake.Principal.IsZero() {
		s.stakes.Delete(addr)
		return nil
	}
	stake.Checkpoint = block
	return s.stakes.Set(addr, stake)
}
