// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bank implements the staking bank: a staking ledger paying block-elapsed rewards,
// whose reward rate can be changed only after every manager confirmed.
package bank

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin/bank/quorum"
	"github.com/vechain/tinybank/builtin/bank/reward"
	"github.com/vechain/tinybank/builtin/bank/stakes"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/log"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
)

// Event names.
const (
	EventStaked                = "Staked"
	EventWithdrawn             = "Withdrawn"
	EventRewarded              = "Rewarded"
	EventConfirmed             = "Confirmed"
	EventRewardPerBlockChanged = "RewardPerBlockChanged"
)

var slotToken = thor.BytesToBytes32([]byte("token"))

var logger = log.WithContext("pkg", "bank")

// Ledger is the part of the token ledger the bank depends on.
type Ledger interface {
	Address() thor.Address
	BalanceOf(addr thor.Address) (*uint256.Int, error)
	Transfer(from, to thor.Address, amount *uint256.Int) error
	TransferFrom(spender, owner, to thor.Address, amount *uint256.Int) error
	Mint(caller, to thor.Address, amount *uint256.Int) error
}

// Bank implements native methods of the bank contract.
type Bank struct {
	sctx   *solidity.Context
	ledger Ledger
	token  *solidity.Address

	stakesService *stakes.Service
	rewardService *reward.Service
	quorumService *quorum.Service
}

// New create a new instance. A nil calculator means the flat reward policy.
func New(addr thor.Address, state *state.State, journal solidity.Journal, ledger Ledger, calc reward.Calculator) *Bank {
	sctx := solidity.NewContext(addr, state, journal)
	return &Bank{
		sctx:          sctx,
		ledger:        ledger,
		token:         solidity.NewAddress(sctx, slotToken),
		stakesService: stakes.New(sctx),
		rewardService: reward.New(sctx, calc),
		quorumService: quorum.New(sctx),
	}
}

// Address returns the contract address.
func (b *Bank) Address() thor.Address {
	return b.sctx.Address()
}

// Initialize binds the bank to the token ledger and fixes the manager set.
func (b *Bank) Initialize(managers []thor.Address, rewardPerBlock *uint256.Int) error {
	token, err := b.token.Get()
	if err != nil {
		return err
	}
	if !token.IsZero() {
		return errors.New("bank already initialized")
	}
	return b.sctx.Atomic(func() error {
		if err := b.quorumService.Initialize(managers); err != nil {
			return err
		}
		b.token.Set(b.ledger.Address())
		b.rewardService.Initialize(rewardPerBlock)
		return nil
	})
}

//
// Getters - no state change
//

// Token returns the address of the token ledger.
func (b *Bank) Token() (thor.Address, error) {
	return b.token.Get()
}

func (b *Bank) TotalStaked() (*uint256.Int, error) {
	return b.stakesService.TotalStaked()
}

// Staked returns the principal of the account.
func (b *Bank) Staked(addr thor.Address) (*uint256.Int, error) {
	stake, err := b.stakesService.Get(addr)
	if err != nil {
		return nil, err
	}
	return stake.Principal, nil
}

// Checkpoint returns the block the account's accrual interval starts at.
func (b *Bank) Checkpoint(addr thor.Address) (uint32, error) {
	stake, err := b.stakesService.Get(addr)
	if err != nil {
		return 0, err
	}
	return stake.Checkpoint, nil
}

// PendingReward returns what a withdrawal at block would pay as reward.
func (b *Bank) PendingReward(addr thor.Address, block uint32) (*uint256.Int, error) {
	stake, err := b.stakesService.Get(addr)
	if err != nil {
		return nil, err
	}
	return b.rewardService.Compute(stake, block)
}

func (b *Bank) RewardPerBlock() (*uint256.Int, error) {
	return b.rewardService.RewardPerBlock()
}

func (b *Bank) Manager(index uint64) (thor.Address, error) {
	return b.quorumService.Manager(index)
}

func (b *Bank) Managers() ([]thor.Address, error) {
	return b.quorumService.Managers()
}

func (b *Bank) IsManager(addr thor.Address) (bool, error) {
	return b.quorumService.IsManager(addr)
}

func (b *Bank) IsConfirmed(addr thor.Address) (bool, error) {
	return b.quorumService.IsConfirmed(addr)
}

// Confirmed returns managers who confirmed the pending change.
func (b *Bank) Confirmed() ([]thor.Address, error) {
	return b.quorumService.Confirmed()
}

func (b *Bank) QuorumStatus() (quorum.Status, error) {
	return b.quorumService.Status()
}

//
// Setters - state change
//

// Stake pulls amount from the caller, who must have approved the bank beforehand.
func (b *Bank) Stake(caller thor.Address, amount *uint256.Int, block uint32) error {
	return b.sctx.Atomic(func() error {
		if err := b.ledger.TransferFrom(b.Address(), caller, b.Address(), amount); err != nil {
			return err
		}
		if err := b.stakesService.Deposit(caller, amount, block); err != nil {
			return err
		}
		b.sctx.Emit(EventStaked, caller, thor.Address{}, amount)
		return nil
	})
}

// Withdraw returns amount of principal to the caller and pays the reward accrued since
// the checkpoint, minted by the token ledger. It returns the paid reward.
func (b *Bank) Withdraw(caller thor.Address, amount *uint256.Int, block uint32) (*uint256.Int, error) {
	var paid *uint256.Int
	err := b.sctx.Atomic(func() error {
		stake, err := b.stakesService.Get(caller)
		if err != nil {
			return err
		}
		if stake.Principal.Lt(amount) {
			return stakes.ErrInsufficientStake
		}
		// the reward covers the interval before the checkpoint is moved
		rwd, err := b.rewardService.Compute(stake, block)
		if err != nil {
			return err
		}
		if err := b.stakesService.Withdraw(caller, amount, block); err != nil {
			return err
		}
		if !amount.IsZero() {
			if err := b.ledger.Transfer(b.Address(), caller, amount); err != nil {
				return err
			}
		}
		if !rwd.IsZero() {
			if err := b.ledger.Mint(b.Address(), caller, rwd); err != nil {
				return err
			}
		}
		b.sctx.Emit(EventWithdrawn, caller, thor.Address{}, amount)
		b.sctx.Emit(EventRewarded, caller, thor.Address{}, rwd)
		paid = rwd
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// Confirm records the caller's consent to the pending reward rate change.
func (b *Bank) Confirm(caller thor.Address) error {
	return b.sctx.Atomic(func() error {
		added, err := b.quorumService.Confirm(caller)
		if err != nil {
			return err
		}
		if !added {
			return nil
		}
		count, err := b.quorumService.Count()
		if err != nil {
			return err
		}
		logger.Debug("confirmed", "manager", caller, "count", count)
		b.sctx.Emit(EventConfirmed, caller, thor.Address{}, uint256.NewInt(count))
		return nil
	})
}

// SetRewardPerBlock applies the new rate once every manager confirmed. Anyone may call it.
func (b *Bank) SetRewardPerBlock(caller thor.Address, rate *uint256.Int) error {
	return b.sctx.Atomic(func() error {
		return b.quorumService.Execute(func(approval *quorum.Approval) error {
			if err := b.rewardService.SetRewardPerBlock(approval, rate); err != nil {
				return err
			}
			logger.Debug("reward per block changed", "caller", caller, "rate", rate, "round", approval.Round())
			b.sctx.Emit(EventRewardPerBlockChanged, caller, thor.Address{}, rate)
			return nil
		})
	})
}
