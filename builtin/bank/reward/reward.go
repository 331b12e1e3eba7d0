// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin/bank/quorum"
	"github.com/vechain/tinybank/builtin/bank/stakes"
	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/thor"
)

var slotRewardPerBlock = thor.BytesToBytes32([]byte("reward-per-block"))

var errOverflow = reverts.New(reverts.ArithmeticOverflow, "reward overflows")

// Calculator computes the reward accrued by a stake up to the given block.
type Calculator interface {
	Reward(stake *stakes.Stake, block uint32, rate *uint256.Int) (*uint256.Int, error)
}

// Elapsed returns the number of blocks since the checkpoint, zero if the block is not after it.
func Elapsed(checkpoint, block uint32) uint32 {
	if block <= checkpoint {
		return 0
	}
	return block - checkpoint
}

// Flat pays rate per elapsed block regardless of the staked amount.
// An empty stake accrues nothing.
type Flat struct{}

func (Flat) Reward(stake *stakes.Stake, block uint32, rate *uint256.Int) (*uint256.Int, error) {
	if stake.IsEmpty() {
		return new(uint256.Int), nil
	}
	elapsed := uint256.NewInt(uint64(Elapsed(stake.Checkpoint, block)))
	reward, overflow := new(uint256.Int).MulOverflow(elapsed, rate)
	if overflow {
		return nil, errOverflow
	}
	return reward, nil
}

// Service keeps the reward rate. The rate is written at initialization and otherwise
// only with a quorum approval.
type Service struct {
	rewardPerBlock *solidity.Uint256
	calc           Calculator
}

func New(sctx *solidity.Context, calc Calculator) *Service {
	if calc == nil {
		calc = Flat{}
	}
	return &Service{
		rewardPerBlock: solidity.NewUint256(sctx, slotRewardPerBlock),
		calc:           calc,
	}
}

// Initialize sets the initial rate.
func (s *Service) Initialize(rate *uint256.Int) {
	s.rewardPerBlock.Set(rate)
}

func (s *Service) RewardPerBlock() (*uint256.Int, error) {
	return s.rewardPerBlock.Get()
}

// SetRewardPerBlock changes the rate with an approval granted by the quorum gate.
func (s *Service) SetRewardPerBlock(approval *quorum.Approval, rate *uint256.Int) error {
	if !approval.Valid() {
		return errors.New("reward rate change requires a quorum approval")
	}
	s.rewardPerBlock.Set(rate)
	return nil
}

// Compute returns the reward of the stake at block using the current rate.
func (s *Service) Compute(stake *stakes.Stake, block uint32) (*uint256.Int, error) {
	rate, err := s.rewardPerBlock.Get()
	if err != nil {
		return nil, err
	}
	return s.calc.Reward(stake, block, rate)
}
