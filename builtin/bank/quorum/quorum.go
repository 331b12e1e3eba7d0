// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package quorum implements the unanimous confirmation gate of a fixed manager set.
//
// Confirmations accumulate in a single pending slot. Once every manager has confirmed,
// Execute runs the protected operation, deletes the confirmations and moves to the next
// round, so confirmations never carry over to a later change.
package quorum

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/thor"
)

var (
	slotManagers      = thor.BytesToBytes32([]byte("managers"))
	slotManagerIndex  = thor.BytesToBytes32([]byte("manager-index"))
	slotRound         = thor.BytesToBytes32([]byte("quorum-round"))
	slotCount         = thor.BytesToBytes32([]byte("quorum-count"))
	slotConfirmations = thor.BytesToBytes32([]byte("confirmations"))
)

var (
	ErrNotManager    = reverts.New(reverts.Unauthorized, "You are not a manager")
	ErrQuorumNotMet  = reverts.New(reverts.QuorumNotMet, "Not all confirmed yet")
	ErrIndexOutRange = reverts.New(reverts.InvalidArgument, "manager index out of range")
)

// Status is the state of the pending slot.
type Status uint8

const (
	Idle Status = iota
	Collecting
	Ready
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case Ready:
		return "ready"
	}
	return "unknown"
}

type confirmationKey struct {
	round   uint64
	manager thor.Address
}

func (k confirmationKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.manager.Bytes(), k.round)
}

// Approval proves the quorum was met. Only Execute hands out a valid one, and only for the
// duration of the apply callback.
type Approval struct {
	round uint64
	valid bool
}

// Round returns the round the approval was granted in.
func (a *Approval) Round() uint64 {
	return a.round
}

// Valid reports whether the approval was granted by Execute.
func (a *Approval) Valid() bool {
	return a != nil && a.valid
}

type Service struct {
	managers      *solidity.Array[thor.Address]
	managerIndex  *solidity.Mapping[thor.Address, uint64]
	round         *solidity.Uint256
	count         *solidity.Uint256
	confirmations *solidity.Mapping[confirmationKey, bool]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		managers:      solidity.NewArray[thor.Address](sctx, slotManagers),
		managerIndex:  solidity.NewMapping[thor.Address, uint64](sctx, slotManagerIndex),
		round:         solidity.NewUint256(sctx, slotRound),
		count:         solidity.NewUint256(sctx, slotCount),
		confirmations: solidity.NewMapping[confirmationKey, bool](sctx, slotConfirmations),
	}
}

// Initialize stores the ordered manager set. It can be done only once.
func (s *Service) Initialize(managers []thor.Address) error {
	n, err := s.managers.Len()
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.New("managers already initialized")
	}
	if len(managers) == 0 {
		return reverts.New(reverts.InvalidArgument, "no manager")
	}
	for i, m := range managers {
		if m.IsZero() {
			return reverts.New(reverts.InvalidArgument, "manager is the zero address")
		}
		idx, err := s.managerIndex.Get(m)
		if err != nil {
			return err
		}
		if idx != 0 {
			return reverts.New(reverts.InvalidArgument, "duplicate manager "+m.String())
		}
		if err := s.managers.Push(m); err != nil {
			return err
		}
		// stored one-based, zero means not a manager
		if err := s.managerIndex.Set(m, uint64(i)+1); err != nil {
			return err
		}
	}
	return nil
}

//
// Getters - no state change
//

// Size returns the number of managers.
func (s *Service) Size() (uint64, error) {
	return s.managers.Len()
}

func (s *Service) Managers() ([]thor.Address, error) {
	return s.managers.All()
}

func (s *Service) Manager(index uint64) (thor.Address, error) {
	n, err := s.managers.Len()
	if err != nil {
		return thor.Address{}, err
	}
	if index >= n {
		return thor.Address{}, ErrIndexOutRange
	}
	return s.managers.Get(index)
}

func (s *Service) IsManager(addr thor.Address) (bool, error) {
	idx, err := s.managerIndex.Get(addr)
	if err != nil {
		return false, err
	}
	return idx != 0, nil
}

// Round returns the current round, increased by every successful Execute.
func (s *Service) Round() (uint64, error) {
	r, err := s.round.Get()
	if err != nil {
		return 0, err
	}
	return r.Uint64(), nil
}

// Count returns the number of managers who confirmed in the current round.
func (s *Service) Count() (uint64, error) {
	c, err := s.count.Get()
	if err != nil {
		return 0, err
	}
	return c.Uint64(), nil
}

// IsConfirmed reports whether the manager confirmed in the current round.
func (s *Service) IsConfirmed(addr thor.Address) (bool, error) {
	round, err := s.Round()
	if err != nil {
		return false, err
	}
	return s.confirmations.Get(confirmationKey{round, addr})
}

// Confirmed returns managers who confirmed in the current round, in manager order.
func (s *Service) Confirmed() ([]thor.Address, error) {
	managers, err := s.managers.All()
	if err != nil {
		return nil, err
	}
	confirmed := make([]thor.Address, 0, len(managers))
	for _, m := range managers {
		ok, err := s.IsConfirmed(m)
		if err != nil {
			return nil, err
		}
		if ok {
			confirmed = append(confirmed, m)
		}
	}
	return confirmed, nil
}

func (s *Service) Status() (Status, error) {
	count, err := s.Count()
	if err != nil {
		return Idle, err
	}
	size, err := s.Size()
	if err != nil {
		return Idle, err
	}
	switch {
	case count == 0:
		return Idle, nil
	case count < size:
		return Collecting, nil
	default:
		return Ready, nil
	}
}

//
// Setters - state change
//

// Confirm records the caller's confirmation for the pending change.
// Confirming twice in a round is a no-op, added reports whether the confirmation is new.
func (s *Service) Confirm(caller thor.Address) (added bool, err error) {
	isManager, err := s.IsManager(caller)
	if err != nil {
		return false, err
	}
	if !isManager {
		return false, ErrNotManager
	}
	round, err := s.Round()
	if err != nil {
		return false, err
	}
	key := confirmationKey{round, caller}
	confirmed, err := s.confirmations.Get(key)
	if err != nil {
		return false, err
	}
	if confirmed {
		return false, nil
	}
	if err := s.confirmations.Set(key, true); err != nil {
		return false, err
	}
	if err := s.count.Add(uint256.NewInt(1)); err != nil {
		return false, err
	}
	return true, nil
}

// Execute runs apply once every manager has confirmed, then clears all confirmations.
// Nothing is cleared if the quorum is not met or apply fails.
func (s *Service) Execute(apply func(*Approval) error) error {
	status, err := s.Status()
	if err != nil {
		return err
	}
	if status != Ready {
		return ErrQuorumNotMet
	}
	round, err := s.Round()
	if err != nil {
		return err
	}
	approval := &Approval{round: round, valid: true}
	err = apply(approval)
	approval.valid = false
	if err != nil {
		return err
	}
	managers, err := s.managers.All()
	if err != nil {
		return err
	}
	for _, m := range managers {
		s.confirmations.Delete(confirmationKey{round, m})
	}
	s.round.Set(uint256.NewInt(round + 1))
	s.count.Set(new(uint256.Int))
	return nil
}
