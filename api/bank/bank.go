// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bank

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/runtime"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
)

type Banks struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Banks {
	return &Banks{rt}
}

func (b *Banks) getBank() (*Bank, error) {
	var res *Bank
	err := b.rt.View(func(st *state.State, _ uint32) error {
		native := builtin.Bank.Native(st, nil)
		tokenAddr, err := native.Token()
		if err != nil {
			return err
		}
		total, err := native.TotalStaked()
		if err != nil {
			return err
		}
		rate, err := native.RewardPerBlock()
		if err != nil {
			return err
		}
		managers, err := native.Managers()
		if err != nil {
			return err
		}
		status, err := native.QuorumStatus()
		if err != nil {
			return err
		}
		confirmed, err := native.Confirmed()
		if err != nil {
			return err
		}
		if confirmed == nil {
			confirmed = []thor.Address{}
		}
		res = &Bank{
			Address:        builtin.Bank.Address,
			Token:          tokenAddr,
			TotalStaked:    utils.NewAmount(total),
			RewardPerBlock: utils.NewAmount(rate),
			Managers:       managers,
			Quorum:         status.String(),
			Confirmed:      confirmed,
		}
		return nil
	})
	return res, err
}

func (b *Banks) handleGetBank(w http.ResponseWriter, _ *http.Request) error {
	res, err := b.getBank()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (b *Banks) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var stake Stake
	if err := b.rt.View(func(st *state.State, blockNum uint32) error {
		native := builtin.Bank.Native(st, nil)
		principal, err := native.Staked(addr)
		if err != nil {
			return err
		}
		checkpoint, err := native.Checkpoint(addr)
		if err != nil {
			return err
		}
		reward, err := native.PendingReward(addr, blockNum)
		if err != nil {
			return err
		}
		stake = Stake{
			Address:       addr,
			Principal:     utils.NewAmount(principal),
			Checkpoint:    checkpoint,
			PendingReward: utils.NewAmount(reward),
			BlockNumber:   blockNum,
		}
		return nil
	}); err != nil {
		return utils.RevertToHTTP(err)
	}
	return utils.WriteJSON(w, &stake)
}

func (b *Banks) handleGetManager(w http.ResponseWriter, req *http.Request) error {
	index, err := utils.ParseUint64(mux.Vars(req)["index"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	var manager Manager
	if err := b.rt.View(func(st *state.State, _ uint32) error {
		native := builtin.Bank.Native(st, nil)
		addr, err := native.Manager(index)
		if err != nil {
			return err
		}
		confirmed, err := native.IsConfirmed(addr)
		if err != nil {
			return err
		}
		manager = Manager{Index: index, Address: addr, Confirmed: confirmed}
		return nil
	}); err != nil {
		return utils.RevertToHTTP(err)
	}
	return utils.WriteJSON(w, &manager)
}

func (b *Banks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /bank").HandlerFunc(utils.WrapHandlerFunc(b.handleGetBank))
	sub.Path("/stakes/{address}").Methods(http.MethodGet).Name("GET /bank/stakes").HandlerFunc(utils.WrapHandlerFunc(b.handleGetStake))
	sub.Path("/managers/{index}").Methods(http.MethodGet).Name("GET /bank/managers").HandlerFunc(utils.WrapHandlerFunc(b.handleGetManager))
}
