// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

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

type Tokens struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Tokens {
	return &Tokens{rt}
}

func (t *Tokens) getToken() (*Token, error) {
	var tok *Token
	err := t.rt.View(func(st *state.State, _ uint32) error {
		native := builtin.Token.Native(st, nil)
		name, err := native.Name()
		if err != nil {
			return err
		}
		symbol, err := native.Symbol()
		if err != nil {
			return err
		}
		decimals, err := native.Decimals()
		if err != nil {
			return err
		}
		supply, err := native.TotalSupply()
		if err != nil {
			return err
		}
		owner, err := native.Owner()
		if err != nil {
			return err
		}
		minter, err := native.Minter()
		if err != nil {
			return err
		}
		tok = &Token{
			Address:     builtin.Token.Address,
			Name:        name,
			Symbol:      symbol,
			Decimals:    decimals,
			TotalSupply: utils.NewAmount(supply),
			Owner:       owner,
			Minter:      minter,
		}
		return nil
	})
	return tok, err
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	tok, err := t.getToken()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, tok)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var bal Balance
	if err := t.rt.View(func(st *state.State, _ uint32) error {
		v, err := builtin.Token.Native(st, nil).BalanceOf(addr)
		if err != nil {
			return err
		}
		bal = Balance{Address: addr, Balance: utils.NewAmount(v)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &bal)
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := thor.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	spender, err := thor.ParseAddress(mux.Vars(req)["spender"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "spender"))
	}
	var allowance Allowance
	if err := t.rt.View(func(st *state.State, _ uint32) error {
		v, err := builtin.Token.Native(st, nil).Allowance(owner, spender)
		if err != nil {
			return err
		}
		allowance = Allowance{Owner: owner, Spender: spender, Allowance: utils.NewAmount(v)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &allowance)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /token").HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/balances/{address}").Methods(http.MethodGet).Name("GET /token/balances").HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/allowances/{owner}/{spender}").Methods(http.MethodGet).Name("GET /token/allowances").HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
}
