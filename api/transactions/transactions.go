// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/runtime"
	"github.com/vechain/tinybank/thor"
)

type Transactions struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Transactions {
	return &Transactions{rt}
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var raw *RawTx
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if raw == nil {
		return utils.BadRequest(errors.New("body: empty"))
	}
	trx, err := raw.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}

	receipt, err := t.rt.ExecuteTransaction(trx)
	if err != nil {
		if runtime.IsBadTx(err) {
			return utils.BadRequest(err)
		}
		if errors.Is(err, runtime.ErrKnownTx) {
			return utils.Conflict(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (t *Transactions) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	txID, err := thor.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	receipt, err := t.rt.Repo().GetReceipt(txID)
	if err != nil {
		if t.rt.Repo().IsNotFound(err) {
			return utils.WriteJSON(w, nil)
		}
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).Name("POST /transactions").HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/{id}/receipt").Methods(http.MethodGet).Name("GET /transactions/{id}/receipt").HandlerFunc(utils.WrapHandlerFunc(t.handleGetReceipt))
}
