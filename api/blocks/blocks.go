// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/runtime"
)

type Blocks struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Blocks {
	return &Blocks{rt}
}

// parseRevision resolves "best", "pending" or a block number.
func (b *Blocks) parseRevision(revision string) (*chain.Block, error) {
	switch revision {
	case "", "best":
		return b.rt.Repo().BestBlock(), nil
	case "pending":
		return b.rt.Pending(), nil
	}
	n, err := utils.ParseUint64(revision)
	if err != nil || n > math.MaxUint32 {
		return nil, utils.BadRequest(errors.New("revision: invalid block number"))
	}
	if uint32(n) > b.rt.Repo().BestBlock().Number {
		return nil, nil
	}
	blk, err := b.rt.Repo().GetBlock(uint32(n))
	if err != nil {
		if b.rt.Repo().IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return blk, nil
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	blk, err := b.parseRevision(mux.Vars(req)["revision"])
	if err != nil {
		return err
	}
	if blk == nil {
		return utils.WriteJSON(w, nil)
	}
	return utils.WriteJSON(w, buildJSONBlockSummary(blk))
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/{revision}").Methods(http.MethodGet).Name("GET /blocks/{revision}").HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
}
