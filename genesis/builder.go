// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
	"github.com/vechain/tinybank/xenv"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64

	stateProcs []func(env *xenv.Environment) error
	calls      []call
	extraData  [28]byte
}

type call struct {
	clause *tx.Clause
	caller thor.Address
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process. Events journaled by the process become genesis events.
func (b *Builder) State(proc func(env *xenv.Environment) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a native method call, executed after all state processes.
func (b *Builder) Call(clause *tx.Clause, caller thor.Address) *Builder {
	b.calls = append(b.calls, call{clause, caller})
	return b
}

// ExtraData set extra data, which will be hashed into the genesis parent id.
func (b *Builder) ExtraData(data [28]byte) *Builder {
	b.extraData = data
	return b
}

// ComputeID compute genesis ID.
func (b *Builder) ComputeID() (thor.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return thor.Bytes32{}, err
	}
	defer db.Close()

	blk, _, _, err := b.Build(state.NewStater(db))
	if err != nil {
		return thor.Bytes32{}, err
	}
	return blk.ID(), nil
}

// Build build genesis block according to presets. The returned stage is not committed.
func (b *Builder) Build(stater *state.Stater) (blk *chain.Block, events tx.Events, stage *state.Stage, err error) {
	st := stater.NewState()
	blockCtx := &xenv.BlockContext{Number: 0, Time: b.timestamp}

	env := xenv.New(st, blockCtx, &xenv.TransactionContext{})
	for _, proc := range b.stateProcs {
		if err := proc(env); err != nil {
			return nil, nil, nil, errors.Wrap(err, "state process")
		}
	}
	events = env.Events()

	for i, call := range b.calls {
		env := xenv.New(st, blockCtx, &xenv.TransactionContext{Origin: call.caller})
		if err := builtin.Call(env, call.clause); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "call %d %v", i, call.clause.Method())
		}
		events = append(events, env.Events()...)
	}

	stage = st.Stage()

	// so, genesis number is 0
	parentID := thor.Bytes32{0xff, 0xff, 0xff, 0xff}
	digest := thor.Blake2b(b.extraData[:], stage.Hash().Bytes())
	copy(parentID[4:], digest[:])

	return &chain.Block{
		Number:    0,
		ParentID:  parentID,
		Timestamp: b.timestamp,
	}, events, stage, nil
}
