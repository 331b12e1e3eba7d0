// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/kv"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
	"github.com/vechain/tinybank/xenv"
)

// Genesis to build genesis block.
type Genesis struct {
	builder *Builder
	id      thor.Bytes32
	name    string
}

// New creates the genesis of the config. Contracts deploy in two phases:
// the token ledger and the bank are initialized, then the deployer grants
// the minter role of the token to the bank.
func New(cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var extraData [28]byte
	copy(extraData[:], cfg.ExtraData)

	builder := new(Builder).
		Timestamp(cfg.LaunchTime).
		ExtraData(extraData).
		State(func(env *xenv.Environment) error {
			return builtin.Token.Native(env.State(), env).Initialize(
				cfg.Token.Name,
				cfg.Token.Symbol,
				cfg.Token.Decimals,
				cfg.Token.InitialMint.Uint256(),
				cfg.Deployer,
			)
		}).
		State(func(env *xenv.Environment) error {
			return builtin.Bank.Native(env.State(), env).Initialize(cfg.Bank.Managers, cfg.Bank.RewardPerBlock.Uint256())
		}).
		Call(
			tx.NewClause(builtin.Token.Address).MustWithMethod("setMinter", builtin.Bank.Address),
			cfg.Deployer)

	id, err := builder.ComputeID()
	if err != nil {
		return nil, errors.Wrap(err, "compute genesis id")
	}
	return &Genesis{builder, id, cfg.Token.Symbol}, nil
}

// NewDevnet creates the genesis for solo mode.
func NewDevnet() *Genesis {
	gene, err := New(DevConfig())
	if err != nil {
		panic(err)
	}
	return gene
}

// Build build the genesis block.
func (g *Genesis) Build(stater *state.Stater) (blk *chain.Block, events tx.Events, stage *state.Stage, err error) {
	return g.builder.Build(stater)
}

// ID returns genesis block ID.
func (g *Genesis) ID() thor.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// Setup writes the genesis state into db if absent and opens the chain repository.
// The genesis events are returned on every call, since they are not kept in the repository.
func (g *Genesis) Setup(db kv.Store) (*chain.Repository, tx.Events, error) {
	applied, err := chain.HasGenesis(db)
	if err != nil {
		return nil, nil, err
	}

	// genesis state never depends on the db content
	mem, err := lvldb.NewMem()
	if err != nil {
		return nil, nil, err
	}
	defer mem.Close()

	blk, events, stage, err := g.Build(state.NewStater(mem))
	if err != nil {
		return nil, nil, errors.Wrap(err, "build genesis")
	}

	if !applied {
		bulk := db.Bulk()
		if err := stage.Commit(bulk); err != nil {
			return nil, nil, errors.Wrap(err, "commit genesis state")
		}
		if err := bulk.Write(); err != nil {
			return nil, nil, err
		}
	}

	repo, err := chain.NewRepository(db, blk)
	if err != nil {
		return nil, nil, err
	}
	return repo, events, nil
}
