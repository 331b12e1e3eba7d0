// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"fmt"

	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/genesis"
	"github.com/vechain/tinybank/logdb"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/runtime"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/test/datagen"
	"github.com/vechain/tinybank/tx"
)

// Chain is an in-memory ledger for integration tests. Every transaction is
// sealed in its own block and the events are written to an in-memory log db.
type Chain struct {
	db      *lvldb.LevelDB
	genesis *genesis.Genesis
	rt      *runtime.Runtime
	logDB   *logdb.LogDB
}

// NewDefault creates a Chain with the dev genesis.
func NewDefault() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a Chain with a custom genesis.
func NewWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	repo, events, err := gene.Setup(db)
	if err != nil {
		return nil, fmt.Errorf("unable to setup genesis: %w", err)
	}

	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	if err := logDB.Write(repo.GenesisBlock(), tx.Receipts{{Events: events}}); err != nil {
		return nil, err
	}

	rt, err := runtime.New(db, repo, runtime.Options{OnDemand: true, Sink: logDB})
	if err != nil {
		return nil, err
	}
	return &Chain{
		db:      db,
		genesis: gene,
		rt:      rt,
		logDB:   logDB,
	}, nil
}

func (c *Chain) Genesis() *genesis.Genesis {
	return c.genesis
}

func (c *Chain) Repo() *chain.Repository {
	return c.rt.Repo()
}

func (c *Chain) Runtime() *runtime.Runtime {
	return c.rt
}

func (c *Chain) LogDB() *logdb.LogDB {
	return c.logDB
}

// State returns the committed state.
func (c *Chain) State() *state.State {
	var st *state.State
	_ = c.rt.View(func(s *state.State, _ uint32) error {
		st = s
		return nil
	})
	return st
}

// BuildTx creates a transaction signed by the account.
func (c *Chain) BuildTx(account genesis.DevAccount, clauses ...*tx.Clause) *tx.Transaction {
	builder := tx.NewBuilder(c.Repo().ChainTag()).Nonce(datagen.RandUint64())
	for _, clause := range clauses {
		builder.Clause(clause)
	}
	return tx.MustSign(builder.Build(), account.PrivateKey)
}

// MintClauses executes a transaction with the provided clauses and seals a block containing it.
func (c *Chain) MintClauses(account genesis.DevAccount, clauses ...*tx.Clause) (*tx.Receipt, error) {
	receipt, err := c.rt.ExecuteTransaction(c.BuildTx(account, clauses...))
	if err != nil {
		return nil, fmt.Errorf("unable to execute tx: %w", err)
	}
	return receipt, nil
}

// MintBlock seals an empty block.
func (c *Chain) MintBlock() error {
	_, err := c.rt.Mine()
	return err
}

// Close releases the databases.
func (c *Chain) Close() error {
	if err := c.logDB.Close(); err != nil {
		return err
	}
	return c.db.Close()
}
