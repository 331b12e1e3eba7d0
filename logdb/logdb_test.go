// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/logdb"
	"github.com/vechain/tinybank/test/datagen"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

var (
	tokenAddr = thor.BytesToAddress([]byte("Token"))
	bankAddr  = thor.BytesToAddress([]byte("Bank"))
)

func newBlock(parent *chain.Block) *chain.Block {
	if parent == nil {
		return &chain.Block{Timestamp: 1000}
	}
	return &chain.Block{Number: parent.Number + 1, ParentID: parent.ID(), Timestamp: parent.Timestamp + 10}
}

func TestWriteAndFilter(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	var (
		b        *chain.Block
		allTxIDs []thor.Bytes32
	)
	for i := range 10 {
		b = newBlock(b)
		txID := datagen.RandomHash()
		allTxIDs = append(allTxIDs, txID)
		receipts := tx.Receipts{
			{
				TxID:   txID,
				Origin: alice,
				Events: tx.Events{
					{Address: tokenAddr, Name: "Transfer", Subject: alice, Object: bankAddr, Amount: uint256.NewInt(uint64(i))},
					{Address: bankAddr, Name: "Staked", Subject: alice, Amount: uint256.NewInt(uint64(i))},
				},
			},
			{
				TxID:     datagen.RandomHash(),
				Origin:   bob,
				Reverted: true,
				Events:   tx.Events{{Address: bankAddr, Name: "Staked", Subject: bob}},
			},
		}
		require.NoError(t, db.Write(b, receipts))
	}

	newest, ok, err := db.NewestBlockNumber(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(9), newest)

	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)
	assert.Equal(t, uint32(0), all[0].BlockNumber)
	assert.Equal(t, uint32(0), all[0].Index)
	assert.Equal(t, uint32(1), all[1].Index)
	assert.Equal(t, "Transfer", all[0].Name)
	assert.Equal(t, alice, all[0].TxOrigin)
	assert.Equal(t, bankAddr, all[0].Object)
	assert.Equal(t, uint64(1000), all[0].BlockTime)
	assert.Equal(t, uint256.NewInt(9), all[19].Amount)
	assert.Equal(t, b.ID(), all[19].BlockID)

	// events of reverted receipts are never stored
	bobEvents, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Subject: &bob}},
	})
	require.NoError(t, err)
	assert.Empty(t, bobEvents)

	staked := "Staked"
	events, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &bankAddr, Name: &staked, Subject: &alice}},
		Range:       &logdb.Range{From: 2, To: 5},
		Order:       logdb.DESC,
	})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, uint32(5), events[0].BlockNumber)
	assert.Equal(t, uint32(2), events[3].BlockNumber)

	// or-ed criteria
	transfer := "Transfer"
	events, err = db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Name: &transfer}, {Name: &staked}},
		Options:     &logdb.Options{Offset: 3, Limit: 5},
	})
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, uint32(1), events[0].BlockNumber)
	assert.Equal(t, uint32(1), events[0].Index)

	events, err = db.FilterEvents(ctx, &logdb.EventFilter{TxID: &allTxIDs[3]})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint32(3), events[0].BlockNumber)

	// open ended range
	events, err = db.FilterEvents(ctx, &logdb.EventFilter{Range: &logdb.Range{From: 8}})
	require.NoError(t, err)
	assert.Len(t, events, 4)
}

func TestWriteEmptyAndReplace(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, ok, err := db.NewestBlockNumber(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	b := newBlock(nil)
	require.NoError(t, db.Write(b, nil))

	receipts := tx.Receipts{{
		TxID:   datagen.RandomHash(),
		Events: tx.Events{{Address: tokenAddr, Name: "Transfer", Amount: uint256.NewInt(1)}},
	}}
	require.NoError(t, db.Write(b, receipts))
	require.NoError(t, db.Write(b, receipts))

	events, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	assert.NotEmpty(t, db.DriverVersion())

	b := newBlock(nil)
	require.NoError(t, db.Write(b, tx.Receipts{{
		TxID:   datagen.RandomHash(),
		Events: tx.Events{{Address: tokenAddr, Name: "Approval"}},
	}}))
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.IsZero())
}
