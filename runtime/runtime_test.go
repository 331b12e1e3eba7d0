// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"crypto/ecdsa"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/builtin/bank"
	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/builtin/token"
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/genesis"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/test/datagen"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

var oneToken = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), oneToken)
}

type sinkRecorder struct {
	mu     sync.Mutex
	blocks []*chain.Block
	recpts []tx.Receipts
}

func (s *sinkRecorder) Write(b *chain.Block, receipts tx.Receipts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, b.Copy())
	s.recpts = append(s.recpts, receipts)
	return nil
}

type testRuntime struct {
	*Runtime
	t     *testing.T
	db    *lvldb.LevelDB
	nonce uint64
}

func newTestRuntime(t *testing.T, onDemand bool, sink Sink) *testRuntime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, _, err := genesis.NewDevnet().Setup(db)
	require.NoError(t, err)

	rt, err := New(db, repo, Options{OnDemand: onDemand, Sink: sink})
	require.NoError(t, err)
	return &testRuntime{Runtime: rt, t: t, db: db}
}

func (tr *testRuntime) newTx(pk *ecdsa.PrivateKey, clauses ...*tx.Clause) *tx.Transaction {
	tr.nonce++
	b := tx.NewBuilder(tr.Repo().ChainTag()).Nonce(tr.nonce)
	for _, c := range clauses {
		b.Clause(c)
	}
	return tx.MustSign(b.Build(), pk)
}

func (tr *testRuntime) exec(pk *ecdsa.PrivateKey, clauses ...*tx.Clause) *tx.Receipt {
	receipt, err := tr.ExecuteTransaction(tr.newTx(pk, clauses...))
	require.NoError(tr.t, err)
	return receipt
}

func (tr *testRuntime) balanceOf(addr thor.Address) *uint256.Int {
	var bal *uint256.Int
	require.NoError(tr.t, tr.View(func(st *state.State, _ uint32) (err error) {
		bal, err = builtin.Token.Native(st, nil).BalanceOf(addr)
		return
	}))
	return bal
}

func (tr *testRuntime) bank(fn func(b *bank.Bank, blockNum uint32)) {
	require.NoError(tr.t, tr.View(func(st *state.State, blockNum uint32) error {
		fn(builtin.Bank.Native(st, nil), blockNum)
		return nil
	}))
}

func clause(to thor.Address, method string, args ...any) *tx.Clause {
	return tx.NewClause(to).MustWithMethod(method, args...)
}

func TestRewardEveryBlock(t *testing.T) {
	tr := newTestRuntime(t, true, nil)
	signer0 := genesis.DevAccounts()[0]
	stakingAmount := tokens(50)

	assert.False(t, tr.exec(signer0.PrivateKey, clause(builtin.Token.Address, "approve", builtin.Bank.Address, stakingAmount)).Reverted)
	stakeReceipt := tr.exec(signer0.PrivateKey, clause(builtin.Bank.Address, "stake", stakingAmount))
	require.False(t, stakeReceipt.Reverted)

	tr.bank(func(b *bank.Bank, _ uint32) {
		staked, err := b.Staked(signer0.Address)
		require.NoError(t, err)
		assert.Equal(t, stakingAmount, staked)
		checkpoint, err := b.Checkpoint(signer0.Address)
		require.NoError(t, err)
		assert.Equal(t, stakeReceipt.BlockNumber, checkpoint)
	})
	assert.Equal(t, stakingAmount, tr.balanceOf(builtin.Bank.Address))

	for range 5 {
		receipt := tr.exec(signer0.PrivateKey, clause(builtin.Token.Address, "transfer", signer0.Address, tokens(1)))
		require.False(t, receipt.Reverted)
	}

	withdrawReceipt := tr.exec(signer0.PrivateKey, clause(builtin.Bank.Address, "withdraw", stakingAmount))
	require.False(t, withdrawReceipt.Reverted)
	assert.Equal(t, stakeReceipt.BlockNumber+6, withdrawReceipt.BlockNumber)

	// 100 minted + 6 blocks of reward
	assert.Equal(t, tokens(106), tr.balanceOf(signer0.Address))

	var names []string
	for _, ev := range withdrawReceipt.Events {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"Transfer", "Transfer", "Withdrawn", "Rewarded"}, names)
	assert.Equal(t, tokens(6), withdrawReceipt.Events[3].Amount)

	tr.bank(func(b *bank.Bank, _ uint32) {
		staked, err := b.Staked(signer0.Address)
		require.NoError(t, err)
		assert.True(t, staked.IsZero())
		total, err := b.TotalStaked()
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestRevertedTransaction(t *testing.T) {
	tr := newTestRuntime(t, true, nil)
	accs := genesis.DevAccounts()

	// the first clause succeeds, the second reverts, so the whole tx reverts
	receipt := tr.exec(accs[0].PrivateKey,
		clause(builtin.Token.Address, "transfer", accs[6].Address, tokens(1)),
		clause(builtin.Token.Address, "transfer", accs[6].Address, tokens(1000)),
	)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, uint32(1), receipt.RevertClause)
	assert.Equal(t, reverts.InsufficientBalance.String(), receipt.RevertKind)
	assert.Equal(t, token.ErrInsufficientBalance.Message(), receipt.RevertReason)
	assert.Empty(t, receipt.Events)

	assert.Equal(t, tokens(100), tr.balanceOf(accs[0].Address))
	assert.True(t, tr.balanceOf(accs[6].Address).IsZero())

	// still a known tx, sealed into a block
	stored, err := tr.Repo().GetReceipt(receipt.TxID)
	require.NoError(t, err)
	assert.True(t, stored.Reverted)
	b, err := tr.Repo().GetBlock(receipt.BlockNumber)
	require.NoError(t, err)
	assert.Equal(t, []thor.Bytes32{receipt.TxID}, b.Txs)
}

func TestQuorumScenario(t *testing.T) {
	tr := newTestRuntime(t, true, nil)
	accs := genesis.DevAccounts()
	confirm := clause(builtin.Bank.Address, "confirm")

	hackerKey, _ := datagen.RandKey()

	receipt := tr.exec(hackerKey, confirm)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "You are not a manager", receipt.RevertReason)
	assert.Equal(t, reverts.Unauthorized.String(), receipt.RevertKind)

	for i := 1; i <= 4; i++ {
		require.False(t, tr.exec(accs[i].PrivateKey, confirm).Reverted)
	}
	receipt = tr.exec(accs[0].PrivateKey, clause(builtin.Bank.Address, "setRewardPerBlock", tokens(2)))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Not all confirmed yet", receipt.RevertReason)
	assert.Equal(t, reverts.QuorumNotMet.String(), receipt.RevertKind)

	require.False(t, tr.exec(accs[5].PrivateKey, confirm).Reverted)
	receipt = tr.exec(accs[0].PrivateKey, clause(builtin.Bank.Address, "setRewardPerBlock", tokens(2)))
	require.False(t, receipt.Reverted)

	tr.bank(func(b *bank.Bank, _ uint32) {
		rate, err := b.RewardPerBlock()
		require.NoError(t, err)
		assert.Equal(t, tokens(2), rate)
		confirmed, err := b.Confirmed()
		require.NoError(t, err)
		assert.Empty(t, confirmed)
	})

	receipt = tr.exec(accs[0].PrivateKey, clause(builtin.Bank.Address, "setRewardPerBlock", tokens(3)))
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Not all confirmed yet", receipt.RevertReason)
}

func TestKnownAndBadTx(t *testing.T) {
	tr := newTestRuntime(t, true, nil)
	acc := genesis.DevAccounts()[0]

	trx := tr.newTx(acc.PrivateKey, clause(builtin.Token.Address, "transfer", acc.Address, tokens(1)))
	_, err := tr.ExecuteTransaction(trx)
	require.NoError(t, err)

	_, err = tr.ExecuteTransaction(trx)
	assert.Equal(t, ErrKnownTx, err)

	wrongTag := tx.MustSign(tx.NewBuilder(tr.Repo().ChainTag()+1).
		Clause(clause(builtin.Token.Address, "transfer", acc.Address, tokens(1))).
		Build(), acc.PrivateKey)
	_, err = tr.ExecuteTransaction(wrongTag)
	assert.True(t, IsBadTx(err))

	unsigned := tx.NewBuilder(tr.Repo().ChainTag()).
		Clause(clause(builtin.Token.Address, "transfer", acc.Address, tokens(1))).
		Build()
	_, err = tr.ExecuteTransaction(unsigned)
	assert.True(t, IsBadTx(err))

	noClause := tx.MustSign(tx.NewBuilder(tr.Repo().ChainTag()).Build(), acc.PrivateKey)
	_, err = tr.ExecuteTransaction(noClause)
	assert.True(t, IsBadTx(err))
}

func TestIntervalMode(t *testing.T) {
	sink := &sinkRecorder{}
	tr := newTestRuntime(t, false, sink)
	acc := genesis.DevAccounts()[0]

	pending := tr.Pending()
	assert.Equal(t, uint32(1), pending.Number)
	assert.Equal(t, tr.Repo().GenesisBlock().ID(), pending.ParentID)

	r1 := tr.exec(acc.PrivateKey, clause(builtin.Token.Address, "transfer", acc.Address, tokens(1)))
	r2 := tr.exec(acc.PrivateKey, clause(builtin.Token.Address, "transfer", acc.Address, tokens(1)))
	assert.Equal(t, uint32(1), r1.BlockNumber)
	assert.Equal(t, uint32(1), r2.BlockNumber)
	assert.Equal(t, uint32(0), tr.Repo().BestBlock().Number)

	sealed, err := tr.Mine()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), sealed.Number)
	assert.Equal(t, []thor.Bytes32{r1.TxID, r2.TxID}, sealed.Txs)
	assert.Equal(t, sealed.ID(), tr.Repo().BestBlock().ID())
	assert.Equal(t, uint32(2), tr.Pending().Number)
	assert.Greater(t, tr.Pending().Timestamp, sealed.Timestamp)

	// empty blocks still advance the height
	empty, err := tr.Mine()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), empty.Number)
	assert.Empty(t, empty.Txs)

	require.Len(t, sink.blocks, 2)
	assert.Equal(t, uint32(1), sink.blocks[0].Number)
	require.Len(t, sink.recpts[0], 2)
	assert.Equal(t, r1.TxID, sink.recpts[0][0].TxID)
	assert.Empty(t, sink.recpts[1])
}

func TestResumePending(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gene := genesis.NewDevnet()
	repo, _, err := gene.Setup(db)
	require.NoError(t, err)
	rt, err := New(db, repo, Options{})
	require.NoError(t, err)

	acc := genesis.DevAccounts()[0]
	trx := tx.MustSign(tx.NewBuilder(repo.ChainTag()).
		Clause(clause(builtin.Token.Address, "transfer", genesis.DevAccounts()[7].Address, tokens(1))).
		Build(), acc.PrivateKey)
	_, err = rt.ExecuteTransaction(trx)
	require.NoError(t, err)

	// reopen over the same db
	repo, _, err = gene.Setup(db)
	require.NoError(t, err)
	rt, err = New(db, repo, Options{})
	require.NoError(t, err)

	pending := rt.Pending()
	assert.Equal(t, uint32(1), pending.Number)
	assert.Equal(t, []thor.Bytes32{trx.ID()}, pending.Txs)

	require.NoError(t, rt.View(func(st *state.State, blockNum uint32) error {
		assert.Equal(t, uint32(1), blockNum)
		bal, err := builtin.Token.Native(st, nil).BalanceOf(genesis.DevAccounts()[7].Address)
		require.NoError(t, err)
		assert.Equal(t, tokens(1), bal)
		return nil
	}))
}
