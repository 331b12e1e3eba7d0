// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/builtin/solidity"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/test/datagen"
	"github.com/vechain/tinybank/thor"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.BytesToAddress([]byte("bank")), state.New(db), nil))
}

func TestDepositWithdraw(t *testing.T) {
	svc := newService(t)
	alice := datagen.RandAddress()

	empty, err := svc.Get(alice)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, uint32(0), empty.Checkpoint)

	require.NoError(t, svc.Deposit(alice, uint256.NewInt(100), 5))
	require.NoError(t, svc.Deposit(alice, uint256.NewInt(50), 7))

	stake, err := svc.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), stake.Principal.Uint64())
	assert.Equal(t, uint32(7), stake.Checkpoint)

	err = svc.Withdraw(alice, uint256.NewInt(151), 9)
	assert.True(t, reverts.Is(err, reverts.InsufficientStake))
	assert.Equal(t, "insufficient stake", err.Error())

	require.NoError(t, svc.Withdraw(alice, uint256.NewInt(100), 9))
	stake, err = svc.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), stake.Principal.Uint64())
	assert.Equal(t, uint32(9), stake.Checkpoint)

	require.NoError(t, svc.Withdraw(alice, uint256.NewInt(50), 10))
	stake, err = svc.Get(alice)
	require.NoError(t, err)
	assert.True(t, stake.IsEmpty())

	total, err := svc.TotalStaked()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestTotalStaked(t *testing.T) {
	svc := newService(t)
	accounts := datagen.RandAddresses(4)

	for i, acc := range accounts {
		require.NoError(t, svc.Deposit(acc, uint256.NewInt(uint64(i+1)*10), uint32(i)))
	}
	total, err := svc.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), total.Uint64())

	require.NoError(t, svc.Withdraw(accounts[3], uint256.NewInt(15), 10))
	total, err = svc.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint64(85), total.Uint64())
}

func TestDepositOverflow(t *testing.T) {
	svc := newService(t)
	alice := datagen.RandAddress()

	require.NoError(t, svc.Deposit(alice, new(uint256.Int).SetAllOne(), 1))
	err := svc.Deposit(alice, uint256.NewInt(1), 2)
	assert.True(t, reverts.Is(err, reverts.ArithmeticOverflow))
}
