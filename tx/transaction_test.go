// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tinybank/thor"
)

const testChainTag byte = 0x27

func newTestTx(t *testing.T) *Transaction {
	to := thor.BytesToAddress([]byte("token"))
	recipient := thor.BytesToAddress([]byte("recipient"))
	clause, err := NewClause(to).WithMethod("transfer", recipient, uint256.NewInt(1000))
	require.NoError(t, err)
	return NewBuilder(testChainTag).Nonce(1).Clause(clause).Build()
}

func TestSignAndOrigin(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	unsigned := newTestTx(t)
	_, err = unsigned.Origin()
	assert.Error(t, err)
	assert.True(t, unsigned.ID().IsZero())

	signed := MustSign(unsigned, key)
	origin, err := signed.Origin()
	require.NoError(t, err)
	assert.Equal(t, addr, origin)

	assert.Equal(t, unsigned.SigningHash(), signed.SigningHash())
	assert.Equal(t, thor.Blake2b(signed.SigningHash().Bytes(), addr.Bytes()), signed.ID())
	assert.NoError(t, signed.Validate(testChainTag))
	assert.Error(t, signed.Validate(testChainTag+1))
}

func TestInvalidSignature(t *testing.T) {
	trx := newTestTx(t).WithSignature([]byte{1, 2, 3})
	_, err := trx.Origin()
	assert.Error(t, err)

	noClause := NewBuilder(testChainTag).Build()
	key, _ := crypto.GenerateKey()
	assert.Error(t, MustSign(noClause, key).Validate(testChainTag))
}

func TestTransactionRLP(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signed := MustSign(newTestTx(t), key)

	data, err := rlp.EncodeToBytes(signed)
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, rlp.DecodeBytes(data, &decoded))

	assert.Equal(t, signed.ID(), decoded.ID())
	assert.Equal(t, signed.Nonce(), decoded.Nonce())
	assert.Equal(t, signed.ChainTag(), decoded.ChainTag())
	require.Len(t, decoded.Clauses(), 1)
	assert.Equal(t, "transfer", decoded.Clauses()[0].Method())
}

func TestClauseArgs(t *testing.T) {
	to := thor.BytesToAddress([]byte("bank"))
	clause := NewClause(to).MustWithMethod("stake", uint256.NewInt(42))

	var args struct {
		Amount *uint256.Int
	}
	require.NoError(t, clause.DecodeArgs(&args))
	assert.Equal(t, uint64(42), args.Amount.Uint64())
	assert.Equal(t, to, clause.To())

	// confirm takes no argument
	empty := NewClause(to).MustWithMethod("confirm")
	var none struct{}
	assert.NoError(t, empty.DecodeArgs(&none))
}
