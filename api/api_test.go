// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tinybank/api"
	"github.com/vechain/tinybank/api/bank"
	"github.com/vechain/tinybank/api/blocks"
	"github.com/vechain/tinybank/api/events"
	"github.com/vechain/tinybank/api/token"
	"github.com/vechain/tinybank/api/transactions"
	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/genesis"
	"github.com/vechain/tinybank/test/testchain"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

var oneToken = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))

func tokens(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), oneToken)
}

type testServer struct {
	*httptest.Server
	chain *testchain.Chain
}

// newTestServer serves a ledger where account 0 approved and staked 50 tokens,
// in blocks 1 and 2.
func newTestServer(t *testing.T) *testServer {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(func() { chain.Close() })

	acc := genesis.DevAccounts()[0]
	receipt, err := chain.MintClauses(acc, tx.NewClause(builtin.Token.Address).MustWithMethod("approve", builtin.Bank.Address, tokens(50)))
	require.NoError(t, err)
	require.False(t, receipt.Reverted)
	receipt, err = chain.MintClauses(acc, tx.NewClause(builtin.Bank.Address).MustWithMethod("stake", tokens(50)))
	require.NoError(t, err)
	require.False(t, receipt.Reverted)

	handler := api.New(chain.Runtime(), chain.LogDB(), api.Options{
		AllowedOrigins:  "*",
		EnableReqLogger: true,
		EnableMetrics:   true,
		LogsLimit:       100,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return &testServer{ts, chain}
}

func (ts *testServer) get(t *testing.T, path string) ([]byte, int) {
	res, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func (ts *testServer) post(t *testing.T, path string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func decode[T any](t *testing.T, data []byte) T {
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func rawTx(t *testing.T, trx *tx.Transaction) *transactions.RawTx {
	data, err := rlp.EncodeToBytes(trx)
	require.NoError(t, err)
	return &transactions.RawTx{Raw: hexutil.Encode(data)}
}

func TestToken(t *testing.T) {
	ts := newTestServer(t)
	accs := genesis.DevAccounts()

	body, status := ts.get(t, "/token")
	require.Equal(t, http.StatusOK, status)
	tok := decode[token.Token](t, body)
	assert.Equal(t, builtin.Token.Address, tok.Address)
	assert.Equal(t, "MyToken", tok.Name)
	assert.Equal(t, "MT", tok.Symbol)
	assert.Equal(t, uint8(18), tok.Decimals)
	assert.Equal(t, tokens(100), tok.TotalSupply.Uint256())
	assert.Equal(t, accs[0].Address, tok.Owner)
	assert.Equal(t, builtin.Bank.Address, tok.Minter)

	body, status = ts.get(t, "/token/balances/"+accs[0].Address.String())
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tokens(50), decode[token.Balance](t, body).Balance.Uint256())

	body, status = ts.get(t, "/token/balances/"+builtin.Bank.Address.String())
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tokens(50), decode[token.Balance](t, body).Balance.Uint256())

	// consumed by the stake
	body, status = ts.get(t, "/token/allowances/"+accs[0].Address.String()+"/"+builtin.Bank.Address.String())
	require.Equal(t, http.StatusOK, status)
	allowance := decode[token.Allowance](t, body)
	assert.Equal(t, accs[0].Address, allowance.Owner)
	assert.Equal(t, builtin.Bank.Address, allowance.Spender)
	assert.True(t, allowance.Allowance.Uint256().IsZero())

	_, status = ts.get(t, "/token/balances/0xinvalid")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBank(t *testing.T) {
	ts := newTestServer(t)
	accs := genesis.DevAccounts()

	body, status := ts.get(t, "/bank")
	require.Equal(t, http.StatusOK, status)
	b := decode[bank.Bank](t, body)
	assert.Equal(t, builtin.Bank.Address, b.Address)
	assert.Equal(t, builtin.Token.Address, b.Token)
	assert.Equal(t, tokens(50), b.TotalStaked.Uint256())
	assert.Equal(t, oneToken, b.RewardPerBlock.Uint256())
	require.Len(t, b.Managers, 5)
	assert.Equal(t, accs[1].Address, b.Managers[0])
	assert.Equal(t, "idle", b.Quorum)
	assert.Empty(t, b.Confirmed)

	// staked at block 2, pending block is 3
	body, status = ts.get(t, "/bank/stakes/"+accs[0].Address.String())
	require.Equal(t, http.StatusOK, status)
	stake := decode[bank.Stake](t, body)
	assert.Equal(t, tokens(50), stake.Principal.Uint256())
	assert.Equal(t, uint32(2), stake.Checkpoint)
	assert.Equal(t, uint32(3), stake.BlockNumber)
	assert.Equal(t, tokens(1), stake.PendingReward.Uint256())

	body, status = ts.get(t, "/bank/stakes/"+accs[9].Address.String())
	require.Equal(t, http.StatusOK, status)
	stake = decode[bank.Stake](t, body)
	assert.True(t, stake.Principal.Uint256().IsZero())
	assert.True(t, stake.PendingReward.Uint256().IsZero())

	body, status = ts.get(t, "/bank/managers/4")
	require.Equal(t, http.StatusOK, status)
	manager := decode[bank.Manager](t, body)
	assert.Equal(t, uint64(4), manager.Index)
	assert.Equal(t, accs[5].Address, manager.Address)
	assert.False(t, manager.Confirmed)

	_, status = ts.get(t, "/bank/managers/5")
	assert.Equal(t, http.StatusNotFound, status)
	_, status = ts.get(t, "/bank/managers/abc")
	assert.Equal(t, http.StatusBadRequest, status)

	// a confirmation shows up
	receipt, err := ts.chain.MintClauses(accs[5], tx.NewClause(builtin.Bank.Address).MustWithMethod("confirm"))
	require.NoError(t, err)
	require.False(t, receipt.Reverted)

	body, _ = ts.get(t, "/bank/managers/4")
	assert.True(t, decode[bank.Manager](t, body).Confirmed)
	body, _ = ts.get(t, "/bank")
	b = decode[bank.Bank](t, body)
	assert.Equal(t, "collecting", b.Quorum)
	assert.Equal(t, []thor.Address{accs[5].Address}, b.Confirmed)
}

func TestTransactions(t *testing.T) {
	ts := newTestServer(t)
	accs := genesis.DevAccounts()

	trx := ts.chain.BuildTx(accs[0], tx.NewClause(builtin.Token.Address).MustWithMethod("transfer", accs[6].Address, tokens(1)))
	body, status := ts.post(t, "/transactions", rawTx(t, trx))
	require.Equal(t, http.StatusOK, status, string(body))
	receipt := decode[transactions.Receipt](t, body)
	assert.Equal(t, trx.ID(), receipt.TxID)
	assert.Equal(t, accs[0].Address, receipt.TxOrigin)
	assert.Equal(t, uint32(3), receipt.BlockNumber)
	assert.False(t, receipt.Reverted)
	assert.Nil(t, receipt.RevertClause)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "Transfer", receipt.Events[0].Name)
	assert.Equal(t, accs[6].Address, receipt.Events[0].Object)
	assert.Equal(t, tokens(1), receipt.Events[0].Amount.Uint256())

	body, status = ts.get(t, "/token/balances/"+accs[6].Address.String())
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tokens(1), decode[token.Balance](t, body).Balance.Uint256())

	// replay
	_, status = ts.post(t, "/transactions", rawTx(t, trx))
	assert.Equal(t, http.StatusConflict, status)

	body, status = ts.get(t, "/transactions/"+trx.ID().String()+"/receipt")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, trx.ID(), decode[transactions.Receipt](t, body).TxID)

	body, status = ts.get(t, "/transactions/"+thor.Bytes32{}.String()+"/receipt")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null\n", string(body))

	// reverted
	trx = ts.chain.BuildTx(accs[6], tx.NewClause(builtin.Bank.Address).MustWithMethod("setRewardPerBlock", tokens(2)))
	body, status = ts.post(t, "/transactions", rawTx(t, trx))
	require.Equal(t, http.StatusOK, status)
	receipt = decode[transactions.Receipt](t, body)
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "QuorumNotMet", receipt.RevertKind)
	assert.Equal(t, "Not all confirmed yet", receipt.RevertReason)
	require.NotNil(t, receipt.RevertClause)
	assert.Equal(t, uint32(0), *receipt.RevertClause)
	assert.Empty(t, receipt.Events)

	// another ledger
	other := tx.MustSign(tx.NewBuilder(ts.chain.Repo().ChainTag()+1).
		Clause(tx.NewClause(builtin.Bank.Address).MustWithMethod("confirm")).
		Build(), accs[1].PrivateKey)
	_, status = ts.post(t, "/transactions", rawTx(t, other))
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = ts.post(t, "/transactions", &transactions.RawTx{Raw: "0xzz"})
	assert.Equal(t, http.StatusBadRequest, status)
	_, status = ts.post(t, "/transactions", map[string]string{"unknown": "field"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBlocks(t *testing.T) {
	ts := newTestServer(t)

	body, status := ts.get(t, "/blocks/best")
	require.Equal(t, http.StatusOK, status)
	best := decode[blocks.JSONBlockSummary](t, body)
	assert.Equal(t, uint32(2), best.Number)
	assert.Equal(t, ts.chain.Repo().BestBlock().ID(), best.ID)
	assert.Len(t, best.Transactions, 1)

	body, _ = ts.get(t, "/blocks/0")
	genesisBlock := decode[blocks.JSONBlockSummary](t, body)
	assert.Equal(t, ts.chain.Genesis().ID(), genesisBlock.ID)
	assert.Empty(t, genesisBlock.Transactions)

	body, _ = ts.get(t, "/blocks/pending")
	pending := decode[blocks.JSONBlockSummary](t, body)
	assert.Equal(t, uint32(3), pending.Number)
	assert.Equal(t, best.ID, pending.ParentID)

	body, status = ts.get(t, "/blocks/3")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null\n", string(body))

	_, status = ts.get(t, "/blocks/abc")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestEvents(t *testing.T) {
	ts := newTestServer(t)
	accs := genesis.DevAccounts()

	staked := "Staked"
	body, status := ts.post(t, "/logs/event", &events.EventFilter{
		CriteriaSet: []*events.EventCriteria{{Address: &builtin.Bank.Address, Name: &staked}},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	evs := decode[[]*events.FilteredEvent](t, body)
	require.Len(t, evs, 1)
	assert.Equal(t, accs[0].Address, evs[0].Subject)
	assert.Equal(t, tokens(50), evs[0].Amount.Uint256())
	assert.Equal(t, uint32(2), evs[0].Meta.BlockNumber)
	assert.Equal(t, accs[0].Address, evs[0].Meta.TxOrigin)

	// genesis events + Approval + Transfer, Staked
	body, _ = ts.post(t, "/logs/event", &events.EventFilter{})
	assert.Len(t, decode[[]*events.FilteredEvent](t, body), 6)

	from := uint32(1)
	body, _ = ts.post(t, "/logs/event", &events.EventFilter{
		Range: &events.Range{From: &from},
		Order: "desc",
	})
	evs = decode[[]*events.FilteredEvent](t, body)
	require.Len(t, evs, 3)
	assert.Equal(t, "Staked", evs[0].Name)
	assert.Equal(t, "Approval", evs[2].Name)

	body, _ = ts.post(t, "/logs/event", &events.EventFilter{Options: &events.Options{Offset: 1, Limit: 2}})
	evs = decode[[]*events.FilteredEvent](t, body)
	require.Len(t, evs, 2)
	assert.Equal(t, uint32(1), evs[0].Meta.EventIndex)

	_, status = ts.post(t, "/logs/event", &events.EventFilter{Options: &events.Options{Limit: 101}})
	assert.Equal(t, http.StatusForbidden, status)

	_, status = ts.post(t, "/logs/event", map[string]any{"criteriaSet": []any{nil}})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = ts.post(t, "/logs/event", map[string]any{"order": "up"})
	assert.Equal(t, http.StatusBadRequest, status)

	to := uint32(0)
	_, status = ts.post(t, "/logs/event", &events.EventFilter{Range: &events.Range{From: &from, To: &to}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHeaders(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/token")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, ts.chain.Genesis().ID().String(), res.Header.Get("x-genesis-id"))
	assert.NotEmpty(t, res.Header.Get("x-request-id"))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/token", nil)
	require.NoError(t, err)
	req.Header.Set("x-genesis-id", thor.Bytes32{}.String())
	req.Header.Set("x-request-id", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", res.Header.Get("x-request-id"))

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/bank", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("Access-Control-Allow-Origin"))

	_, status := ts.get(t, "/unknown")
	assert.Equal(t, http.StatusNotFound, status)
}
