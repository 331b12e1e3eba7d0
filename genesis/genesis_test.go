// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/lvldb"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/thor"
)

func TestDevnet(t *testing.T) {
	gene := NewDevnet()
	assert.Equal(t, "MT", gene.Name())
	assert.False(t, gene.ID().IsZero())

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	repo, events, err := gene.Setup(db)
	require.NoError(t, err)
	assert.Equal(t, gene.ID(), repo.GenesisBlock().ID())
	assert.Equal(t, gene.ID(), repo.BestBlock().ID())
	assert.Equal(t, uint32(0), repo.BestBlock().Number)

	// Transfer, MinterChanged from the token, MinterChanged from the setMinter call
	require.Len(t, events, 3)
	assert.Equal(t, "Transfer", events[0].Name)
	assert.Equal(t, "MinterChanged", events[2].Name)
	assert.Equal(t, builtin.Bank.Address, events[2].Subject)

	accs := DevAccounts()
	st := state.NewStater(db).NewState()
	tok := builtin.Token.Native(st, nil)

	name, err := tok.Name()
	require.NoError(t, err)
	assert.Equal(t, "MyToken", name)

	oneToken := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Mul(uint256.NewInt(100), oneToken), supply)

	bal, err := tok.BalanceOf(accs[0].Address)
	require.NoError(t, err)
	assert.Equal(t, supply, bal)

	minter, err := tok.Minter()
	require.NoError(t, err)
	assert.Equal(t, builtin.Bank.Address, minter)

	bank := builtin.Bank.Native(st, nil)
	managers, err := bank.Managers()
	require.NoError(t, err)
	require.Len(t, managers, 5)
	for i, m := range managers {
		assert.Equal(t, accs[i+1].Address, m)
	}
	rate, err := bank.RewardPerBlock()
	require.NoError(t, err)
	assert.Equal(t, oneToken, rate)

	// reopening does not apply the genesis again, but still yields its events
	repo, reopened, err := gene.Setup(db)
	require.NoError(t, err)
	assert.Equal(t, events, reopened)
	assert.Equal(t, gene.ID(), repo.GenesisBlock().ID())
}

func TestGenesisMismatch(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, _, err = NewDevnet().Setup(db)
	require.NoError(t, err)

	cfg := DevConfig()
	cfg.Bank.Managers = cfg.Bank.Managers[:3]
	other, err := New(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, NewDevnet().ID(), other.ID())

	_, _, err = other.Setup(db)
	assert.EqualError(t, err, "genesis mismatch")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
		err    string
	}{
		{"zero deployer", func(cfg *Config) { cfg.Deployer = thor.Address{} }, "deployer required"},
		{"no symbol", func(cfg *Config) { cfg.Token.Symbol = "" }, "token name and symbol required"},
		{"decimals", func(cfg *Config) { cfg.Token.Decimals = 78 }, "token decimals must not exceed 77"},
		{"no managers", func(cfg *Config) { cfg.Bank.Managers = nil }, "at least one manager required"},
		{"zero manager", func(cfg *Config) { cfg.Bank.Managers[0] = thor.Address{} }, "zero manager address"},
		{"extra data", func(cfg *Config) { cfg.ExtraData = "0123456789012345678901234567890" }, "extra data exceeds 28 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DevConfig()
			tt.modify(cfg)
			assert.EqualError(t, cfg.Validate(), tt.err)
		})
	}

	cfg := DevConfig()
	cfg.Bank.Managers = append(cfg.Bank.Managers, cfg.Bank.Managers[0])
	assert.ErrorContains(t, cfg.Validate(), "duplicated manager")
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DevConfig(), cfg)

	accs := DevAccounts()
	content := `
launchTime: 1700000000
extraData: custom
deployer: ` + accs[0].Address.String() + `
token:
  name: Custom
  symbol: CT
  decimals: 6
  initialMint: 0x3e8
bank:
  managers:
    - ` + accs[1].Address.String() + `
    - ` + accs[2].Address.String() + `
  rewardPerBlock: "500"
`
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), cfg.LaunchTime)
	assert.Equal(t, accs[0].Address, cfg.Deployer)
	assert.Equal(t, "Custom", cfg.Token.Name)
	assert.Equal(t, uint8(6), cfg.Token.Decimals)
	assert.Equal(t, uint256.NewInt(1000), cfg.Token.InitialMint.Uint256())
	assert.Equal(t, []thor.Address{accs[1].Address, accs[2].Address}, cfg.Bank.Managers)
	assert.Equal(t, uint256.NewInt(500), cfg.Bank.RewardPerBlock.Uint256())

	gene, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "CT", gene.Name())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("token:\n  initialMint: abc\n"), 0o600))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "decode genesis file")
}

func TestHexOrDecimal256(t *testing.T) {
	var v HexOrDecimal256
	require.NoError(t, v.UnmarshalText([]byte("0xff")))
	assert.Equal(t, uint256.NewInt(255), v.Uint256())

	text, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "255", string(text))

	assert.Error(t, v.UnmarshalText([]byte("-1")))
	assert.True(t, (*HexOrDecimal256)(nil).Uint256().IsZero())
}
