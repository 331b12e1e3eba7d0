// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/tinybank/builtin/token"
	"github.com/vechain/tinybank/thor"
)

// Config is the user customized genesis.
type Config struct {
	LaunchTime uint64       `yaml:"launchTime"`
	ExtraData  string       `yaml:"extraData"`
	Deployer   thor.Address `yaml:"deployer"`
	Token      TokenConfig  `yaml:"token"`
	Bank       BankConfig   `yaml:"bank"`
}

// TokenConfig holds the token ledger construction parameters.
type TokenConfig struct {
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
	// InitialMint is in whole tokens, scaled by 10^decimals at deployment.
	InitialMint *HexOrDecimal256 `yaml:"initialMint"`
}

// BankConfig holds the bank construction parameters.
type BankConfig struct {
	Managers       []thor.Address   `yaml:"managers"`
	RewardPerBlock *HexOrDecimal256 `yaml:"rewardPerBlock"`
}

// LoadConfig reads a YAML genesis config. An empty path returns the dev config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DevConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config can be deployed.
func (c *Config) Validate() error {
	if c.Deployer.IsZero() {
		return errors.New("deployer required")
	}
	if c.Token.Name == "" || c.Token.Symbol == "" {
		return errors.New("token name and symbol required")
	}
	if c.Token.Decimals > token.MaxDecimals {
		return fmt.Errorf("token decimals must not exceed %d", token.MaxDecimals)
	}
	if len(c.Bank.Managers) == 0 {
		return errors.New("at least one manager required")
	}
	seen := make(map[thor.Address]bool, len(c.Bank.Managers))
	for _, m := range c.Bank.Managers {
		if m.IsZero() {
			return errors.New("zero manager address")
		}
		if seen[m] {
			return fmt.Errorf("duplicated manager %v", m)
		}
		seen[m] = true
	}
	if len(c.ExtraData) > 28 {
		return errors.New("extra data exceeds 28 bytes")
	}
	return nil
}

// HexOrDecimal256 unmarshals a uint256 from hex or decimal text.
type HexOrDecimal256 uint256.Int

// NewHexOrDecimal256 wraps a uint256.
func NewHexOrDecimal256(v *uint256.Int) *HexOrDecimal256 {
	cpy := HexOrDecimal256(*v)
	return &cpy
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *HexOrDecimal256) UnmarshalText(input []byte) error {
	bigint, ok := math.ParseBig256(string(input))
	if !ok || bigint.Sign() < 0 {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	v, overflow := uint256.FromBig(bigint)
	if overflow {
		return fmt.Errorf("integer %q overflows 256 bits", input)
	}
	*i = HexOrDecimal256(*v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i HexOrDecimal256) MarshalText() ([]byte, error) {
	v := uint256.Int(i)
	return []byte(v.Dec()), nil
}

// Uint256 returns a copy of the value, zero for nil.
func (i *HexOrDecimal256) Uint256() *uint256.Int {
	if i == nil {
		return new(uint256.Int)
	}
	v := uint256.Int(*i)
	return &v
}
