// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/vechain/tinybank/api/utils"
	"github.com/vechain/tinybank/thor"
)

// Token is the token ledger metadata.
type Token struct {
	Address     thor.Address  `json:"address"`
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	TotalSupply *utils.Amount `json:"totalSupply"`
	Owner       thor.Address  `json:"owner"`
	Minter      thor.Address  `json:"minter"`
}

type Balance struct {
	Address thor.Address  `json:"address"`
	Balance *utils.Amount `json:"balance"`
}

type Allowance struct {
	Owner     thor.Address  `json:"owner"`
	Spender   thor.Address  `json:"spender"`
	Allowance *utils.Amount `json:"allowance"`
}
