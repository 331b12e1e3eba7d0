// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin/reverts"
)

// Amount is a token amount, JSON encoded as a decimal string.
type Amount uint256.Int

func NewAmount(v *uint256.Int) *Amount {
	if v == nil {
		return (*Amount)(new(uint256.Int))
	}
	cpy := Amount(*v)
	return &cpy
}

func (a Amount) MarshalText() ([]byte, error) {
	v := uint256.Int(a)
	return []byte(v.Dec()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	v, err := uint256.FromDecimal(string(text))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", text, err)
	}
	*a = Amount(*v)
	return nil
}

// Uint256 returns a copy of the amount.
func (a *Amount) Uint256() *uint256.Int {
	v := uint256.Int(*a)
	return &v
}

// ParseUint64 parses a path or query parameter.
func ParseUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

// RevertToHTTP maps a revert raised by a read-only call to a client error.
func RevertToHTTP(err error) error {
	var revert *reverts.ErrRevert
	if errors.As(err, &revert) {
		if revert.Kind() == reverts.InvalidArgument {
			return NotFound(err)
		}
		return BadRequest(err)
	}
	return err
}
