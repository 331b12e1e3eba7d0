// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/thor"
)

// Array is a dynamic array of rlp encoded values. The length is kept at pos, the elements
// are kept in a mapping indexed from zero.
type Array[V any] struct {
	length   *Uint256
	elements *Mapping[thor.Bytes32, V]
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		length:   NewUint256(context, pos),
		elements: NewMapping[thor.Bytes32, V](context, thor.Blake2b(pos.Bytes())),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

func (a *Array[V]) Get(index uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if index >= n {
		return value, errors.Errorf("array index %d out of range [0, %d)", index, n)
	}
	return a.elements.Get(thor.Uint64ToBytes32(index))
}

func (a *Array[V]) Push(value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if err := a.elements.Set(thor.Uint64ToBytes32(n), value); err != nil {
		return err
	}
	a.length.Set(uint256.NewInt(n + 1))
	return nil
}

// All returns the elements in order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := a.elements.Get(thor.Uint64ToBytes32(i))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
