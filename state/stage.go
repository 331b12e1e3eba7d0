// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tinybank/kv"
	"github.com/vechain/tinybank/thor"
)

// Stage abstracts the storage changes of a state.
type Stage struct {
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the putter. Cleared slots are deleted.
func (s *Stage) Commit(putter kv.Putter) error {
	putter = StorageBucket.NewPutter(putter)
	for k, v := range s.changes {
		if len(v) == 0 {
			if err := putter.Delete(k.bytes()); err != nil {
				return err
			}
			continue
		}
		if err := putter.Put(k.bytes(), v); err != nil {
			return err
		}
	}
	return nil
}

// Hash computes a digest of the changes, independent of write order.
func (s *Stage) Hash() thor.Bytes32 {
	keys := make([][]byte, 0, len(s.changes))
	values := make(map[string]rlp.RawValue, len(s.changes))
	for k, v := range s.changes {
		kb := k.bytes()
		keys = append(keys, kb)
		values[string(kb)] = v
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})
	return thor.Blake2bFn(func(w io.Writer) {
		for _, k := range keys {
			w.Write(k)
			w.Write(values[string(k)])
		}
	})
}
