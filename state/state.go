// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tinybank/kv"
	"github.com/vechain/tinybank/stackedmap"
	"github.com/vechain/tinybank/thor"
)

// StorageBucket is the kv bucket holding contract storage.
const StorageBucket kv.Bucket = "s"

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	return append(append(make([]byte, 0, thor.AddressLength+32), k.addr[:]...), k.key[:]...)
}

// State manages the storage of contracts.
type State struct {
	getter kv.Getter
	cache  *Cache
	sm     *stackedmap.StackedMap
}

// New create state object reading committed storage from the getter.
func New(getter kv.Getter) *State {
	return newState(getter, nil)
}

func newState(getter kv.Getter, cache *Cache) *State {
	state := &State{
		getter: StorageBucket.NewGetter(getter),
		cache:  cache,
	}
	state.sm = stackedmap.New(state.load)
	return state
}

// load implements stackedmap.MapGetter.
func (s *State) load(key any) (any, bool, error) {
	k, ok := key.(storageKey)
	if !ok {
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
	if s.cache != nil {
		if v, ok := s.cache.get(k); ok {
			return v, true, nil
		}
	}
	v, err := s.getter.Get(k.bytes())
	if err != nil {
		if !s.getter.IsNotFound(err) {
			return nil, false, err
		}
		v = nil
	}
	raw := rlp.RawValue(v)
	if s.cache != nil {
		s.cache.add(k, raw)
	}
	return raw, true, nil
}

// GetRawStorage returns the raw storage value for the given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage sets the raw storage value. An empty value clears the slot.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns the storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage sets the storage value. Leading zero bytes are trimmed, a zero value clears the slot.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	var raw rlp.RawValue
	if !value.IsZero() {
		raw, _ = rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	}
	s.SetRawStorage(addr, key, raw)
}

// DecodeStorage decodes the raw storage value with the given decoder.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage stores the value produced by the given encoder.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	data, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, data)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 0 {
		panic("invalid revision")
	}
	s.sm.PopTo(revision)
}

// Stage collects the latest value of every written slot.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k, v any) bool {
		changes[k.(storageKey)] = v.(rlp.RawValue)
		return true
	})
	return &Stage{changes}
}
