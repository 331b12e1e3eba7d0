// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vechain/tinybank/kv"
)

const defaultCacheSize = 4096

// Cache caches committed raw storage values, shared by all states created by a Stater.
type Cache struct {
	lru *lru.Cache
}

// NewCache creates a cache holding at most size slots.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &Cache{c}
}

func (c *Cache) get(k storageKey) (rlp.RawValue, bool) {
	v, ok := c.lru.Get(k)
	if !ok {
		return nil, false
	}
	return v.(rlp.RawValue), true
}

func (c *Cache) add(k storageKey, v rlp.RawValue) {
	c.lru.Add(k, v)
}

func (c *Cache) evict(k storageKey) {
	c.lru.Remove(k)
}

// Stater is the state creator.
type Stater struct {
	db    kv.Store
	cache *Cache
}

// NewStater create a new stater.
func NewStater(db kv.Store) *Stater {
	return &Stater{db, NewCache(defaultCacheSize)}
}

// NewState create a new state object reading the committed storage.
func (s *Stater) NewState() *State {
	return newState(s.db, s.cache)
}

// Commit writes the stage into the bulk and evicts the changed slots from the cache.
// The caller is responsible for writing the bulk.
func (s *Stater) Commit(stage *Stage, bulk kv.Bulk) error {
	if err := stage.Commit(bulk); err != nil {
		return &Error{err}
	}
	for k := range stage.changes {
		s.cache.evict(k)
	}
	return nil
}
