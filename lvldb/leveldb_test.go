// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDB(t *testing.T) {
	var lvldbs []*LevelDB
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)
	lvldb, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{CacheSize: 16, OpenFilesCacheCapacity: 16, SyncBulk: true})
	require.NoError(t, err)
	defer lvldb.Close()
	lvldbs = append(lvldbs, lvldb)

	memlvldb, err := NewMem()
	require.NoError(t, err)
	defer memlvldb.Close()
	lvldbs = append(lvldbs, memlvldb)

	for _, leveldb := range lvldbs {
		err = leveldb.Put(key, value)
		assert.Nil(t, err)

		ret1, err := leveldb.Get(key)
		assert.Nil(t, err)
		assert.Equal(t, value, ret1)

		ret2, err := leveldb.Has(key)
		assert.Nil(t, err)
		assert.True(t, ret2)

		ret3, err := leveldb.Has(inValidKey)
		assert.Nil(t, err)
		assert.False(t, ret3)

		err = leveldb.Delete(key)
		assert.Nil(t, err)

		_, err = leveldb.Get(key)
		assert.True(t, leveldb.IsNotFound(err))
	}
}

func TestLevelDBBulk(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	assert.NoError(t, bulk.Put([]byte("a"), []byte("1")))
	assert.NoError(t, bulk.Put([]byte("b"), []byte("2")))
	assert.NoError(t, bulk.Delete([]byte("a")))
	assert.Equal(t, 3, bulk.Len())

	has, err := db.Has([]byte("b"))
	assert.NoError(t, err)
	assert.False(t, has, "bulk must not be visible before write")

	require.NoError(t, bulk.Write())

	v, err := db.Get([]byte("b"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	has, err = db.Has([]byte("a"))
	assert.NoError(t, err)
	assert.False(t, has)

	// a written bulk is empty and can be reused
	assert.Equal(t, 0, bulk.Len())
	require.NoError(t, bulk.Put([]byte("c"), []byte("3")))
	require.NoError(t, bulk.Write())
	v, err = db.Get([]byte("c"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("3"), v)
}
