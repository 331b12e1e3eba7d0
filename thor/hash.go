// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// hasher is a pooled 256-bit hash with its output buffer.
type hasher struct {
	hash.Hash
	out Bytes32
}

func (h *hasher) sum(fn func(w io.Writer)) Bytes32 {
	fn(h.Hash)
	h.Sum(h.out[:0])
	h.Reset()
	return h.out
}

var (
	blake2bPool = sync.Pool{New: func() any {
		h, _ := blake2b.New256(nil)
		return &hasher{Hash: h}
	}}
	keccakPool = sync.Pool{New: func() any {
		return &hasher{Hash: sha3.NewLegacyKeccak256()}
	}}
)

func pooledSum(pool *sync.Pool, fn func(w io.Writer)) Bytes32 {
	h := pool.Get().(*hasher)
	defer pool.Put(h)
	return h.sum(fn)
}

// Blake2b computes the blake2b-256 checksum of the concatenated data.
// Ids and storage positions are blake2b.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	return Blake2bFn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// Blake2bFn computes the blake2b-256 checksum of whatever fn writes.
func Blake2bFn(fn func(w io.Writer)) Bytes32 {
	return pooledSum(&blake2bPool, fn)
}

// Keccak256 computes the legacy keccak-256 checksum, used for ABI selectors.
func Keccak256(data ...[]byte) Bytes32 {
	return pooledSum(&keccakPool, func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}
