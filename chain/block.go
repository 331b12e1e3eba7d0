// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tinybank/thor"
)

// Block is a sealed height of the ledger and the transactions executed at it.
type Block struct {
	Number    uint32
	ParentID  thor.Bytes32
	Timestamp uint64
	Txs       []thor.Bytes32
}

// ID computes the id of the block. The first 4 bytes are the big endian block number.
func (b *Block) ID() (id thor.Bytes32) {
	id = thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, b)
	})
	binary.BigEndian.PutUint32(id[:], b.Number)
	return
}

// Copy returns a deep copy.
func (b *Block) Copy() *Block {
	cpy := *b
	cpy.Txs = append([]thor.Bytes32(nil), b.Txs...)
	return &cpy
}

func (b *Block) String() string {
	return fmt.Sprintf("Block(%v #%v txs: %v)", b.ID().AbbrevString(), b.Number, len(b.Txs))
}

// Number extracts block number from block id.
func Number(id thor.Bytes32) uint32 {
	return binary.BigEndian.Uint32(id[:])
}
