// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/kv"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

const (
	propBucket    kv.Bucket = "p" // for property-named values such as best block
	blockBucket   kv.Bucket = "b" // for blocks by number
	receiptBucket kv.Bucket = "r" // for receipts by tx id

	receiptCacheSize = 2048
)

var bestBlockKey = []byte("best-block")

// Repository stores blocks and receipts.
//
// It's thread-safe.
type Repository struct {
	db      kv.Store
	props   kv.Getter
	blocks  kv.Getter
	recpts  kv.Getter
	genesis *Block
	tag     byte

	best     atomic.Value
	receipts *lru.Cache
}

// NewRepository create an instance of repository.
// The genesis block is saved as best block if the db is empty.
func NewRepository(db kv.Store, genesis *Block) (*Repository, error) {
	if genesis.Number != 0 {
		return nil, errors.New("genesis number != 0")
	}
	if len(genesis.Txs) != 0 {
		return nil, errors.New("genesis block should not have transactions")
	}
	receipts, err := lru.New(receiptCacheSize)
	if err != nil {
		return nil, err
	}

	genesisID := genesis.ID()
	repo := &Repository{
		db:       db,
		props:    propBucket.NewGetter(db),
		blocks:   blockBucket.NewGetter(db),
		recpts:   receiptBucket.NewGetter(db),
		genesis:  genesis.Copy(),
		tag:      genesisID[31],
		receipts: receipts,
	}

	if _, err := repo.props.Get(bestBlockKey); err != nil {
		if !repo.props.IsNotFound(err) {
			return nil, err
		}
		bulk := db.Bulk()
		if err := repo.WriteBlock(bulk, genesis, true); err != nil {
			return nil, err
		}
		if err := bulk.Write(); err != nil {
			return nil, err
		}
		repo.SetBestBlock(genesis)
		return repo, nil
	}

	existing, err := repo.GetBlock(0)
	if err != nil {
		return nil, errors.Wrap(err, "get existing genesis")
	}
	if existing.ID() != genesisID {
		return nil, errors.New("genesis mismatch")
	}
	best, err := repo.loadBest()
	if err != nil {
		return nil, errors.Wrap(err, "get best block")
	}
	repo.SetBestBlock(best)
	return repo, nil
}

// HasGenesis returns whether a genesis block was written into the db.
func HasGenesis(db kv.Getter) (bool, error) {
	return propBucket.NewGetter(db).Has(bestBlockKey)
}

// ChainTag returns chain tag, which is the last byte of genesis id.
func (r *Repository) ChainTag() byte {
	return r.tag
}

// GenesisBlock returns genesis block.
func (r *Repository) GenesisBlock() *Block {
	return r.genesis.Copy()
}

// BestBlock returns the latest sealed block.
func (r *Repository) BestBlock() *Block {
	return r.best.Load().(*Block).Copy()
}

// SetBestBlock updates the in-memory best block, after its write was flushed.
func (r *Repository) SetBestBlock(b *Block) {
	r.best.Store(b.Copy())
}

func (r *Repository) loadBest() (*Block, error) {
	data, err := r.props.Get(bestBlockKey)
	if err != nil {
		return nil, err
	}
	return r.GetBlock(binary.BigEndian.Uint32(data))
}

// IsNotFound returns if an error means not found.
func (r *Repository) IsNotFound(err error) bool {
	return r.db.IsNotFound(err)
}

// GetBlock returns the block at the given number, pending blocks included.
func (r *Repository) GetBlock(num uint32) (*Block, error) {
	data, err := r.blocks.Get(numberKey(num))
	if err != nil {
		return nil, err
	}
	var b Block
	if err := rlp.DecodeBytes(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetReceipt returns the receipt of the transaction.
func (r *Repository) GetReceipt(txID thor.Bytes32) (*tx.Receipt, error) {
	if cached, ok := r.receipts.Get(txID); ok {
		return cached.(*tx.Receipt), nil
	}
	data, err := r.recpts.Get(txID.Bytes())
	if err != nil {
		return nil, err
	}
	var receipt tx.Receipt
	if err := rlp.DecodeBytes(data, &receipt); err != nil {
		return nil, err
	}
	r.receipts.Add(txID, &receipt)
	return &receipt, nil
}

// GetReceipts returns the receipts of all transactions of the block, in order.
func (r *Repository) GetReceipts(b *Block) (tx.Receipts, error) {
	receipts := make(tx.Receipts, 0, len(b.Txs))
	for _, id := range b.Txs {
		receipt, err := r.GetReceipt(id)
		if err != nil {
			return nil, errors.Wrapf(err, "get receipt %v", id)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// HasTx returns whether the transaction was already executed.
func (r *Repository) HasTx(txID thor.Bytes32) (bool, error) {
	if _, ok := r.receipts.Get(txID); ok {
		return true, nil
	}
	return r.recpts.Has(txID.Bytes())
}

// WriteBlock puts the block into the putter, and marks it as best if asBest.
func (r *Repository) WriteBlock(putter kv.Putter, b *Block, asBest bool) error {
	data, err := rlp.EncodeToBytes(b)
	if err != nil {
		return err
	}
	if err := blockBucket.NewPutter(putter).Put(numberKey(b.Number), data); err != nil {
		return err
	}
	if asBest {
		return propBucket.NewPutter(putter).Put(bestBlockKey, numberKey(b.Number))
	}
	return nil
}

// WriteReceipt puts the receipt into the putter.
func (r *Repository) WriteReceipt(putter kv.Putter, receipt *tx.Receipt) error {
	data, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		return err
	}
	return receiptBucket.NewPutter(putter).Put(receipt.TxID.Bytes(), data)
}

func numberKey(num uint32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], num)
	return key[:]
}
