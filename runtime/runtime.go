// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/tinybank/builtin"
	"github.com/vechain/tinybank/builtin/reverts"
	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/kv"
	"github.com/vechain/tinybank/log"
	"github.com/vechain/tinybank/metrics"
	"github.com/vechain/tinybank/state"
	"github.com/vechain/tinybank/tx"
	"github.com/vechain/tinybank/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricTxCount   = metrics.LazyLoadCounterVec("runtime_tx_count", []string{"reverted"})
	metricBestBlock = metrics.LazyLoadGauge("runtime_best_block")

	// ErrKnownTx is returned when a transaction was already executed.
	ErrKnownTx = errors.New("known tx")
)

// BadTxError is returned for transactions that can never be executed.
type BadTxError struct {
	msg string
}

func (e BadTxError) Error() string {
	return "bad tx: " + e.msg
}

// IsBadTx returns whether err is a BadTxError.
func IsBadTx(err error) bool {
	var bad BadTxError
	return errors.As(err, &bad)
}

// Sink receives the receipts of every sealed block.
type Sink interface {
	Write(b *chain.Block, receipts tx.Receipts) error
}

// Options for the runtime.
type Options struct {
	// OnDemand seals a new block right after each transaction.
	OnDemand bool
	Sink     Sink
}

// Runtime is the serialized state machine. Transactions execute one at a time
// against the pending block, which Mine seals.
type Runtime struct {
	mu       sync.RWMutex
	db       kv.Store
	repo     *chain.Repository
	stater   *state.Stater
	pending  *chain.Block
	onDemand bool
	sink     Sink
	now      func() uint64
}

// New creates a runtime on top of the repository. A pending block left by a
// previous run is resumed.
func New(db kv.Store, repo *chain.Repository, opts Options) (*Runtime, error) {
	r := &Runtime{
		db:       db,
		repo:     repo,
		stater:   state.NewStater(db),
		onDemand: opts.OnDemand,
		sink:     opts.Sink,
		now:      func() uint64 { return uint64(time.Now().Unix()) },
	}

	best := repo.BestBlock()
	pending, err := repo.GetBlock(best.Number + 1)
	switch {
	case err == nil:
		r.pending = pending
		logger.Debug("resumed pending block", "number", pending.Number, "txs", len(pending.Txs))
	case repo.IsNotFound(err):
		r.pending = r.newPending(best)
	default:
		return nil, errors.Wrap(err, "load pending block")
	}
	metricBestBlock().Set(int64(best.Number))
	return r, nil
}

func (r *Runtime) newPending(parent *chain.Block) *chain.Block {
	ts := r.now()
	if ts <= parent.Timestamp {
		ts = parent.Timestamp + 1
	}
	return &chain.Block{
		Number:    parent.Number + 1,
		ParentID:  parent.ID(),
		Timestamp: ts,
	}
}

// Repo returns the block repository.
func (r *Runtime) Repo() *chain.Repository {
	return r.repo
}

// Pending returns a copy of the block transactions currently execute at.
func (r *Runtime) Pending() *chain.Block {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending.Copy()
}

// View runs fn against the committed state at the pending block height.
// The state must not be committed by fn.
func (r *Runtime) View(fn func(st *state.State, blockNum uint32) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(r.stater.NewState(), r.pending.Number)
}

// ExecuteTransaction executes all clauses of the transaction atomically in the
// pending block. A revert in any clause discards the state changes and events of
// the whole transaction and yields a reverted receipt. Other errors leave nothing committed.
func (r *Runtime) ExecuteTransaction(trx *tx.Transaction) (*tx.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := trx.Validate(r.repo.ChainTag()); err != nil {
		return nil, BadTxError{err.Error()}
	}
	// origin is valid, checked by Validate
	origin, _ := trx.Origin()
	txID := trx.ID()

	if known, err := r.repo.HasTx(txID); err != nil {
		return nil, err
	} else if known {
		return nil, ErrKnownTx
	}

	var (
		st      = r.stater.NewState()
		env     = xenv.New(st, &xenv.BlockContext{Number: r.pending.Number, Time: r.pending.Timestamp}, &xenv.TransactionContext{ID: txID, Origin: origin})
		receipt = &tx.Receipt{TxID: txID, Origin: origin, BlockNumber: r.pending.Number}
		chk     = st.NewCheckpoint()
	)

	for i, clause := range trx.Clauses() {
		err := builtin.Call(env, clause)
		if err == nil {
			continue
		}
		var revert *reverts.ErrRevert
		if !errors.As(err, &revert) {
			return nil, errors.WithMessagef(err, "clause %d", i)
		}
		st.RevertTo(chk)
		env.TruncateEvents(0)

		receipt.Reverted = true
		receipt.RevertKind = revert.Kind().String()
		receipt.RevertReason = revert.Message()
		receipt.RevertClause = uint32(i)
		logger.Debug("tx reverted", "id", txID, "clause", i, "kind", receipt.RevertKind, "reason", receipt.RevertReason)
		break
	}
	receipt.Events = env.Events()

	pending := r.pending.Copy()
	pending.Txs = append(pending.Txs, txID)

	bulk := r.db.Bulk()
	if err := r.stater.Commit(st.Stage(), bulk); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	if err := r.repo.WriteReceipt(bulk, receipt); err != nil {
		return nil, errors.Wrap(err, "write receipt")
	}
	if err := r.repo.WriteBlock(bulk, pending, false); err != nil {
		return nil, errors.Wrap(err, "write pending block")
	}
	if err := bulk.Write(); err != nil {
		return nil, errors.Wrap(err, "flush")
	}
	r.pending = pending
	metricTxCount().AddWithLabel(1, map[string]string{"reverted": strconv.FormatBool(receipt.Reverted)})

	if r.onDemand {
		if err := r.seal(); err != nil {
			return nil, err
		}
	}
	return receipt, nil
}

// Mine seals the pending block, so that the block height advances by one.
func (r *Runtime) Mine() (*chain.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sealed := r.pending
	if err := r.seal(); err != nil {
		return nil, err
	}
	return sealed.Copy(), nil
}

func (r *Runtime) seal() error {
	b := r.pending

	receipts, err := r.repo.GetReceipts(b)
	if err != nil {
		return err
	}

	bulk := r.db.Bulk()
	if err := r.repo.WriteBlock(bulk, b, true); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "flush")
	}
	r.repo.SetBestBlock(b)
	r.pending = r.newPending(b)
	metricBestBlock().Set(int64(b.Number))

	logger.Debug("packed block", "number", b.Number, "id", b.ID(), "txs", len(b.Txs))

	if r.sink != nil {
		// event logs are derived data, the block stays sealed anyway
		if err := r.sink.Write(b, receipts); err != nil {
			logger.Warn("failed to write events", "number", b.Number, "err", err)
		}
	}
	return nil
}
