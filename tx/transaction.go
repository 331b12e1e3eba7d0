// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tinybank/thor"
)

var (
	errUnsigned      = errors.New("unsigned transaction")
	errNoClause      = errors.New("transaction has no clause")
	errInvalidSigLen = errors.New("invalid signature length")
)

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		signingHash atomic.Value
		origin      atomic.Value
		id          atomic.Value
	}
}

// body describes details of a tx.
type body struct {
	ChainTag  byte
	Nonce     uint64
	Clauses   []*Clause
	Signature []byte
}

// ChainTag returns chain tag.
func (t *Transaction) ChainTag() byte {
	return t.body.ChainTag
}

// Nonce returns nonce value.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// Clauses returns clauses in tx.
func (t *Transaction) Clauses() []*Clause {
	return append([]*Clause(nil), t.body.Clauses...)
}

// Signature returns signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() (hash thor.Bytes32) {
	if cached := t.cache.signingHash.Load(); cached != nil {
		return cached.(thor.Bytes32)
	}
	defer func() { t.cache.signingHash.Store(hash) }()

	return thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			t.body.ChainTag,
			t.body.Nonce,
			t.body.Clauses,
		})
	})
}

// Origin extracts address of tx originator from signature.
func (t *Transaction) Origin() (thor.Address, error) {
	if cached := t.cache.origin.Load(); cached != nil {
		return cached.(thor.Address), nil
	}
	if len(t.body.Signature) == 0 {
		return thor.Address{}, errUnsigned
	}
	if len(t.body.Signature) != 65 {
		return thor.Address{}, errInvalidSigLen
	}
	pub, err := crypto.SigToPub(t.SigningHash().Bytes(), t.body.Signature)
	if err != nil {
		return thor.Address{}, err
	}
	origin := thor.Address(crypto.PubkeyToAddress(*pub))
	t.cache.origin.Store(origin)
	return origin, nil
}

// ID returns id of tx.
// ID = hash(signingHash, origin).
// It returns zero Bytes32 if origin not available.
func (t *Transaction) ID() (id thor.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(thor.Bytes32)
	}
	origin, err := t.Origin()
	if err != nil {
		return thor.Bytes32{}
	}
	id = thor.Blake2b(t.SigningHash().Bytes(), origin.Bytes())
	t.cache.id.Store(id)
	return
}

// Validate checks the tx is well-formed for the given chain tag.
func (t *Transaction) Validate(chainTag byte) error {
	if t.body.ChainTag != chainTag {
		return fmt.Errorf("chain tag mismatch: want %#x, got %#x", chainTag, t.body.ChainTag)
	}
	if len(t.body.Clauses) == 0 {
		return errNoClause
	}
	_, err := t.Origin()
	return err
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{
		body: t.body,
	}
	// copy sig
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{
		body: body,
	}
	return nil
}

func (t *Transaction) String() string {
	origin, _ := t.Origin()
	return fmt.Sprintf(`
	Tx(%v)
	Origin:         %v
	ChainTag:       %v
	Nonce:          %v
	Clauses:        %v
	Signature:      0x%x`, t.ID(), origin, t.body.ChainTag, t.body.Nonce, t.body.Clauses, t.body.Signature)
}
