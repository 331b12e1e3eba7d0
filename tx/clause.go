// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tinybank/thor"
)

type clauseBody struct {
	To     thor.Address
	Method string
	Args   []byte
}

// Clause is the basic execution unit of a transaction: a native method call on a contract.
type Clause struct {
	body clauseBody
}

// NewClause create a new clause instance.
func NewClause(to thor.Address) *Clause {
	return &Clause{clauseBody{To: to}}
}

// WithMethod create a new clause copy calling the named method with the rlp encoded args.
func (c *Clause) WithMethod(method string, args ...any) (*Clause, error) {
	data, err := rlp.EncodeToBytes(args)
	if err != nil {
		return nil, err
	}
	newClause := *c
	newClause.body.Method = method
	newClause.body.Args = data
	return &newClause, nil
}

// MustWithMethod is like WithMethod but panics on encoding failure.
func (c *Clause) MustWithMethod(method string, args ...any) *Clause {
	newClause, err := c.WithMethod(method, args...)
	if err != nil {
		panic(err)
	}
	return newClause
}

// To returns 'To' address.
func (c *Clause) To() thor.Address {
	return c.body.To
}

// Method returns the method name.
func (c *Clause) Method() string {
	return c.body.Method
}

// Args returns the rlp encoded argument list.
func (c *Clause) Args() []byte {
	return append([]byte(nil), c.body.Args...)
}

// DecodeArgs decodes the argument list into a struct whose fields follow the argument order.
func (c *Clause) DecodeArgs(val any) error {
	return rlp.DecodeBytes(c.body.Args, val)
}

// EncodeRLP implements rlp.Encoder
func (c *Clause) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &c.body)
}

// DecodeRLP implements rlp.Decoder
func (c *Clause) DecodeRLP(s *rlp.Stream) error {
	var body clauseBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*c = Clause{body}
	return nil
}

func (c *Clause) String() string {
	return fmt.Sprintf("Clause(%v.%v args: 0x%x)", c.body.To, c.body.Method, c.body.Args)
}
