// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/vechain/tinybank/thor"
)

// errorSelector is the 4-byte selector of Error(string).
var errorSelector = thor.Keccak256([]byte("Error(string)")).Bytes()[:4]

// Kind classifies a revert.
type Kind uint8

const (
	Unauthorized Kind = iota + 1
	QuorumNotMet
	InsufficientBalance
	InsufficientAllowance
	InsufficientStake
	ArithmeticOverflow
	InvalidArgument
)

var kindNames = map[Kind]string{
	Unauthorized:          "Unauthorized",
	QuorumNotMet:          "QuorumNotMet",
	InsufficientBalance:   "InsufficientBalance",
	InsufficientAllowance: "InsufficientAllowance",
	InsufficientStake:     "InsufficientStake",
	ArithmeticOverflow:    "ArithmeticOverflow",
	InvalidArgument:       "InvalidArgument",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// ErrRevert is a failed precondition of a native method. All state changes made by the call are discarded.
type ErrRevert struct {
	kind    Kind
	message string
}

// New creates a revert of the given kind.
func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the kind of the revert.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Message returns the revert reason.
func (e *ErrRevert) Message() string {
	return e.message
}

// Bytes returns the revert reason ABI-encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, errorSelector...)

	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

// DecodeReason extracts the message of an ABI-encoded Error(string) payload.
func DecodeReason(data []byte) (string, bool) {
	if len(data) < 4+64 || !bytes.Equal(data[:4], errorSelector) {
		return "", false
	}
	size := binary.BigEndian.Uint64(data[4+32+24 : 4+64])
	if uint64(len(data)-4-64) < size {
		return "", false
	}
	return string(data[4+64 : 4+64+size]), true
}

// IsRevertErr reports whether err is, or wraps, a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *ErrRevert
	if errors.As(e, &re) {
		return re != nil
	}
	return false
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	var re *ErrRevert
	if errors.As(err, &re) && re != nil {
		return re.kind == kind
	}
	return false
}
