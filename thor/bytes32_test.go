// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes32JSON(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var decoded Bytes32
	require.NoError(t, json.Unmarshal([]byte(originalHex), &decoded))
	assert.Equal(t, BytesToBytes32([]byte("master")), decoded)

	// values and pointers marshal alike
	data, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, originalHex, string(data))

	data, err = json.Marshal(&decoded)
	require.NoError(t, err)
	assert.Equal(t, originalHex, string(data))

	data, err = json.Marshal(struct{ ID Bytes32 }{decoded})
	require.NoError(t, err)
	assert.Equal(t, `{"ID":`+originalHex+`}`, string(data))

	var nilID *Bytes32
	data, err = json.Marshal(nilID)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &decoded))
}

func TestUint64ToBytes32(t *testing.T) {
	b := Uint64ToBytes32(0x0102)
	assert.Equal(t, byte(0x01), b[30])
	assert.Equal(t, byte(0x02), b[31])
	assert.True(t, Uint64ToBytes32(0).IsZero())
	assert.Equal(t, BytesToBytes32([]byte{0x01, 0x02}), b)
}

func TestParseBytes32(t *testing.T) {
	_, err := ParseBytes32("0x12")
	assert.EqualError(t, err, "invalid length")
	assert.Panics(t, func() { MustParseBytes32("0x12") })

	_, err = ParseBytes32("1x" + strings.Repeat("00", 32))
	assert.EqualError(t, err, "invalid prefix")

	b, err := ParseBytes32(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Equal(t, "0xabababab…abababab", b.AbbrevString())
}
