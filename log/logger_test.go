// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRoot(h slog.Handler) func() {
	old := Root()
	SetDefault(NewLogger(h))
	return func() { SetDefault(old) }
}

func TestLogfmtValues(t *testing.T) {
	var buf bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)
	logger := NewLogger(LogfmtHandlerWithLevel(&buf, &lvl))

	logger.Info("staked", "amount", uint256.NewInt(42), "supply", big.NewInt(7), "nil", (*uint256.Int)(nil))
	out := buf.String()
	assert.Contains(t, out, "lvl=info")
	assert.Contains(t, out, "msg=staked")
	assert.Contains(t, out, "amount=42")
	assert.Contains(t, out, "supply=7")
	assert.Contains(t, out, "nil=<nil>")

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(JSONHandler(&buf))
	logger.Warn("quorum", "confirmed", 3)

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "warn", m["lvl"])
	assert.Equal(t, "quorum", m["msg"])
	assert.Equal(t, float64(3), m["confirmed"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "bank")

	var buf bytes.Buffer
	restore := captureRoot(LogfmtHandler(&buf))
	defer restore()

	pkgLogger.With("manager", "m1").Info("confirmed")
	assert.Contains(t, buf.String(), "pkg=bank")
	assert.Contains(t, buf.String(), "manager=m1")
	assert.Contains(t, buf.String(), "msg=confirmed")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(LegacyLevelCrit))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
	assert.Equal(t, "trace", LevelString(LevelTrace))
	assert.Equal(t, "unknown", LevelString(slog.Level(3)))
}

func TestDiscardHandler(t *testing.T) {
	logger := NewLogger(DiscardHandler())
	assert.NotPanics(t, func() { logger.Info("nothing", "k", "v") })
	assert.False(t, logger.Enabled(context.Background(), LevelCrit))
}
