// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/tinybank/runtime"
)

// packLoop seals the pending block every interval, until ctx is done.
func packLoop(ctx context.Context, rt *runtime.Runtime, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b, err := rt.Mine()
			if err != nil {
				return errors.Wrap(err, "seal block")
			}
			if len(b.Txs) == 0 {
				logger.Debug("empty block packed", "number", b.Number, "id", b.ID().AbbrevString())
				continue
			}
			logger.Info("📦 new block packed", "number", b.Number, "id", b.ID().AbbrevString(), "txs", len(b.Txs))
		}
	}
}
