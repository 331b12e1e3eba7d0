// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Constants of the ledger.
const (
	BlockInterval uint64 = 10 // default time interval between two consecutive blocks, in seconds.

	TokenDecimals = 18 // decimals of the dev genesis token.
)
