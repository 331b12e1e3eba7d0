// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage of builtin contracts.
//
// A State journals every write in a stacked map, so a sequence of writes can
// be reverted to any checkpoint. Nothing reaches the underlying kv store until
// the journal is staged and committed, which makes every operation executed
// on a State all-or-nothing.
package state
