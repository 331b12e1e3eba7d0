// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/tinybank/chain"
	"github.com/vechain/tinybank/thor"
	"github.com/vechain/tinybank/tx"
)

const insertEventQuery = `INSERT OR REPLACE INTO event(blockNumber, eventIndex, blockID, blockTime, txID, txOrigin, address, name, subject, object, amount)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectEventQuery = `SELECT blockNumber, eventIndex, blockID, blockTime, txID, txOrigin, address, name, subject, object, amount FROM event`

// LogDB stores the events of sealed blocks.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection, so that an in-memory db is shared by all queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the sqlite library.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Write stores the events of all receipts of the block. Reverted receipts carry no events.
func (db *LogDB) Write(b *chain.Block, receipts tx.Receipts) error {
	var events []*Event
	for _, receipt := range receipts {
		if receipt.Reverted {
			continue
		}
		for _, ev := range receipt.Events {
			events = append(events, newEvent(b, uint32(len(events)), receipt.TxID, receipt.Origin, ev))
		}
	}
	if len(events) == 0 {
		return nil
	}
	return db.execInTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertEventQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, ev := range events {
			amount := ev.Amount.Bytes32()
			if _, err := stmt.Exec(
				ev.BlockNumber,
				ev.Index,
				ev.BlockID.Bytes(),
				ev.BlockTime,
				ev.TxID.Bytes(),
				ev.TxOrigin.Bytes(),
				ev.Address.Bytes(),
				ev.Name,
				ev.Subject.Bytes(),
				ev.Object.Bytes(),
				amount[:],
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// NewestBlockNumber returns the number of the latest block holding events.
func (db *LogDB) NewestBlockNumber(ctx context.Context) (uint32, bool, error) {
	var num sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(blockNumber) FROM event").Scan(&num); err != nil {
		return 0, false, err
	}
	if !num.Valid {
		return 0, false, nil
	}
	return uint32(num.Int64), true, nil
}

// FilterEvents returns events matching the filter, nil filter for all.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, selectEventQuery+" ORDER BY blockNumber ASC, eventIndex ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := selectEventQuery + " WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND blockNumber >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND blockNumber <= ?"
		}
	}
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ?"
	}

	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ?"
		}
		if criteria.Subject != nil {
			args = append(args, criteria.Subject.Bytes())
			stmt += " AND subject = ?"
		}
		if criteria.Object != nil {
			args = append(args, criteria.Object.Bytes())
			stmt += " AND object = ?"
		}
		if i == length-1 {
			stmt += " ))"
		} else {
			stmt += " )"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC, eventIndex DESC"
	} else {
		stmt += " ORDER BY blockNumber ASC, eventIndex ASC"
	}

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > math.MaxInt64 {
			limit = math.MaxInt64
		}
		stmt += " LIMIT ?, ?"
		args = append(args, int64(min(filter.Options.Offset, math.MaxInt64)), int64(limit))
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockNumber uint32
			index       uint32
			blockID     []byte
			blockTime   uint64
			txID        []byte
			txOrigin    []byte
			address     []byte
			name        string
			subject     []byte
			object      []byte
			amount      []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&index,
			&blockID,
			&blockTime,
			&txID,
			&txOrigin,
			&address,
			&name,
			&subject,
			&object,
			&amount,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			BlockID:     thor.BytesToBytes32(blockID),
			BlockNumber: blockNumber,
			BlockTime:   blockTime,
			Index:       index,
			TxID:        thor.BytesToBytes32(txID),
			TxOrigin:    thor.BytesToAddress(txOrigin),
			Address:     thor.BytesToAddress(address),
			Name:        name,
			Subject:     thor.BytesToAddress(subject),
			Object:      thor.BytesToAddress(object),
			Amount:      new(uint256.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
