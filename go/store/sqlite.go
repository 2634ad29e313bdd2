// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/ethereum/go-ethereum/log"
	_ "modernc.org/sqlite"
)

// SQLite is a durable store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	caller    BLOB NOT NULL,
	namespace BLOB NOT NULL,
	key       BLOB NOT NULL,
	value     BLOB NOT NULL,
	PRIMARY KEY (caller, namespace, key)
)`

// OpenSQLite opens the database at the given path, creating the file and
// its schema if necessary. The path ":memory:" opens a volatile database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serializes writers and keeps in-memory
	// databases alive across statements.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	log.Debug("Opened key/value store", "path", path)
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Get(caller expr.Address, namespace expr.Namespace, key expr.Word) (expr.Word, error) {
	var value []byte
	err := s.db.QueryRow(
		"SELECT value FROM kv WHERE caller = ? AND namespace = ? AND key = ?",
		caller[:], namespace[:], key[:],
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return expr.Word{}, nil
	}
	if err != nil {
		return expr.Word{}, fmt.Errorf("querying key %v: %w", key, err)
	}
	if len(value) != len(expr.Word{}) {
		return expr.Word{}, fmt.Errorf("corrupted value of key %v: %d bytes", key, len(value))
	}
	return expr.Word(value), nil
}

// Commit writes all entries in a single transaction. Either all entries
// are written or none is.
func (s *SQLite) Commit(caller expr.Address, namespace expr.Namespace, kvs []expr.KV) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO kv (caller, namespace, key, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, kv := range kvs {
		if _, err := stmt.Exec(caller[:], namespace[:], kv.Key[:], kv.Value[:]); err != nil {
			return fmt.Errorf("writing key %v: %w", kv.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	log.Debug("Committed key/value entries", "caller", caller, "namespace", namespace, "entries", len(kvs))
	return nil
}

// Len returns the number of stored entries.
func (s *SQLite) Len() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
