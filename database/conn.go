/*
 * Copyright 2025 geekmidas.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// TxSettings carries optional settings applied when a new physical
// transaction is opened. A nil value means database defaults. Settings are
// silently ignored when an already-open transaction is reused.
type TxSettings struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

func (s *TxSettings) txOptions() *sql.TxOptions {
	if s == nil {
		return nil
	}
	return &sql.TxOptions{Isolation: s.Isolation, ReadOnly: s.ReadOnly}
}

// Conn is a database handle that is either a pooled connection or an open
// transaction. Both expose the full Bun query surface through the embedded
// bun.IDB, so repositories and handlers do not care which one they hold.
//
// A Conn is owned by the single invocation that acquired it and must never
// be shared across concurrent invocations. Transaction reuse only happens
// within the same call stack.
type Conn struct {
	bun.IDB

	// tx is non-nil when this handle is an open transaction. It points at
	// the same value as IDB; keeping it separately marks the handle kind.
	tx bun.IDB
}

// WrapDB returns a pooled Conn backed by the given database. db is usually
// a *bun.DB but may be any bun.IDB implementation.
func WrapDB(db bun.IDB) *Conn {
	return &Conn{IDB: db}
}

// WrapTx returns a Conn for an already-open transaction. Begin calls on the
// result reuse that transaction instead of opening a new one.
func WrapTx(tx bun.IDB) *Conn {
	return &Conn{IDB: tx, tx: tx}
}

// IsTransaction reports whether this handle is an open transaction.
func (c *Conn) IsTransaction() bool { return c.tx != nil }

// Begin opens a new transaction on a pooled connection and returns a Conn
// bound to it. On a handle that already is a transaction it returns the
// handle itself, so nested begin requests collapse into the single outer
// transaction; settings are ignored in that case.
func (c *Conn) Begin(ctx context.Context, settings *TxSettings) (*Conn, error) {
	if c.tx != nil {
		return c, nil
	}
	tx, err := c.IDB.BeginTx(ctx, settings.txOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return WrapTx(tx), nil
}

// Commit commits an open transaction. Calling it on a pooled connection is
// an error.
func (c *Conn) Commit() error {
	committer, ok := c.tx.(interface{ Commit() error })
	if !ok {
		return fmt.Errorf("commit called outside a transaction")
	}
	return committer.Commit()
}

// Rollback rolls back an open transaction. Calling it on a pooled
// connection is an error.
func (c *Conn) Rollback() error {
	aborter, ok := c.tx.(interface{ Rollback() error })
	if !ok {
		return fmt.Errorf("rollback called outside a transaction")
	}
	return aborter.Rollback()
}
