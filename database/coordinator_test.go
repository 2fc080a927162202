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
	"errors"
	"fmt"
	"testing"
	"time"
)

func newSQLiteConn(t *testing.T, name string) *Conn {
	t.Helper()
	m := NewManager("db", &ConnectionConfig{
		Type:            "sqlite",
		DBName:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxIdleConns:    4,
		MaxOpenConns:    4,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Hour,
		ConnectTimeout:  time.Second * 10,
	})
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect sqlite: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	conn, err := m.Conn()
	if err != nil {
		t.Fatalf("failed to get connection: %v", err)
	}
	return conn
}

func createItemsTable(t *testing.T, conn *Conn) {
	t.Helper()
	_, err := conn.ExecContext(context.Background(),
		"CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)")
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
}

func countItems(t *testing.T, conn *Conn) int {
	t.Helper()
	var n int
	err := conn.NewSelect().Table("items").ColumnExpr("count(*)").Scan(context.Background(), &n)
	if err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

func TestRunInTxCommits(t *testing.T) {
	conn := newSQLiteConn(t, "co_commit")
	createItemsTable(t, conn)
	co := NewCoordinator(nil)

	err := co.RunInTx(context.Background(), conn, nil, func(ctx context.Context, tx *Conn) error {
		if !tx.IsTransaction() {
			t.Fatal("callback did not receive a transaction")
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "widget")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}
	if n := countItems(t, conn); n != 1 {
		t.Fatalf("expected 1 committed row, got %d", n)
	}
}

func TestRunInTxRollsBackOnCallbackError(t *testing.T) {
	conn := newSQLiteConn(t, "co_rollback")
	createItemsTable(t, conn)
	co := NewCoordinator(nil)

	errBoom := errors.New("boom")
	err := co.RunInTx(context.Background(), conn, nil, func(ctx context.Context, tx *Conn) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "widget"); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("callback error was modified: %v", err)
	}
	if n := countItems(t, conn); n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestRunInTxReusesOpenTransaction(t *testing.T) {
	conn := newSQLiteConn(t, "co_reuse")
	createItemsTable(t, conn)
	co := NewCoordinator(nil)

	err := co.RunInTx(context.Background(), conn, nil, func(ctx context.Context, outer *Conn) error {
		if _, err := outer.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "outer"); err != nil {
			return err
		}
		return co.RunInTx(ctx, outer, nil, func(ctx context.Context, inner *Conn) error {
			if inner != outer {
				t.Fatal("inner callback observed a different transaction")
			}
			_, err := inner.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "inner")
			return err
		})
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}
	if n := countItems(t, conn); n != 2 {
		t.Fatalf("expected 2 committed rows, got %d", n)
	}
}

func TestRunInTxInnerErrorRollsBackWholeTransaction(t *testing.T) {
	conn := newSQLiteConn(t, "co_inner_err")
	createItemsTable(t, conn)
	co := NewCoordinator(nil)

	errBoom := errors.New("boom")
	err := co.RunInTx(context.Background(), conn, nil, func(ctx context.Context, outer *Conn) error {
		if _, err := outer.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "outer"); err != nil {
			return err
		}
		return co.RunInTx(ctx, outer, nil, func(ctx context.Context, inner *Conn) error {
			return errBoom
		})
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("inner error was modified: %v", err)
	}
	if n := countItems(t, conn); n != 0 {
		t.Fatalf("expected full rollback, found %d rows", n)
	}
}

// A rollback failure must never replace the callback's error. The callback
// commits the transaction itself, so the coordinator's rollback attempt
// fails, and the original error still has to surface.
func TestRunInTxRollbackFailureKeepsOriginalError(t *testing.T) {
	conn := newSQLiteConn(t, "co_rbfail")
	createItemsTable(t, conn)
	co := NewCoordinator(nil)

	errBoom := errors.New("boom")
	err := co.RunInTx(context.Background(), conn, nil, func(ctx context.Context, tx *Conn) error {
		if err := tx.Commit(); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("rollback failure replaced the callback error: %v", err)
	}
}

func TestRunInTxNilConnection(t *testing.T) {
	co := NewCoordinator(nil)
	err := co.RunInTx(context.Background(), nil, nil, func(ctx context.Context, tx *Conn) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected error for nil connection")
	}
}
