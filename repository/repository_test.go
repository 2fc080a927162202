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

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/geekmidas/auditx/database"
)

type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func newSQLiteConn(t *testing.T, name string) *database.Conn {
	t.Helper()
	m := database.NewManager("items-db", &database.ConnectionConfig{
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
	_, err = conn.NewCreateTable().Model((*Item)(nil)).IfNotExists().Exec(context.Background())
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return conn
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	conn := newSQLiteConn(t, "repo_crud")
	repo := NewRepository[Item](conn)

	if err := repo.Create(ctx, &Item{Name: "widget"}, &Item{Name: "gadget"}); err != nil {
		t.Fatalf("create error: %v", err)
	}

	all, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	item, err := repo.GetOne(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("get one error: %v", err)
	}

	item.Name = "renamed"
	if err := repo.Update(ctx, item); err != nil {
		t.Fatalf("update error: %v", err)
	}
	updated, err := repo.GetOne(ctx, item.ID)
	if err != nil {
		t.Fatalf("get one error: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("update lost: %+v", updated)
	}

	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	remaining, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 item after delete, got %d", len(remaining))
	}
}

// The same repository code runs inside an open transaction; building it on
// the transaction Conn makes its writes follow the commit or rollback.
func TestRepositoryInsideTransaction(t *testing.T) {
	ctx := context.Background()
	conn := newSQLiteConn(t, "repo_tx")
	co := database.NewCoordinator(nil)

	errBoom := errors.New("boom")
	err := co.RunInTx(ctx, conn, nil, func(ctx context.Context, tx *database.Conn) error {
		repo := NewRepository[Item](tx)
		if err := repo.Create(ctx, &Item{Name: "discarded"}); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("callback error was modified: %v", err)
	}
	all, err := NewRepository[Item](conn).GetAll(ctx)
	if err != nil {
		t.Fatalf("get all error: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("rollback kept %d items", len(all))
	}

	err = co.RunInTx(ctx, conn, nil, func(ctx context.Context, tx *database.Conn) error {
		return NewRepository[Item](tx).Create(ctx, &Item{Name: "kept"})
	})
	if err != nil {
		t.Fatalf("RunInTx error: %v", err)
	}
	all, err = NewRepository[Item](conn).GetAll(ctx)
	if err != nil {
		t.Fatalf("get all error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 committed item, got %d", len(all))
	}
}
