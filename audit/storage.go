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

package audit

import (
	"context"
	"fmt"

	"github.com/geekmidas/auditx/database"
)

// Storage persists audit records. A Write failure fails the flush that
// issued it.
type Storage interface {
	Write(ctx context.Context, records []*Record) error
}

// DatabaseStorage is the capability variant of Storage for implementations
// backed by a database connection. The orchestrator uses Database to decide
// whether audit writes can share a transaction with business writes, and
// WithDatabase to retarget writes at that shared transaction.
type DatabaseStorage interface {
	Storage

	// Database returns the connection this storage writes through.
	Database() *database.Conn

	// WithDatabase returns a view of this storage that writes through
	// conn instead of the storage's own connection. Used to keep a flush
	// inside an already-open transaction.
	WithDatabase(conn *database.Conn) Storage
}

// BunStorage writes audit records into the audit_records table through a
// database Conn.
type BunStorage struct {
	conn *database.Conn
}

var _ DatabaseStorage = (*BunStorage)(nil)

// NewBunStorage returns a storage writing through conn.
func NewBunStorage(conn *database.Conn) *BunStorage {
	return &BunStorage{conn: conn}
}

// Write inserts the records in one batch.
func (s *BunStorage) Write(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}
	if s.conn == nil {
		return fmt.Errorf("audit storage has no database connection")
	}
	if _, err := s.conn.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("failed to write audit records: %w", err)
	}
	return nil
}

// Database returns the storage's connection.
func (s *BunStorage) Database() *database.Conn { return s.conn }

// WithDatabase returns a storage view writing through conn.
func (s *BunStorage) WithDatabase(conn *database.Conn) Storage {
	return &BunStorage{conn: conn}
}

// CreateTable creates the audit_records table if it does not exist yet.
// Embedding applications usually manage schema themselves; this is a
// bootstrap convenience.
func (s *BunStorage) CreateTable(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("audit storage has no database connection")
	}
	_, err := s.conn.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}
