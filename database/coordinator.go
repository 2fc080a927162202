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
	"fmt"
)

// Coordinator opens or reuses a transaction around a callback. Nested calls
// against an already-open transaction run the callback directly, so any
// depth of nesting collapses into one physical transaction with a single
// BEGIN/COMMIT-or-ROLLBACK pair at the outermost level.
type Coordinator struct {
	logger Logger
}

// NewCoordinator returns a Coordinator. If logger is nil the global
// database logger is used.
func NewCoordinator(logger Logger) *Coordinator {
	if logger == nil {
		logger = GetLogger()
	}
	return &Coordinator{logger: logger}
}

// RunInTx executes fn within a transaction on conn.
//
// If conn already is a transaction, fn is invoked directly with conn: no
// BEGIN or COMMIT is issued and settings are silently ignored. Otherwise a
// new transaction is opened (applying settings), fn runs against it, and
// the transaction is committed on success or rolled back on error. The
// callback's error is always returned unmodified; a rollback failure is
// logged but never replaces it.
func (c *Coordinator) RunInTx(ctx context.Context, conn *Conn, settings *TxSettings, fn func(ctx context.Context, tx *Conn) error) error {
	if conn == nil {
		return fmt.Errorf("database connection cannot be empty")
	}
	if conn.IsTransaction() {
		return fn(ctx, conn)
	}

	tx, err := conn.Begin(ctx, settings)
	if err != nil {
		return err
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
