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

	"github.com/geekmidas/auditx/types"
)

// Auditor is the append-only ledger for one invocation. It buffers records
// in memory during handler execution and writes them to storage in a
// single flush. An Auditor lives for exactly one invocation: it is created
// at invocation start and discarded at the end regardless of flush outcome.
//
// Auditor is not safe for concurrent use; an invocation is a single
// logical thread of control.
type Auditor struct {
	actor    Actor
	storage  Storage
	metadata types.JsonObject
	pending  []*Record
}

// NewAuditor returns an Auditor writing through storage. Actor identity and
// metadata are stamped onto every record.
func NewAuditor(storage Storage, actor Actor, metadata types.JsonObject) *Auditor {
	return &Auditor{
		actor:    actor,
		storage:  storage,
		metadata: metadata,
	}
}

// Audit appends a record to the pending list. It is a pure in-memory
// operation: it never fails and does not validate the payload shape.
func (a *Auditor) Audit(recordType string, payload types.JsonObject, opts ...RecordOption) {
	a.pending = append(a.pending, newRecord(recordType, payload, a.actor, a.metadata, opts...))
}

// Records returns a snapshot of the pending records. Mutating the returned
// slice does not affect the ledger.
func (a *Auditor) Records() []*Record {
	records := make([]*Record, len(a.pending))
	copy(records, a.pending)
	return records
}

// Flush writes all pending records to storage and clears the pending list.
// On write failure the error propagates and the pending list is kept, so
// the caller can retry or inspect the unwritten records; audit data is
// never silently dropped.
func (a *Auditor) Flush(ctx context.Context) error {
	if len(a.pending) == 0 {
		return nil
	}
	if a.storage == nil {
		return fmt.Errorf("audit storage not configured")
	}
	if err := a.storage.Write(ctx, a.pending); err != nil {
		return err
	}
	a.pending = nil
	return nil
}
