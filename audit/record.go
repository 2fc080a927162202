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
	"time"

	"github.com/geekmidas/auditx/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is an immutable fact describing a business-significant action.
// Records are buffered in memory by an Auditor during handler execution
// and written to storage in one batch at flush time.
type Record struct {
	bun.BaseModel `bun:"table:audit_records,alias:ar"`

	ID        string           `bun:"id,pk" json:"id"`
	Type      string           `bun:"type,notnull" json:"type"`
	Payload   types.JsonObject `bun:"payload" json:"payload"`
	EntityID  string           `bun:"entity_id,nullzero" json:"entity_id,omitempty"`
	TableName string           `bun:"table_name,nullzero" json:"table_name,omitempty"`
	Timestamp time.Time        `bun:"timestamp,notnull" json:"timestamp"`
	ActorID   string           `bun:"actor_id,nullzero" json:"actor_id,omitempty"`
	ActorType string           `bun:"actor_type,nullzero" json:"actor_type,omitempty"`
	Metadata  types.JsonObject `bun:"metadata" json:"metadata,omitempty"`
}

// Actor identifies who performed the audited actions of one invocation.
type Actor struct {
	ID   string
	Type string
}

// RecordOption sets optional fields on a record at Audit time.
type RecordOption func(*Record)

// WithEntityID tags the record with the affected entity's identifier.
func WithEntityID(id string) RecordOption {
	return func(r *Record) { r.EntityID = id }
}

// WithTableName tags the record with the affected table.
func WithTableName(table string) RecordOption {
	return func(r *Record) { r.TableName = table }
}

func newRecord(recordType string, payload types.JsonObject, actor Actor, metadata types.JsonObject, opts ...RecordOption) *Record {
	r := &Record{
		ID:        uuid.NewString(),
		Type:      recordType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		ActorID:   actor.ID,
		ActorType: actor.Type,
		Metadata:  metadata,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
