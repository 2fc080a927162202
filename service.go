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

package auditx

import (
	"context"
	"fmt"

	"github.com/geekmidas/auditx/audit"
	"github.com/geekmidas/auditx/database"
	"github.com/geekmidas/auditx/types"
)

// HandlerScope is what a business handler receives for one invocation: the
// database handle to run its writes on and, when audit storage is
// configured, the invocation's auditor.
type HandlerScope struct {
	DB      *database.Conn
	Auditor *audit.Auditor
}

// Handler is the business callback executed for one invocation.
type Handler func(ctx context.Context, scope *HandlerScope) error

// ExecutionOptions carries the already-resolved collaborators for one
// invocation. Callers resolve services themselves and pass instances plus
// their declared names; the orchestrator performs no service lookup.
//
// DatabaseService and AuditService are the declared name strings of the two
// services. Name equality is the explicit, caller-visible convention by
// which business and audit writes opt into sharing one transaction.
type ExecutionOptions struct {
	DatabaseService string
	Database        *database.Conn

	AuditService string
	AuditStorage audit.Storage

	// Actor and Metadata are stamped onto every audit record of the
	// invocation.
	Actor    audit.Actor
	Metadata types.JsonObject

	// Session variables applied inside the shared transaction, if any.
	Session *database.SessionContext

	// TxSettings applies when the orchestrator opens a new transaction.
	TxSettings *database.TxSettings
}

// Orchestrator decides per invocation whether business writes and audit
// writes share one physical transaction, and sequences handler execution,
// audit flush, and commit/rollback.
//
// Every database step it drives is blocking; the orchestrator imposes no
// timeout of its own, so callers apply cancellation around the whole call.
type Orchestrator struct {
	co     *database.Coordinator
	scope  *database.SessionScope
	logger database.Logger
}

// NewOrchestrator returns an orchestrator using the default session
// variable prefix.
func NewOrchestrator() *Orchestrator {
	return NewOrchestratorWithPrefix("")
}

// NewOrchestratorFromConfig returns an orchestrator using the session
// variable prefix declared in the database configuration. A nil config
// falls back to the default prefix.
func NewOrchestratorFromConfig(cfg *database.Config) *Orchestrator {
	if cfg == nil {
		return NewOrchestrator()
	}
	return NewOrchestratorWithPrefix(cfg.SessionConfig.Prefix)
}

// NewOrchestratorWithPrefix returns an orchestrator whose session variables
// are namespaced under the given prefix; empty means the default.
func NewOrchestratorWithPrefix(prefix string) *Orchestrator {
	logger := database.GetLogger()
	co := database.NewCoordinator(logger)
	return &Orchestrator{
		co:     co,
		scope:  database.NewSessionScope(co, prefix),
		logger: logger,
	}
}

// Run executes handler for one invocation.
//
// Without audit storage the handler simply runs against the configured
// database connection; there is no audit path at all.
//
// With audit storage, an Auditor is created for the invocation. When the
// storage is database-backed and the two declared service names match, one
// transaction is opened on the storage's connection: the handler runs
// inside it, pending records are flushed while still inside it, and the
// transaction commits only after both succeed. Any failure rolls back
// business writes and audit records together.
//
// When the names differ, the handler runs against the business connection
// and, only after it succeeds, records are flushed through the storage's
// own connection. The two commits are independent, so a failure between
// them can leave one side committed; callers opt into atomicity by
// declaring the same service name for both.
//
// A handler error always short-circuits before any flush attempt and
// propagates unmodified.
func (o *Orchestrator) Run(ctx context.Context, opts ExecutionOptions, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be empty")
	}

	if opts.AuditStorage == nil {
		return handler(ctx, &HandlerScope{DB: opts.Database})
	}

	if shared, ok := sharedDatabase(opts); ok {
		return o.scope.WithContext(ctx, shared, opts.Session, opts.TxSettings, func(ctx context.Context, tx *database.Conn) error {
			storage := opts.AuditStorage.(audit.DatabaseStorage).WithDatabase(tx)
			auditor := audit.NewAuditor(storage, opts.Actor, opts.Metadata)
			if err := handler(ctx, &HandlerScope{DB: tx, Auditor: auditor}); err != nil {
				return err
			}
			return auditor.Flush(ctx)
		})
	}

	auditor := audit.NewAuditor(opts.AuditStorage, opts.Actor, opts.Metadata)
	if err := handler(ctx, &HandlerScope{DB: opts.Database, Auditor: auditor}); err != nil {
		return err
	}
	if err := auditor.Flush(ctx); err != nil {
		// Business writes may already be committed at this point; the
		// records stay pending on the auditor for inspection.
		o.logger.Error("Audit flush failed after handler completion", "error", err)
		return err
	}
	return nil
}

// sharedDatabase reports whether this invocation's audit storage exposes a
// database connection that business writes are declared to share.
func sharedDatabase(opts ExecutionOptions) (*database.Conn, bool) {
	storage, ok := opts.AuditStorage.(audit.DatabaseStorage)
	if !ok {
		return nil, false
	}
	conn := storage.Database()
	if conn == nil {
		return nil, false
	}
	if opts.DatabaseService == "" || opts.DatabaseService != opts.AuditService {
		return nil, false
	}
	return conn, true
}

// Execute runs handler through o.Run and returns its result unmodified.
func Execute[T any](ctx context.Context, o *Orchestrator, opts ExecutionOptions, handler func(ctx context.Context, scope *HandlerScope) (T, error)) (T, error) {
	var result T
	err := o.Run(ctx, opts, func(ctx context.Context, scope *HandlerScope) error {
		r, err := handler(ctx, scope)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
