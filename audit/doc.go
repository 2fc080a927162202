// Package audit provides the per-invocation audit ledger: an in-memory,
// append-only buffer of immutable records with a single flush to storage,
// plus the storage capability interfaces the orchestrator uses to decide
// whether audit and business writes can share one transaction.
package audit
