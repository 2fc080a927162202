// Package database provides connection management, the pooled/transaction
// Conn abstraction, transaction coordination with nested-call collapse,
// transaction-scoped session variable injection for row-level security,
// configuration types, logging, and SQL error classification built on top
// of Bun.
package database
