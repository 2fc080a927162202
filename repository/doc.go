// Package repository provides a generic Bun-backed repository bound to a
// database.Conn, usable both on the pool and inside an open transaction.
package repository
