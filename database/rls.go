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
	"strconv"
)

// DefaultSessionPrefix is the namespace prepended to session variable names
// when the scope is created without an explicit prefix.
const DefaultSessionPrefix = "app"

// ScalarKind discriminates the value variants a session variable can carry.
type ScalarKind int

const (
	ScalarNull ScalarKind = iota
	ScalarString
	ScalarInt
	ScalarFloat
	ScalarBool
)

// Scalar is the value of a single session variable. The explicit variant
// tag pins down string conversion per type instead of relying on dynamic
// formatting of an any value:
//
//   - String: used verbatim
//   - Int:    strconv.FormatInt, base 10
//   - Float:  strconv.FormatFloat 'f' with minimal digits
//   - Bool:   "true" or "false"
//   - Null:   skipped, no variable is set
type Scalar struct {
	kind ScalarKind
	s    string
	i    int64
	f    float64
	b    bool
}

// String returns a string-valued Scalar.
func String(v string) Scalar { return Scalar{kind: ScalarString, s: v} }

// Int returns an integer-valued Scalar.
func Int(v int64) Scalar { return Scalar{kind: ScalarInt, i: v} }

// Float returns a float-valued Scalar.
func Float(v float64) Scalar { return Scalar{kind: ScalarFloat, f: v} }

// Bool returns a boolean-valued Scalar.
func Bool(v bool) Scalar { return Scalar{kind: ScalarBool, b: v} }

// Null returns the null Scalar. Null entries are skipped when variables
// are applied.
func Null() Scalar { return Scalar{kind: ScalarNull} }

// Kind returns the variant tag of the scalar.
func (v Scalar) Kind() ScalarKind { return v.kind }

// Format renders the scalar as the session variable text. The boolean
// result is false for Null, meaning no variable should be set.
func (v Scalar) Format() (string, bool) {
	switch v.kind {
	case ScalarString:
		return v.s, true
	case ScalarInt:
		return strconv.FormatInt(v.i, 10), true
	case ScalarFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case ScalarBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

type sessionEntry struct {
	key   string
	value Scalar
}

// SessionContext is an insertion-ordered set of session variables. Setting
// an existing key updates the value in place and keeps the original
// position, so variables are always applied in first-set order.
type SessionContext struct {
	entries []sessionEntry
}

// NewSessionContext returns an empty session context.
func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

// Set adds or replaces a variable and returns the context for chaining.
func (sc *SessionContext) Set(key string, value Scalar) *SessionContext {
	for i := range sc.entries {
		if sc.entries[i].key == key {
			sc.entries[i].value = value
			return sc
		}
	}
	sc.entries = append(sc.entries, sessionEntry{key: key, value: value})
	return sc
}

// Len returns the number of entries, including null ones.
func (sc *SessionContext) Len() int {
	if sc == nil {
		return 0
	}
	return len(sc.entries)
}

// SessionScope layers transaction-scoped session variable injection on top
// of the Coordinator. It guarantees that variables are set before the
// callback runs and are scoped to the transaction; it knows nothing about
// the SQL policies that read them.
type SessionScope struct {
	co     *Coordinator
	prefix string
}

// NewSessionScope returns a scope using the given coordinator. An empty
// prefix falls back to DefaultSessionPrefix.
func NewSessionScope(co *Coordinator, prefix string) *SessionScope {
	if co == nil {
		co = NewCoordinator(nil)
	}
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	return &SessionScope{co: co, prefix: prefix}
}

// WithContext runs fn in a transaction on conn with the session variables
// from sc applied first. Variables are set sequentially, in insertion
// order, as "<prefix>.<key>" via set_config with is_local=TRUE, so the
// database clears them when the transaction commits or rolls back.
//
// Nesting is additive: a nested call against the already-open transaction
// sets its variables on top of whatever the outer call set, and both
// remain visible until transaction end.
func (s *SessionScope) WithContext(ctx context.Context, conn *Conn, sc *SessionContext, settings *TxSettings, fn func(ctx context.Context, tx *Conn) error) error {
	return s.co.RunInTx(ctx, conn, settings, func(ctx context.Context, tx *Conn) error {
		if err := s.applyContext(ctx, tx, sc); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}

func (s *SessionScope) applyContext(ctx context.Context, tx *Conn, sc *SessionContext) error {
	if sc == nil {
		return nil
	}
	for _, entry := range sc.entries {
		value, ok := entry.value.Format()
		if !ok {
			continue
		}
		name := s.prefix + "." + entry.key
		if _, err := tx.ExecContext(ctx, "SELECT set_config(?, ?, TRUE)", name, value); err != nil {
			return fmt.Errorf("failed to set session variable %s: %w", name, err)
		}
	}
	return nil
}
