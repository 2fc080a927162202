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
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLError classifies driver errors into the failure modes this layer and
// its callers care about. Classification never changes the error that is
// propagated; it only informs logging and caller-side handling.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	TxDoneErr
	SerializationErr
	DeadlockErr
	PrivilegeErr
	InvalidParameterErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	NoTableErr
)

// IsSqlError reports whether err comes from the database and which failure
// class it belongs to. MySQL errors are matched by number; PostgreSQL and
// SQLite errors by SQLSTATE or message text.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	if errors.Is(err, sql.ErrTxDone) {
		return true, TxDoneErr
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1213:
			return true, DeadlockErr
		case 1205:
			return true, SerializationErr
		case 1044, 1142, 1143:
			return true, PrivilegeErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 1216, 1217, 1451, 1452:
			return true, ForeignKeyViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1146:
			return true, NoTableErr
		default:
			return true, UnknownErr
		}
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "sqlstate 40001") ||
		strings.Contains(s, "could not serialize access") {
		return true, SerializationErr
	}
	if strings.Contains(s, "sqlstate 40p01") ||
		strings.Contains(s, "deadlock detected") {
		return true, DeadlockErr
	}
	if strings.Contains(s, "sqlstate 42501") ||
		strings.Contains(s, "insufficient privilege") ||
		strings.Contains(s, "violates row-level security policy") {
		return true, PrivilegeErr
	}
	if strings.Contains(s, "sqlstate 22023") ||
		strings.Contains(s, "invalid value for parameter") ||
		strings.Contains(s, "unrecognized configuration parameter") {
		return true, InvalidParameterErr
	}
	if strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "sqlstate 23505") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "sqlstate 23502") ||
		strings.Contains(s, "not null constraint failed") {
		return true, NotNullViolationErr
	}
	if strings.Contains(s, "foreign key violation") ||
		strings.Contains(s, "foreign key constraint failed") ||
		strings.Contains(s, "sqlstate 23503") {
		return true, ForeignKeyViolationErr
	}
	if strings.Contains(s, "check constraint") ||
		strings.Contains(s, "sqlstate 23514") {
		return true, CheckConstraintViolationErr
	}
	if strings.Contains(s, "sqlstate 42p01") ||
		strings.Contains(s, "undefined table") ||
		strings.Contains(s, "no such table") {
		return true, NoTableErr
	}
	return false, UnknownErr
}
