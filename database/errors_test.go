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
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsSqlErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   bool
		want SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", sql.ErrNoRows, true, NoRowsErr},
		{"tx done", sql.ErrTxDone, true, TxDoneErr},
		{"wrapped tx done", fmt.Errorf("commit: %w", sql.ErrTxDone), true, TxDoneErr},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true, DeadlockErr},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, true, SerializationErr},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, DuplicateKeyErr},
		{"mysql privilege", &mysql.MySQLError{Number: 1142}, true, PrivilegeErr},
		{"pg serialization", errors.New("ERROR: could not serialize access due to concurrent update (SQLSTATE 40001)"), true, SerializationErr},
		{"pg deadlock", errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), true, DeadlockErr},
		{"pg rls denial", errors.New(`ERROR: new row violates row-level security policy for table "orders"`), true, PrivilegeErr},
		{"pg bad set_config", errors.New("ERROR: unrecognized configuration parameter (SQLSTATE 22023)"), true, InvalidParameterErr},
		{"pg duplicate", errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"), true, DuplicateKeyErr},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: items.name"), true, DuplicateKeyErr},
		{"sqlite missing table", errors.New("SQL logic error: no such table: missing (1)"), true, NoTableErr},
		{"plain error", errors.New("dial tcp: connection refused"), false, UnknownErr},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is, class := IsSqlError(c.err)
			if is != c.is || class != c.want {
				t.Fatalf("IsSqlError(%v) = (%v, %d), want (%v, %d)", c.err, is, class, c.is, c.want)
			}
		})
	}
}
