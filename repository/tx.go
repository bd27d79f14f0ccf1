/*
 * Copyright 2025 tomoncle.
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

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// inTx runs fn atomically. With a caller-owned transaction fn runs directly
// on it. Otherwise a transaction is begun, committed when fn succeeds and
// rolled back when fn fails or panics.
func (r *baseRepositoryImpl[T, P]) inTx(ctx context.Context, op string, fn func(ctx context.Context, db bun.IDB) error) error {
	if !r.ownsTx {
		return fn(ctx, r.db)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.storageError(op, err)
	}
	var committed bool
	defer func() {
		if committed {
			return
		}
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.Error("Failed to rollback transaction", "op", op, "entity", r.name, "error", rollbackErr)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return r.storageError(op, err)
	}
	committed = true
	return nil
}
