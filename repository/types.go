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

	"github.com/uptrace/bun"
)

// Repository is the capability set a resource needs from storage for one
// entity type. Implementations hold no state shared across requests.
type Repository[T any] interface {
	// Create inserts a record that has no id yet and returns the stored row,
	// including the assigned id and any engine defaults.
	Create(ctx context.Context, entity *T) (*T, error)

	// Find returns the record with the given id. A missing record is
	// reported through found=false and a nil error.
	Find(ctx context.Context, id int64) (entity *T, found bool, err error)

	// FindAll returns every record ordered by id; never nil.
	FindAll(ctx context.Context) ([]*T, error)

	// FindRange returns at most to-from+1 records starting at offset from,
	// ordered by id. from > to or a negative from is ErrInvalidRange.
	FindRange(ctx context.Context, from, to int64) ([]*T, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int64, error)

	// Edit overwrites the record matching the entity's id and returns the
	// stored row. A nil id is ErrMissingID, an unknown id is ErrNotFound.
	Edit(ctx context.Context, entity *T) (*T, error)

	// Remove deletes the record with the given id; unknown ids are a no-op.
	Remove(ctx context.Context, id int64) error
}

// TransactionRepository lets a caller run repository operations inside a
// transaction it owns.
type TransactionRepository[T any] interface {
	// WithTx returns a repository bound to tx. It never begins, commits or
	// rolls back; that is up to the owner of tx.
	WithTx(tx bun.IDB) BunRepository[T]

	// RunInTx runs fn in a new transaction owned by the repository and
	// commits it when fn returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo BunRepository[T]) error) error
}

// BunRepository is the Bun backed Repository.
type BunRepository[T any] interface {
	Repository[T]
	TransactionRepository[T]
	DB() bun.IDB
}
