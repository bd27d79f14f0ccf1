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

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/entity"
	"github.com/tomoncle/restcrud/types"

	"github.com/uptrace/bun"
)

type baseRepositoryImpl[T any, P entity.Ptr[T]] struct {
	db     bun.IDB
	ownsTx bool
	name   string
	logger database.Logger
}

// Option configures a repository.
type Option func(*options)

type options struct {
	logger database.Logger
}

// WithLogger sets the logger used to report rollback failures.
func WithLogger(logger database.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewRepository returns a generic repository for T backed by db. When db is
// a *bun.DB the repository owns its transactions; when it is a transaction
// the caller does.
//
//	books := repository.NewRepository[Book](db)
func NewRepository[T any, P entity.Ptr[T]](db bun.IDB, opts ...Option) BunRepository[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = database.GetLogger()
	}
	return &baseRepositoryImpl[T, P]{
		db:     db,
		ownsTx: ownsTransactions(db),
		name:   entity.TypeName(new(T)),
		logger: o.logger,
	}
}

func ownsTransactions(db bun.IDB) bool {
	switch db.(type) {
	case bun.Tx, *bun.Tx:
		return false
	default:
		return true
	}
}

func (r *baseRepositoryImpl[T, P]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[T, P]) WithTx(tx bun.IDB) BunRepository[T] {
	return &baseRepositoryImpl[T, P]{db: tx, ownsTx: false, name: r.name, logger: r.logger}
}

func (r *baseRepositoryImpl[T, P]) RunInTx(ctx context.Context, fn func(ctx context.Context, repo BunRepository[T]) error) error {
	return r.inTx(ctx, "transaction", func(ctx context.Context, tx bun.IDB) error {
		return fn(ctx, r.WithTx(tx))
	})
}

func (r *baseRepositoryImpl[T, P]) Create(ctx context.Context, e *T) (*T, error) {
	if e == nil {
		return nil, ErrNilEntity
	}
	if _, ok := P(e).GetID(); ok {
		return nil, ErrIDAssigned
	}
	row := new(T)
	*row = *e
	err := r.inTx(ctx, "create", func(ctx context.Context, db bun.IDB) error {
		if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
			return r.storageError("create", err)
		}
		if err := db.NewSelect().Model(row).WherePK().Scan(ctx); err != nil {
			return r.storageError("create", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *baseRepositoryImpl[T, P]) Find(ctx context.Context, id int64) (*T, bool, error) {
	row := new(T)
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, r.storageError("find", err)
	}
	return row, true, nil
}

func (r *baseRepositoryImpl[T, P]) FindAll(ctx context.Context) ([]*T, error) {
	rows := make([]*T, 0)
	if err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, r.storageError("find all", err)
	}
	return rows, nil
}

func (r *baseRepositoryImpl[T, P]) FindRange(ctx context.Context, from, to int64) ([]*T, error) {
	rng := types.NewRangeRequest(from, to)
	if !rng.Valid() {
		return nil, ErrInvalidRange
	}
	rows := make([]*T, 0, min(rng.GetLimit(), 64))
	err := r.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Offset(rng.GetOffset()).
		Limit(rng.GetLimit()).
		Scan(ctx)
	if err != nil {
		return nil, r.storageError("find range", err)
	}
	return rows, nil
}

func (r *baseRepositoryImpl[T, P]) Count(ctx context.Context) (int64, error) {
	n, err := r.db.NewSelect().Model((*T)(nil)).Count(ctx)
	if err != nil {
		return 0, r.storageError("count", err)
	}
	return int64(n), nil
}

func (r *baseRepositoryImpl[T, P]) Edit(ctx context.Context, e *T) (*T, error) {
	if e == nil {
		return nil, ErrNilEntity
	}
	id, ok := P(e).GetID()
	if !ok {
		return nil, ErrMissingID
	}
	row := new(T)
	*row = *e
	err := r.inTx(ctx, "edit", func(ctx context.Context, db bun.IDB) error {
		exists, err := db.NewSelect().Model((*T)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return r.storageError("edit", err)
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := db.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
			return r.storageError("edit", err)
		}
		// the row can vanish after the existence check under READ COMMITTED
		if err := db.NewSelect().Model(row).WherePK().Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return r.storageError("edit", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *baseRepositoryImpl[T, P]) Remove(ctx context.Context, id int64) error {
	return r.inTx(ctx, "remove", func(ctx context.Context, db bun.IDB) error {
		var row T
		if _, err := db.NewDelete().Model(&row).Where("id = ?", id).Exec(ctx); err != nil {
			return r.storageError("remove", err)
		}
		return nil
	})
}

func (r *baseRepositoryImpl[T, P]) storageError(op string, err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return newStorageError(op, r.name, err)
}
