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

package restcrud

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/entity"
	"github.com/tomoncle/restcrud/repository"
	"github.com/tomoncle/restcrud/resource"
)

var ErrNotInitialized = errors.New("database not initialized")

// Service is a Repository bound to the global database on first use, so it
// can be built before database.InitDB runs.
type Service[T any] interface {
	repository.Repository[T]

	// RunInTx runs fn with a repository bound to one transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo repository.BunRepository[T]) error) error
}

type baseServiceImpl[T any, P entity.Ptr[T]] struct {
	mu   sync.Mutex
	repo repository.BunRepository[T]
	opts []repository.Option
}

// NewService returns a Service for T backed by database.GetDB.
func NewService[T any, P entity.Ptr[T]](opts ...repository.Option) Service[T] {
	return &baseServiceImpl[T, P]{opts: opts}
}

func (s *baseServiceImpl[T, P]) baseRepo() (repository.BunRepository[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		db := database.GetDB()
		if db == nil {
			return nil, ErrNotInitialized
		}
		s.repo = repository.NewRepository[T, P](db, s.opts...)
	}
	return s.repo, nil
}

func (s *baseServiceImpl[T, P]) Create(ctx context.Context, e *T) (*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, e)
}

func (s *baseServiceImpl[T, P]) Find(ctx context.Context, id int64) (*T, bool, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, false, err
	}
	return repo.Find(ctx, id)
}

func (s *baseServiceImpl[T, P]) FindAll(ctx context.Context) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.FindAll(ctx)
}

func (s *baseServiceImpl[T, P]) FindRange(ctx context.Context, from, to int64) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.FindRange(ctx, from, to)
}

func (s *baseServiceImpl[T, P]) Count(ctx context.Context) (int64, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return 0, err
	}
	return repo.Count(ctx)
}

func (s *baseServiceImpl[T, P]) Edit(ctx context.Context, e *T) (*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.Edit(ctx, e)
}

func (s *baseServiceImpl[T, P]) Remove(ctx context.Context, id int64) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return repo.Remove(ctx, id)
}

func (s *baseServiceImpl[T, P]) RunInTx(ctx context.Context, fn func(ctx context.Context, repo repository.BunRepository[T]) error) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return repo.RunInTx(ctx, fn)
}

// Mount serves T under path on r through a Service bound to the global
// database.
//
//	restcrud.Mount[catalog.Book](engine, "/books")
func Mount[T any, P entity.Ptr[T]](r gin.IRouter, path string, opts ...resource.Option) *resource.Resource[T, P] {
	res := resource.New[T, P](NewService[T, P](), opts...)
	res.Register(r.Group(path))
	return res
}
