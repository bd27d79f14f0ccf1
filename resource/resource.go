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

package resource

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/entity"
	"github.com/tomoncle/restcrud/repository"
	"github.com/tomoncle/restcrud/types"
)

// Resource maps HTTP verbs onto a Repository for entity type T.
type Resource[T any, P entity.Ptr[T]] struct {
	repo   repository.Repository[T]
	verbs  []types.Verb
	logger database.Logger
}

// Option configures a Resource.
type Option func(*options)

type options struct {
	verbs  []types.Verb
	logger database.Logger
}

// WithVerbs restricts the routes Register mounts to the given verbs.
func WithVerbs(verbs ...types.Verb) Option {
	return func(o *options) { o.verbs = verbs }
}

// WithLogger sets the logger used to report server errors.
func WithLogger(logger database.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New returns a Resource serving repo.
//
//	books := resource.New[Book](repository.NewRepository[Book](db))
//	books.Register(router.Group("/books"))
func New[T any, P entity.Ptr[T]](repo repository.Repository[T], opts ...Option) *Resource[T, P] {
	o := options{verbs: types.AllVerbs()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultLogger()
	}
	return &Resource[T, P]{
		repo:   repo,
		verbs:  lo.Uniq(lo.Filter(o.verbs, func(v types.Verb, _ int) bool { return v.IsValid() })),
		logger: o.logger,
	}
}

// Verbs returns the verbs this resource exposes.
func (res *Resource[T, P]) Verbs() []types.Verb {
	return append([]types.Verb(nil), res.verbs...)
}

func (res *Resource[T, P]) enabled(v types.Verb) bool {
	return lo.Contains(res.verbs, v)
}

// Register mounts the enabled routes on r, typically a group such as
// router.Group("/books"). Collection routes live on the group path itself,
// so "/books" is canonical and "/books/" redirects to it.
func (res *Resource[T, P]) Register(r gin.IRouter) {
	if res.enabled(types.VerbCreate) {
		r.POST("", res.create)
	}
	if res.enabled(types.VerbList) {
		r.GET("", res.list)
	}
	if res.enabled(types.VerbCount) {
		r.GET("/count", res.count)
	}
	if res.enabled(types.VerbGet) {
		r.GET("/:id", res.get)
	}
	// gin requires one wildcard name per tree position, so the range start
	// shares the "id" name with the get route.
	if res.enabled(types.VerbRange) {
		r.GET("/:id/:to", res.findRange)
	}
	if res.enabled(types.VerbUpdate) {
		r.PUT("", res.update)
	}
	if res.enabled(types.VerbDelete) {
		r.DELETE("/:id", res.delete)
	}
}

func (res *Resource[T, P]) create(c *gin.Context) {
	row := new(T)
	if err := bindBody(c, row); err != nil {
		res.fail(c, err)
		return
	}
	if entity.HasID(P(row)) {
		res.fail(c, repository.ErrIDAssigned)
		return
	}
	created, err := res.repo.Create(c.Request.Context(), row)
	if err != nil {
		res.fail(c, err)
		return
	}
	render(c, http.StatusCreated, created)
}

func (res *Resource[T, P]) list(c *gin.Context) {
	rows, err := res.repo.FindAll(c.Request.Context())
	if err != nil {
		res.fail(c, err)
		return
	}
	renderList(c, http.StatusOK, rows)
}

func (res *Resource[T, P]) get(c *gin.Context) {
	ids, ok := res.pathIDs(c, "id")
	if !ok {
		return
	}
	row, found, err := res.repo.Find(c.Request.Context(), ids[0])
	if err != nil {
		res.fail(c, err)
		return
	}
	if !found {
		res.fail(c, repository.ErrNotFound)
		return
	}
	render(c, http.StatusOK, row)
}

func (res *Resource[T, P]) findRange(c *gin.Context) {
	ids, ok := res.pathIDs(c, "id", "to")
	if !ok {
		return
	}
	if !types.NewRangeRequest(ids[0], ids[1]).Valid() {
		res.fail(c, repository.ErrInvalidRange)
		return
	}
	rows, err := res.repo.FindRange(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		res.fail(c, err)
		return
	}
	renderList(c, http.StatusOK, rows)
}

func (res *Resource[T, P]) count(c *gin.Context) {
	n, err := res.repo.Count(c.Request.Context())
	if err != nil {
		res.fail(c, err)
		return
	}
	c.String(http.StatusOK, strconv.FormatInt(n, 10))
}

func (res *Resource[T, P]) update(c *gin.Context) {
	row := new(T)
	if err := bindBody(c, row); err != nil {
		res.fail(c, err)
		return
	}
	if !entity.HasID(P(row)) {
		res.fail(c, repository.ErrMissingID)
		return
	}
	updated, err := res.repo.Edit(c.Request.Context(), row)
	if err != nil {
		res.fail(c, err)
		return
	}
	render(c, http.StatusOK, updated)
}

func (res *Resource[T, P]) delete(c *gin.Context) {
	ids, ok := res.pathIDs(c, "id")
	if !ok {
		return
	}
	if err := res.repo.Remove(c.Request.Context(), ids[0]); err != nil {
		res.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
