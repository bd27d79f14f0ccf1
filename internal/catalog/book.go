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

// Package catalog holds the Book entity served by crudserver.
package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/tomoncle/restcrud"
	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/entity"
	"github.com/tomoncle/restcrud/resource"
	"github.com/tomoncle/restcrud/types"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`
	entity.Model

	Title  string `bun:"title,notnull" json:"title" xml:"title" binding:"required,max=200"`
	Author string `bun:"author,notnull" json:"author" xml:"author" binding:"required,max=120"`
	ISBN   string `bun:"isbn,unique,nullzero" json:"isbn,omitempty" xml:"isbn,omitempty" binding:"omitempty,len=13,numeric"`
	Pages  int    `bun:"pages,notnull,default:0" json:"pages" xml:"pages" binding:"gte=0"`
	// Attributes is free-form metadata; it has no XML form.
	Attributes types.JsonObject `bun:"attributes,type:text" json:"attributes,omitempty" xml:"-"`
}

func init() {
	database.RegisterModel((*Book)(nil), 0)
}

// Mount serves books under /books, limited to verbs when any are given.
func Mount(r gin.IRouter, verbs ...types.Verb) *resource.Resource[Book, *Book] {
	var opts []resource.Option
	if len(verbs) > 0 {
		opts = append(opts, resource.WithVerbs(verbs...))
	}
	return restcrud.Mount[Book](r, "/books", opts...)
}
