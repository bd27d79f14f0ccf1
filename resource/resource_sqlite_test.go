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
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/repository"
)

func newSQLiteRouter(t *testing.T) *gin.Engine {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	registry := database.NewModelRegistry()
	registry.Register(database.NewModelAdapter((*note)(nil), 0))
	if err := database.NewSchemaManager(db, nil).WithRegistry(registry).EnsureTables(context.Background()); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	return newTestRouter(repository.NewRepository[note](db))
}

func TestRoundTripThroughSQLite(t *testing.T) {
	r := newSQLiteRouter(t)

	w := doRequest(r, http.MethodPost, "/notes", `{"title":"persisted","body":"b"}`)
	assertStatus(t, w, http.StatusCreated)
	created := decodeNote(t, w)
	if id, ok := created.GetID(); !ok || id != 1 {
		t.Fatalf("expected id 1, got %+v", created)
	}

	w = doRequest(r, http.MethodGet, "/notes/1", "")
	assertStatus(t, w, http.StatusOK)
	if got := decodeNote(t, w); got.Title != "persisted" || got.Body != "b" {
		t.Fatalf("unexpected note %+v", got)
	}

	w = doRequest(r, http.MethodPut, "/notes", `{"id":2,"title":"ghost"}`)
	assertStatus(t, w, http.StatusNotFound)
	assertStatus(t, doRequest(r, http.MethodGet, "/notes/2", ""), http.StatusNotFound)
}

func TestDuplicateIsConflict(t *testing.T) {
	r := newSQLiteRouter(t)
	seed(t, r, "same")

	w := doRequest(r, http.MethodPost, "/notes", `{"title":"same"}`)
	assertStatus(t, w, http.StatusConflict)

	w = doRequest(r, http.MethodGet, "/notes/count", "")
	assertStatus(t, w, http.StatusOK)
	if w.Body.String() != "1" {
		t.Fatalf("expected the failed insert to be rolled back, count=%q", w.Body.String())
	}
}
