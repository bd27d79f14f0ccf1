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

package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/types"
)

func newCatalog(t *testing.T, verbs ...types.Verb) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DSN = "file::memory:"
	if _, err := database.InitDatabaseWithOptions(context.Background(), cfg, true); err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { _ = database.CloseDB() })

	r := gin.New()
	Mount(r, verbs...)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBookLifecycle(t *testing.T) {
	r := newCatalog(t)

	w := post(r, `{"title":"Dune","author":"Frank Herbert","isbn":"9780441172719","attributes":{"format":"paperback"}}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var b Book
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if id, ok := b.GetID(); !ok || id != 1 {
		t.Fatalf("expected id 1, got %+v", b)
	}
	if b.Pages != 0 || b.Attributes["format"] != "paperback" {
		t.Fatalf("unexpected book %+v", b)
	}

	w = post(r, `{"title":"Copy","author":"Someone","isbn":"9780441172719"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate isbn, got %d: %s", w.Code, w.Body.String())
	}

	w = post(r, `{"title":"No author"}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Author") {
		t.Fatalf("expected 400 naming Author, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReadOnlyCatalog(t *testing.T) {
	r := newCatalog(t, types.ReadVerbs()...)
	if w := post(r, `{"title":"Dune","author":"Frank Herbert"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected create to be unavailable, got %d", w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books/count", nil))
	if w.Code != http.StatusOK || w.Body.String() != "0" {
		t.Fatalf("unexpected count response %d %q", w.Code, w.Body.String())
	}
}
