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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/entity"
	"github.com/tomoncle/restcrud/repository"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`
	entity.Model
	Label string `bun:"label,notnull" json:"label" binding:"required"`
}

func init() {
	gin.SetMode(gin.TestMode)
	database.RegisterModel((*widget)(nil), 0)
}

func initTestDB(t *testing.T) {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DSN = "file::memory:"
	cfg.ConnectionConfig.EnableReconnect = false
	if _, err := database.InitDatabaseWithOptions(context.Background(), cfg, true); err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { _ = database.CloseDB() })
}

func TestServiceBeforeInit(t *testing.T) {
	svc := NewService[widget]()
	if _, err := svc.Count(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestServiceCRUD(t *testing.T) {
	initTestDB(t)
	ctx := context.Background()
	svc := NewService[widget]()

	w, err := svc.Create(ctx, &widget{Label: "knob"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id, ok := w.GetID()
	if !ok {
		t.Fatalf("expected an id")
	}

	err = svc.RunInTx(ctx, func(ctx context.Context, repo repository.BunRepository[widget]) error {
		w.Label = "dial"
		if _, err := repo.Edit(ctx, w); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatalf("expected the transaction error")
	}

	got, found, err := svc.Find(ctx, id)
	if err != nil || !found {
		t.Fatalf("find: found=%v err=%v", found, err)
	}
	if got.Label != "knob" {
		t.Fatalf("expected rolled back label, got %q", got.Label)
	}

	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if n, err := svc.Count(ctx); err != nil || n != 0 {
		t.Fatalf("expected empty table, got %d (%v)", n, err)
	}
}

func TestMount(t *testing.T) {
	initTestDB(t)
	r := gin.New()
	Mount[widget](r, "/widgets")

	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"label":"lever"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created widget
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	id, _ := created.GetID()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets/"+strconv.FormatInt(id, 10), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
