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
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tomoncle/restcrud/database"
	"github.com/tomoncle/restcrud/entity"
	"github.com/tomoncle/restcrud/repository"
	"github.com/tomoncle/restcrud/types"
)

type note struct {
	entity.Model
	Title string `bun:"title,notnull,unique" json:"title" xml:"title" binding:"required"`
	Body  string `bun:"body" json:"body,omitempty" xml:"body,omitempty"`
}

// fakeRepo is an in-memory Repository that counts every call.
type fakeRepo struct {
	mu    sync.Mutex
	rows  map[int64]note
	next  int64
	calls map[string]int
	err   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]note{}, calls: map[string]int{}}
}

func (f *fakeRepo) hit(op string) error {
	f.calls[op]++
	return f.err
}

func (f *fakeRepo) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeRepo) callsTo(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRepo) sorted() []*note {
	ids := make([]int64, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*note, 0, len(ids))
	for _, id := range ids {
		row := f.rows[id]
		out = append(out, &row)
	}
	return out
}

func (f *fakeRepo) Create(_ context.Context, e *note) (*note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("create"); err != nil {
		return nil, err
	}
	f.next++
	row := *e
	id := f.next
	row.ID = &id
	f.rows[id] = row
	return &row, nil
}

func (f *fakeRepo) Find(_ context.Context, id int64) (*note, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("find"); err != nil {
		return nil, false, err
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, false, nil
	}
	return &row, true, nil
}

func (f *fakeRepo) FindAll(context.Context) ([]*note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("findAll"); err != nil {
		return nil, err
	}
	return f.sorted(), nil
}

func (f *fakeRepo) FindRange(_ context.Context, from, to int64) ([]*note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("findRange"); err != nil {
		return nil, err
	}
	all := f.sorted()
	if from >= int64(len(all)) {
		return []*note{}, nil
	}
	end := min(to+1, int64(len(all)))
	return all[from:end], nil
}

func (f *fakeRepo) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("count"); err != nil {
		return 0, err
	}
	return int64(len(f.rows)), nil
}

func (f *fakeRepo) Edit(_ context.Context, e *note) (*note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("edit"); err != nil {
		return nil, err
	}
	id, _ := e.GetID()
	if _, ok := f.rows[id]; !ok {
		return nil, repository.ErrNotFound
	}
	f.rows[id] = *e
	row := *e
	return &row, nil
}

func (f *fakeRepo) Remove(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.hit("remove"); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(repo repository.Repository[note], opts ...Option) *gin.Engine {
	r := gin.New()
	New[note](repo, opts...).Register(r.Group("/notes"))
	return r
}

func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func decodeNote(t *testing.T, w *httptest.ResponseRecorder) *note {
	t.Helper()
	var n note
	if err := json.Unmarshal(w.Body.Bytes(), &n); err != nil {
		t.Fatalf("decode note: %v (%s)", err, w.Body.String())
	}
	return &n
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return resp.Error
}

func seed(t *testing.T, r http.Handler, titles ...string) {
	t.Helper()
	for _, title := range titles {
		w := doRequest(r, http.MethodPost, "/notes", fmt.Sprintf(`{"title":%q}`, title))
		assertStatus(t, w, http.StatusCreated)
	}
}

func TestNonNumericIDNeverReachesRepository(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/notes/abc"},
		{http.MethodGet, "/notes/1.5"},
		{http.MethodDelete, "/notes/abc"},
		{http.MethodGet, "/notes/abc/3"},
		{http.MethodGet, "/notes/1/x"},
		{http.MethodGet, "/notes/99999999999999999999"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := doRequest(r, tc.method, tc.path, "")
			assertStatus(t, w, http.StatusBadRequest)
			if got := w.Body.String(); got != "id must be a Number" {
				t.Fatalf("unexpected body %q", got)
			}
		})
	}
	if n := repo.totalCalls(); n != 0 {
		t.Fatalf("expected no repository calls, got %d", n)
	}
}

func TestCreateAndGet(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	w := doRequest(r, http.MethodPost, "/notes", `{"title":"first","body":"hello"}`)
	assertStatus(t, w, http.StatusCreated)
	created := decodeNote(t, w)
	id, ok := created.GetID()
	if !ok || id != 1 {
		t.Fatalf("expected id 1, got %s", entity.Describe(created))
	}

	w = doRequest(r, http.MethodGet, "/notes/1", "")
	assertStatus(t, w, http.StatusOK)
	got := decodeNote(t, w)
	if got.Title != "first" || got.Body != "hello" || !entity.Equal(got, created) {
		t.Fatalf("unexpected note %+v", got)
	}
}

func TestCreateRejectsBadBodies(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo)

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"id assigned", `{"id":5,"title":"x"}`, repository.ErrIDAssigned.Error()},
		{"missing title", `{"body":"x"}`, "Title failed on 'required'"},
		{"malformed", `{"title":`, ErrMalformedBody.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/notes", tc.body)
			assertStatus(t, w, http.StatusBadRequest)
			if msg := decodeError(t, w); !strings.Contains(msg, tc.message) {
				t.Fatalf("expected message containing %q, got %q", tc.message, msg)
			}
		})
	}
	if n := repo.callsTo("create"); n != 0 {
		t.Fatalf("expected create never called, got %d", n)
	}
}

func TestGetAbsentIsNotFound(t *testing.T) {
	r := newTestRouter(newFakeRepo())
	w := doRequest(r, http.MethodGet, "/notes/42", "")
	assertStatus(t, w, http.StatusNotFound)
	if msg := decodeError(t, w); msg != repository.ErrNotFound.Error() {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestListAndCount(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	w := doRequest(r, http.MethodGet, "/notes", "")
	assertStatus(t, w, http.StatusOK)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}

	seed(t, r, "a", "b")

	w = doRequest(r, http.MethodGet, "/notes/count", "")
	assertStatus(t, w, http.StatusOK)
	if w.Body.String() != "2" {
		t.Fatalf("expected count 2, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}

	w = doRequest(r, http.MethodGet, "/notes", "")
	assertStatus(t, w, http.StatusOK)
	var rows []note
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "a" || rows[1].Title != "b" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestRange(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo)
	seed(t, r, "a", "b", "c")

	w := doRequest(r, http.MethodGet, "/notes/1/2", "")
	assertStatus(t, w, http.StatusOK)
	var rows []note
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode range: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "b" || rows[1].Title != "c" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	for _, path := range []string{"/notes/2/1", "/notes/-1/1"} {
		w = doRequest(r, http.MethodGet, path, "")
		assertStatus(t, w, http.StatusBadRequest)
	}
	if n := repo.callsTo("findRange"); n != 1 {
		t.Fatalf("expected a single range query, got %d", n)
	}
}

func TestUpdate(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo)
	seed(t, r, "draft")

	w := doRequest(r, http.MethodPut, "/notes", `{"title":"no id"}`)
	assertStatus(t, w, http.StatusBadRequest)
	if msg := decodeError(t, w); msg != repository.ErrMissingID.Error() {
		t.Fatalf("unexpected message %q", msg)
	}
	if n := repo.callsTo("edit"); n != 0 {
		t.Fatalf("expected edit never called, got %d", n)
	}

	w = doRequest(r, http.MethodPut, "/notes", `{"id":42,"title":"ghost"}`)
	assertStatus(t, w, http.StatusNotFound)

	w = doRequest(r, http.MethodPut, "/notes", `{"id":1,"title":"final"}`)
	assertStatus(t, w, http.StatusOK)
	if got := decodeNote(t, w); got.Title != "final" {
		t.Fatalf("unexpected note %+v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	r := newTestRouter(newFakeRepo())
	seed(t, r, "gone")

	for i := 0; i < 2; i++ {
		w := doRequest(r, http.MethodDelete, "/notes/1", "")
		assertStatus(t, w, http.StatusNoContent)
	}
	assertStatus(t, doRequest(r, http.MethodGet, "/notes/1", ""), http.StatusNotFound)
}

func TestStorageFailureIsServerError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection reset")
	r := newTestRouter(repo)

	w := doRequest(r, http.MethodGet, "/notes", "")
	assertStatus(t, w, http.StatusInternalServerError)
	if msg := decodeError(t, w); strings.Contains(msg, "connection reset") {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestWithVerbsHidesRoutes(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo, WithVerbs(types.ReadVerbs()...))

	assertStatus(t, doRequest(r, http.MethodPost, "/notes", `{"title":"x"}`), http.StatusNotFound)
	assertStatus(t, doRequest(r, http.MethodDelete, "/notes/1", ""), http.StatusNotFound)
	assertStatus(t, doRequest(r, http.MethodGet, "/notes", ""), http.StatusOK)
	assertStatus(t, doRequest(r, http.MethodGet, "/notes/count", ""), http.StatusOK)
	if n := repo.callsTo("create") + repo.callsTo("remove"); n != 0 {
		t.Fatalf("expected hidden verbs never to reach the repository, got %d calls", n)
	}
}

func TestXMLNegotiation(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	w := doRequest(r, http.MethodPost, "/notes", `<note><title>xml</title></note>`,
		"Content-Type", "application/xml", "Accept", "application/xml")
	assertStatus(t, w, http.StatusCreated)
	var created note
	if err := xml.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode xml: %v (%s)", err, w.Body.String())
	}
	if id, ok := created.GetID(); !ok || id != 1 || created.Title != "xml" {
		t.Fatalf("unexpected note %+v", created)
	}

	w = doRequest(r, http.MethodGet, "/notes/7", "", "Accept", "application/xml")
	assertStatus(t, w, http.StatusNotFound)
	var resp ErrorResponse
	if err := xml.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode xml error: %v (%s)", err, w.Body.String())
	}
	if resp.Error != repository.ErrNotFound.Error() {
		t.Fatalf("unexpected message %q", resp.Error)
	}

	seed(t, r, "second")
	type noteList struct {
		XMLName xml.Name `xml:"list"`
		Items   []note   `xml:"note"`
	}
	for _, path := range []string{"/notes", "/notes/0/1"} {
		w = doRequest(r, http.MethodGet, path, "", "Accept", "application/xml")
		assertStatus(t, w, http.StatusOK)
		var list noteList
		if err := xml.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode xml list from %s: %v (%s)", path, err, w.Body.String())
		}
		if len(list.Items) != 2 || list.Items[0].Title != "xml" || list.Items[1].Title != "second" {
			t.Fatalf("unexpected list from %s: %+v", path, list.Items)
		}
		if id, ok := list.Items[1].GetID(); !ok || id != 2 {
			t.Fatalf("expected id 2 in %s, got %+v", path, list.Items[1])
		}
	}
}

func TestEmptyXMLList(t *testing.T) {
	r := newTestRouter(newFakeRepo())
	w := doRequest(r, http.MethodGet, "/notes", "", "Accept", "application/xml")
	assertStatus(t, w, http.StatusOK)
	if body := w.Body.String(); body != "<list></list>" {
		t.Fatalf("unexpected empty list %q", body)
	}
}

func TestCollectionRoutesUseGroupPath(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	assertStatus(t, doRequest(r, http.MethodPost, "/notes", `{"title":"a"}`), http.StatusCreated)
	assertStatus(t, doRequest(r, http.MethodGet, "/notes", ""), http.StatusOK)
	assertStatus(t, doRequest(r, http.MethodPut, "/notes", `{"id":1,"title":"b"}`), http.StatusOK)

	w := doRequest(r, http.MethodGet, "/notes/", "")
	if w.Code != http.StatusMovedPermanently || w.Header().Get("Location") != "/notes" {
		t.Fatalf("expected a redirect to /notes, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("edit: %w", repository.ErrNotFound), http.StatusNotFound},
		{"invalid id", ErrInvalidID, http.StatusBadRequest},
		{"invalid range", repository.ErrInvalidRange, http.StatusBadRequest},
		{"missing id", repository.ErrMissingID, http.StatusBadRequest},
		{"id assigned", repository.ErrIDAssigned, http.StatusBadRequest},
		{"duplicate", &repository.StorageError{Op: "create", Kind: database.DuplicateKeyErr, Err: errors.New("dup")}, http.StatusConflict},
		{"not null", &repository.StorageError{Op: "edit", Kind: database.NotNullViolationErr, Err: errors.New("null")}, http.StatusConflict},
		{"no table", &repository.StorageError{Op: "find", Kind: database.NoTableErr, Err: errors.New("no table")}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFor(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	for raw, want := range map[string]int64{"0": 0, "17": 17, "-3": -3, "+4": 4} {
		got, err := ParseID(raw)
		if err != nil || got != want {
			t.Fatalf("ParseID(%q) = %d, %v", raw, got, err)
		}
	}
	for _, raw := range []string{"", "abc", "1e3", " 1", "0x10"} {
		if _, err := ParseID(raw); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ParseID(%q) expected ErrInvalidID, got %v", raw, err)
		}
	}
}
