package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/keyword-service/internal/model"
	"github.com/andres10976/keyword-service/internal/repository"
)

// mockKeywordStore implements keywordStore for testing.
type mockKeywordStore struct {
	listFn   func(ctx context.Context) ([]model.Keyword, error)
	createFn func(ctx context.Context, kw model.Keyword) (*model.Keyword, error)
	updateFn func(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error)
	deleteFn func(ctx context.Context, id int) error
}

func (m *mockKeywordStore) ListActive(ctx context.Context) ([]model.Keyword, error) {
	return m.listFn(ctx)
}
func (m *mockKeywordStore) Create(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
	return m.createFn(ctx, kw)
}
func (m *mockKeywordStore) Update(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error) {
	return m.updateFn(ctx, id, kw)
}
func (m *mockKeywordStore) SoftDelete(ctx context.Context, id int) error {
	return m.deleteFn(ctx, id)
}

// chiRequest creates an http.Request with chi URL params set.
func chiRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body["detail"]
}

func TestKeywordList_Success(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		listFn: func(ctx context.Context) ([]model.Keyword, error) {
			return []model.Keyword{{ID: 1, Keyword: "spam"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/keyword_list", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var keywords []model.Keyword
	if err := json.NewDecoder(rec.Body).Decode(&keywords); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(keywords) != 1 || keywords[0].Keyword != "spam" {
		t.Errorf("keywords = %+v, want one spam keyword", keywords)
	}
}

func TestKeywordList_EmptyIsArray(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		listFn: func(ctx context.Context) ([]model.Keyword, error) {
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/keyword_list", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestKeywordList_Error(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		listFn: func(ctx context.Context) ([]model.Keyword, error) {
			return nil, errors.New("disk error")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/keyword_list", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestKeywordCreate_Success(t *testing.T) {
	var got model.Keyword
	h := NewKeywordHandler(&mockKeywordStore{
		createFn: func(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
			got = kw
			return &kw, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`{"id":7,"keyword":"spam"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != (model.Keyword{ID: 7, Keyword: "spam", Deleted: false}) {
		t.Errorf("stored = %+v, want id 7 spam not deleted", got)
	}

	var kw model.Keyword
	json.NewDecoder(rec.Body).Decode(&kw)
	if kw != got {
		t.Errorf("response = %+v, want %+v", kw, got)
	}
}

func TestKeywordCreate_ZeroValuesAccepted(t *testing.T) {
	var got model.Keyword
	h := NewKeywordHandler(&mockKeywordStore{
		createFn: func(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
			got = kw
			return &kw, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`{"id":0,"keyword":"","deleted":true}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got != (model.Keyword{ID: 0, Keyword: "", Deleted: true}) {
		t.Errorf("stored = %+v", got)
	}
}

func TestKeywordCreate_MissingField(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`{"id":1}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if detail := decodeDetail(t, rec); !strings.Contains(detail, "keyword") {
		t.Errorf("detail = %q, want it to name keyword", detail)
	}
}

func TestKeywordCreate_WrongType(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`{"id":"one","keyword":"spam"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestKeywordCreate_InvalidJSON(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestKeywordCreate_Duplicate(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		createFn: func(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
			return nil, repository.ErrConflict
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`{"id":1,"keyword":"spam"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if detail := decodeDetail(t, rec); detail != msgKeywordExists {
		t.Errorf("detail = %q, want %q", detail, msgKeywordExists)
	}
}

func TestKeywordCreate_Error(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		createFn: func(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
			return nil, errors.New("disk full")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(`{"id":1,"keyword":"spam"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestKeywordUpdate_Success(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		updateFn: func(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error) {
			if id != 42 {
				t.Errorf("id = %d, want 42", id)
			}
			return &kw, nil
		},
	})

	req := chiRequest(http.MethodPut, "/keyword/42", `{"id":43,"keyword":"ham","deleted":true}`, map[string]string{"id": "42"})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var kw model.Keyword
	json.NewDecoder(rec.Body).Decode(&kw)
	if kw != (model.Keyword{ID: 43, Keyword: "ham", Deleted: true}) {
		t.Errorf("response = %+v", kw)
	}
}

func TestKeywordUpdate_NotFound(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		updateFn: func(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error) {
			return nil, repository.ErrNotFound
		},
	})

	req := chiRequest(http.MethodPut, "/keyword/9", `{"id":9,"keyword":"x"}`, map[string]string{"id": "9"})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if detail := decodeDetail(t, rec); detail != msgKeywordNotFound {
		t.Errorf("detail = %q, want %q", detail, msgKeywordNotFound)
	}
}

func TestKeywordUpdate_InvalidID(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{})

	req := chiRequest(http.MethodPut, "/keyword/abc", `{"id":1,"keyword":"x"}`, map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestKeywordUpdate_InvalidBody(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{})

	req := chiRequest(http.MethodPut, "/keyword/1", `{"keyword":"x"}`, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestKeywordDelete_Success(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		deleteFn: func(ctx context.Context, id int) error {
			if id != 42 {
				t.Errorf("id = %d, want 42", id)
			}
			return nil
		},
	})

	req := chiRequest(http.MethodDelete, "/keyword/42", "", map[string]string{"id": "42"})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["message"] != msgKeywordDeleted {
		t.Errorf("message = %q, want %q", body["message"], msgKeywordDeleted)
	}
}

func TestKeywordDelete_InvalidID(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{})

	req := chiRequest(http.MethodDelete, "/keyword/abc", "", map[string]string{"id": "abc"})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestKeywordDelete_NotFound(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		deleteFn: func(ctx context.Context, id int) error {
			return repository.ErrNotFound
		},
	})

	req := chiRequest(http.MethodDelete, "/keyword/1", "", map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestKeywordDelete_Error(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		deleteFn: func(ctx context.Context, id int) error {
			return errors.New("disk error")
		},
	})

	req := chiRequest(http.MethodDelete, "/keyword/1", "", map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

// TestKeywordRoutes_SoftDeleteScenario drives the real repository through
// the router: create, soft-delete, then resurrect via update.
func TestKeywordRoutes_SoftDeleteScenario(t *testing.T) {
	r := chi.NewRouter()
	NewKeywordHandler(repository.NewKeywordRepository(repository.NewMemory())).RegisterRoutes(r)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}
	list := func() []model.Keyword {
		t.Helper()
		rec := do(http.MethodGet, "/keyword_list", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("list status = %d", rec.Code)
		}
		var kws []model.Keyword
		if err := json.NewDecoder(rec.Body).Decode(&kws); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return kws
	}

	if rec := do(http.MethodPost, "/keyword", `{"id":1,"keyword":"spam"}`); rec.Code != http.StatusOK {
		t.Fatalf("create status = %d", rec.Code)
	}
	if kws := list(); len(kws) != 1 || kws[0].Keyword != "spam" {
		t.Fatalf("after create list = %+v", kws)
	}

	if rec := do(http.MethodPost, "/keyword", `{"id":1,"keyword":"again"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate create status = %d, want 400", rec.Code)
	}

	if rec := do(http.MethodDelete, "/keyword/1", ""); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if kws := list(); len(kws) != 0 {
		t.Fatalf("after delete list = %+v, want empty", kws)
	}

	if rec := do(http.MethodPost, "/keyword", `{"id":1,"keyword":"again"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("create over deleted id status = %d, want 400", rec.Code)
	}

	if rec := do(http.MethodPut, "/keyword/1", `{"id":1,"keyword":"spam","deleted":false}`); rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if kws := list(); len(kws) != 1 || kws[0] != (model.Keyword{ID: 1, Keyword: "spam"}) {
		t.Fatalf("after update list = %+v", kws)
	}

	if rec := do(http.MethodDelete, "/keyword/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}
	if rec := do(http.MethodPut, "/keyword/2", `{"id":2,"keyword":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", rec.Code)
	}
}

func TestKeywordCreate_CoercesLooseTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.Keyword
	}{
		{"numeric string id", `{"id":"1","keyword":"spam"}`, model.Keyword{ID: 1, Keyword: "spam"}},
		{"integral float id", `{"id":1.0,"keyword":"spam"}`, model.Keyword{ID: 1, Keyword: "spam"}},
		{"string true", `{"id":2,"keyword":"spam","deleted":"true"}`, model.Keyword{ID: 2, Keyword: "spam", Deleted: true}},
		{"yes", `{"id":3,"keyword":"spam","deleted":"yes"}`, model.Keyword{ID: 3, Keyword: "spam", Deleted: true}},
		{"numeric false", `{"id":4,"keyword":"spam","deleted":0}`, model.Keyword{ID: 4, Keyword: "spam"}},
		{"unknown field ignored", `{"id":5,"keyword":"spam","extra":[1,2]}`, model.Keyword{ID: 5, Keyword: "spam"}},
		{"trailing whitespace", "{\"id\":6,\"keyword\":\"spam\"}\n  ", model.Keyword{ID: 6, Keyword: "spam"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Keyword
			h := NewKeywordHandler(&mockKeywordStore{
				createFn: func(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
					got = kw
					return &kw, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
			}
			if got != tt.want {
				t.Errorf("stored = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKeywordCreate_RejectsUncoercibleBodies(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"word id", `{"id":"one","keyword":"spam"}`, "id: expected an integer"},
		{"fractional id", `{"id":1.5,"keyword":"spam"}`, "id: expected an integer"},
		{"null id", `{"id":null,"keyword":"spam"}`, "id: expected an integer"},
		{"numeric keyword", `{"id":1,"keyword":5}`, "keyword: expected a string"},
		{"null keyword", `{"id":1,"keyword":null}`, "keyword: expected a string"},
		{"null deleted", `{"id":1,"keyword":"spam","deleted":null}`, "deleted: expected a boolean"},
		{"bad deleted", `{"id":1,"keyword":"spam","deleted":"maybe"}`, "deleted: expected a boolean"},
		{"trailing bytes", `{"id":1,"keyword":"spam"} trailing`, "invalid request body"},
		{"second object", `{"id":1,"keyword":"spam"}{"id":2,"keyword":"ham"}`, "invalid request body"},
		{"array body", `[]`, "invalid request body"},
		{"string body", `"spam"`, "invalid request body"},
		{"null body", `null`, "id: field required; keyword: field required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewKeywordHandler(&mockKeywordStore{
				createFn: func(ctx context.Context, kw model.Keyword) (*model.Keyword, error) {
					t.Errorf("store called with %+v", kw)
					return &kw, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/keyword", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
			if detail := decodeDetail(t, rec); detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestKeywordUpdate_CoercesStringID(t *testing.T) {
	h := NewKeywordHandler(&mockKeywordStore{
		updateFn: func(ctx context.Context, id int, kw model.Keyword) (*model.Keyword, error) {
			return &kw, nil
		},
	})

	req := chiRequest(http.MethodPut, "/keyword/1", `{"id":"1","keyword":"spam","deleted":"false"}`, map[string]string{"id": "1"})
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var kw model.Keyword
	json.NewDecoder(rec.Body).Decode(&kw)
	if kw != (model.Keyword{ID: 1, Keyword: "spam"}) {
		t.Errorf("response = %+v", kw)
	}
}
