package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kakeibo/internal/core"
	"kakeibo/internal/registry"
	"kakeibo/internal/storage"
)

type fakeExpenses struct {
	records map[int64]core.Record
	nextID  int64
	listN   int
}

func newFakeExpenses() *fakeExpenses {
	return &fakeExpenses{records: map[int64]core.Record{}, nextID: 1}
}

func (f *fakeExpenses) Create(_ context.Context, rec core.Record) (core.Record, error) {
	rec.ID = f.nextID
	f.nextID++
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeExpenses) List(context.Context) ([]core.Record, error) {
	f.listN++
	out := make([]core.Record, 0, len(f.records))
	for id := int64(1); id < f.nextID; id++ {
		if rec, ok := f.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeExpenses) Get(_ context.Context, id int64) (core.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return core.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeExpenses) Update(_ context.Context, rec core.Record) (core.Record, error) {
	if _, ok := f.records[rec.ID]; !ok {
		return core.Record{}, storage.ErrNotFound
	}
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeExpenses) Delete(_ context.Context, id int64) error {
	if _, ok := f.records[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

type fakeCategories struct {
	cats []core.Category
}

func (f *fakeCategories) List() []core.Category { return f.cats }

func (f *fakeCategories) Append(name, icon string) (core.Category, error) {
	id := registry.SlugID(name)
	if id == "" {
		return core.Category{}, registry.ErrEmptyName
	}
	for _, c := range f.cats {
		if c.ID == id {
			return core.Category{}, registry.ErrDuplicate
		}
	}
	cat := core.Category{ID: id, Name: name, Icon: icon, Custom: true}
	f.cats = append(f.cats, cat)
	return cat, nil
}

func (f *fakeCategories) Resolve(id string) (core.Category, bool) {
	for _, c := range f.cats {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func newTestServer() (*Server, *fakeExpenses) {
	exp := newFakeExpenses()
	cats := &fakeCategories{cats: []core.Category{
		{ID: "food", Name: "食費", Icon: "🍔"},
		{ID: "transport", Name: "交通費", Icon: "🚃"},
	}}
	return NewServer(":0", exp, cats, nil, Options{}), exp
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Server.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer()
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateExpenseValidationAndSuccess(t *testing.T) {
	srv, _ := newTestServer()

	// Missing amount
	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"category":"food"}`)
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Negative amount
	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"amount":-5,"category":"food"}`)
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Missing category
	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000}`)
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Bad date
	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000,"category":"food","date":"not-a-date"}`)
	if rr.Code != 422 {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Success
	rr = do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000,"category":"food","date":"2024-01-05","memo":"lunch"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == 0 || created.Amount.Cents != 100000 {
		t.Fatalf("unexpected record: %+v", created)
	}
}

func TestListExpenses(t *testing.T) {
	srv, _ := newTestServer()
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000,"category":"food","date":"2024-01-05"}`)
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":500,"category":"transport","date":"2024-02-10"}`)

	rr := do(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != 200 {
		t.Fatalf("status=%d", rr.Code)
	}
	var records []core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestGetExpense(t *testing.T) {
	srv, _ := newTestServer()
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000,"category":"food","date":"2024-01-05"}`)

	rr := do(t, srv, http.MethodGet, "/api/expenses/1", "")
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var rec core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ID != 1 || rec.Category != "food" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if rr := do(t, srv, http.MethodGet, "/api/expenses/999", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateExpense(t *testing.T) {
	srv, _ := newTestServer()
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000,"category":"food","date":"2024-01-05"}`)

	rr := do(t, srv, http.MethodPut, "/api/expenses/1", `{"amount":1200,"category":"food","date":"2024-01-05","memo":"fixed"}`)
	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var updated core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Amount.Cents != 120000 || updated.Memo != "fixed" {
		t.Fatalf("unexpected record: %+v", updated)
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/999", `{"amount":1,"category":"food"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/expenses/abc", `{"amount":1,"category":"food"}`)
	if rr.Code != 422 {
		t.Fatalf("expected 422 for bad id, got %d", rr.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	srv, _ := newTestServer()
	do(t, srv, http.MethodPost, "/api/expenses", `{"amount":1000,"category":"food"}`)

	rr := do(t, srv, http.MethodDelete, "/api/expenses/1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/expenses/1", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer()
	rr := do(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing security headers")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing X-Frame-Options")
	}
}
