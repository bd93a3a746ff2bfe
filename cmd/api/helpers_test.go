package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"partsfit/internal/auth"
	"partsfit/internal/cache"
	"partsfit/internal/domain/catalog"
	"partsfit/internal/domain/storage"
	"partsfit/internal/fitment"
)

type fakeFitments struct {
	catalog.FitmentStore
	records []catalog.FitmentDetail
	calls   int
}

func (f *fakeFitments) ListFitmentCandidates(_ context.Context, q catalog.CandidateQuery) ([]catalog.FitmentDetail, error) {
	f.calls++
	var out []catalog.FitmentDetail
	for _, d := range f.records {
		if d.Record.YearStart <= q.YearTo && d.Record.YearEnd >= q.YearFrom {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeCategories struct {
	catalog.CategoryStore
	bySlug   map[string]*catalog.Category
	children map[int64][]*catalog.Category
}

func (f *fakeCategories) GetCategoryBySlug(_ context.Context, slug string) (*catalog.Category, error) {
	c, ok := f.bySlug[slug]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategories) ListChildCategories(_ context.Context, parentID int64) ([]*catalog.Category, error) {
	return f.children[parentID], nil
}

type fakeAdmins struct {
	catalog.AdminStore
	admins map[int64]*catalog.Admin
}

func (f *fakeAdmins) GetAdminByID(_ context.Context, id int64) (*catalog.Admin, error) {
	a, ok := f.admins[id]
	if !ok {
		return nil, catalog.ErrAdminNotFound
	}
	return a, nil
}

func (f *fakeAdmins) GetAdminByUsername(_ context.Context, username string) (*catalog.Admin, error) {
	for _, a := range f.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, catalog.ErrAdminNotFound
}

func newTestApplication(t *testing.T, store *storage.Container) *application {
	t.Helper()

	logger := zap.NewNop().Sugar()
	return &application{
		config:        config{env: "test"},
		store:         store,
		logger:        logger,
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh-secret", "partsfit", "partsfit"),
		cache:         cache.New(nil, 0, logger),
		matcher:       fitment.NewMatcher(store.Fitments),
	}
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return env
}

func checkResponseCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected the response code to be %d and we got %d", expected, actual)
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
