package main

import (
	"net/http"
	"strings"
	"testing"

	"partsfit/internal/domain/catalog"
	"partsfit/internal/domain/storage"
)

func TestListChildCategories(t *testing.T) {
	cats := &fakeCategories{
		bySlug: map[string]*catalog.Category{
			"brakes":  {ID: 1, Name: "Brakes", Slug: "brakes"},
			"filters": {ID: 2, Name: "Filters", Slug: "filters"},
		},
		children: map[int64][]*catalog.Category{
			1: {{ID: 3, Name: "Brake Pads", Slug: "brake-pads", ParentID: int64Ptr(1)}},
		},
	}
	app := newTestApplication(t, &storage.Container{Categories: cats})
	mux := app.mount()

	t.Run("should 404 an unknown parent", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/categories/nonexistent/children", nil)
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusNotFound, rr.Code)
		env := decodeError(t, rr)
		if env.Success || env.Status != http.StatusNotFound || !strings.Contains(env.Message, "nonexistent") {
			t.Errorf("body = %+v", env)
		}
	})

	t.Run("should return an empty array for a leaf", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/categories/filters/children", nil)
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusOK, rr.Code)
		if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
			t.Errorf("body = %s", body)
		}
	})

	t.Run("should list direct children", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/categories/brakes/children", nil)
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusOK, rr.Code)
		if !strings.Contains(rr.Body.String(), `"slug":"brake-pads"`) {
			t.Errorf("body = %s", rr.Body.String())
		}
	})
}
