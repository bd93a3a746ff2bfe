package main

import (
	"net/http"
	"strings"
	"testing"

	"partsfit/internal/domain/catalog"
	"partsfit/internal/domain/storage"
)

func newAdmins(t *testing.T) *fakeAdmins {
	t.Helper()

	staff := &catalog.Admin{ID: 1, Username: "admin", Email: "admin@example.com", IsStaff: true}
	if err := staff.Password.Set("correct-horse"); err != nil {
		t.Fatal(err)
	}
	clerk := &catalog.Admin{ID: 2, Username: "clerk"}
	if err := clerk.Password.Set("correct-horse"); err != nil {
		t.Fatal(err)
	}
	return &fakeAdmins{admins: map[int64]*catalog.Admin{1: staff, 2: clerk}}
}

func TestLoginHandler(t *testing.T) {
	app := newTestApplication(t, &storage.Container{Admins: newAdmins(t)})
	mux := app.mount()

	t.Run("should issue tokens and cookies", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/v1/auth/login", loginPayload{Username: "admin", Password: "correct-horse"})
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusOK, rr.Code)
		if !strings.Contains(rr.Body.String(), `"access":"`) {
			t.Errorf("body = %s", rr.Body.String())
		}

		names := map[string]bool{}
		for _, c := range rr.Result().Cookies() {
			names[c.Name] = c.HttpOnly
		}
		if !names[accessCookie] || !names[refreshCookie] {
			t.Errorf("cookies = %v", names)
		}
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/v1/auth/login", loginPayload{Username: "admin", Password: "nope"})
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("should forbid non-staff accounts", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/v1/auth/login", loginPayload{Username: "clerk", Password: "correct-horse"})
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusForbidden, rr.Code)
	})
}

func TestRefreshWithoutToken(t *testing.T) {
	app := newTestApplication(t, &storage.Container{Admins: newAdmins(t)})

	req, _ := http.NewRequest(http.MethodPost, "/v1/auth/refresh", nil)
	rr := executeRequest(req, app.mount())

	checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	if env := decodeError(t, rr); env.Message != "No refresh cookie" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	app := newTestApplication(t, &storage.Container{Admins: newAdmins(t)})
	pair, err := app.authenticator.GenerateTokens(1, "staff")
	if err != nil {
		t.Fatal(err)
	}

	req := jsonRequest(t, http.MethodPost, "/v1/auth/refresh", refreshPayload{Refresh: pair.Refresh})
	rr := executeRequest(req, app.mount())
	checkResponseCode(t, http.StatusOK, rr.Code)

	// an access token is not a refresh token
	req = jsonRequest(t, http.MethodPost, "/v1/auth/refresh", refreshPayload{Refresh: pair.Access})
	rr = executeRequest(req, app.mount())
	checkResponseCode(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminAuthMiddleware(t *testing.T) {
	app := newTestApplication(t, &storage.Container{Admins: newAdmins(t)})
	mux := app.mount()

	token := func(id int64) string {
		pair, err := app.authenticator.GenerateTokens(id, "staff")
		if err != nil {
			t.Fatal(err)
		}
		return pair.Access
	}

	t.Run("should not allow requests without a token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("should reject a garbage token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("should forbid non-staff admins", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token(2))
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusForbidden, rr.Code)
	})

	t.Run("should accept the access cookie", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: token(1)})
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusOK, rr.Code)
		if !strings.Contains(rr.Body.String(), `"username":"admin"`) {
			t.Errorf("body = %s", rr.Body.String())
		}
	})

	t.Run("should guard admin routes", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/v1/admin/categories", map[string]string{"name": "Brakes"})
		rr := executeRequest(req, mux)

		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestLogoutClearsCookies(t *testing.T) {
	app := newTestApplication(t, &storage.Container{Admins: newAdmins(t)})

	req, _ := http.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	rr := executeRequest(req, app.mount())

	checkResponseCode(t, http.StatusOK, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s not expired: %d", c.Name, c.MaxAge)
		}
	}
	if !strings.Contains(rr.Body.String(), "Logged out") {
		t.Errorf("body = %s", rr.Body.String())
	}
}
