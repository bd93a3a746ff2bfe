package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestKeyIsNamespacedAndStable(t *testing.T) {
	a := Key("parts", "GET", "/v1/parts", "make=honda&page=2")
	b := Key("parts", "GET", "/v1/parts", "make=honda&page=2")
	c := Key("parts", "GET", "/v1/parts", "make=honda&page=3")

	if a != b {
		t.Fatal("same request produced different keys")
	}
	if a == c {
		t.Fatal("different queries share a key")
	}
	if !strings.HasPrefix(a, "cache:parts:") || len(a) != len("cache:parts:")+64 {
		t.Fatalf("unexpected key %q", a)
	}
	if Key("products", "GET", "/v1/parts", "make=honda&page=2") == a {
		t.Fatal("namespaces collide")
	}
}

func TestDisabledStoreIsNoop(t *testing.T) {
	s := New(NewRedisClient("", "", 0), 0, zap.NewNop().Sugar())
	ctx := context.Background()

	if s.Enabled() {
		t.Fatal("store without address should be disabled")
	}
	s.Set(ctx, "k", []byte("v"))
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatal("disabled store returned a hit")
	}
	if err := s.Invalidate(ctx, "parts"); err != nil {
		t.Fatal(err)
	}
	if revoked, err := s.IsRevoked(ctx, "jti"); err != nil || revoked {
		t.Fatalf("revoked=%v err=%v", revoked, err)
	}
	if err := s.Revoke(ctx, "jti", time.Now().Add(time.Hour)); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}
}

func TestMiddlewarePassesThroughWhenDisabled(t *testing.T) {
	s := New(nil, time.Minute, zap.NewNop().Sugar())
	calls := 0
	h := s.Middleware("parts")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"ok":true}`))
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/parts", nil))
		if rr.Header().Get("X-Cache") != "" {
			t.Fatal("disabled cache should not tag responses")
		}
	}
	if calls != 2 {
		t.Fatalf("handler called %d times, want 2", calls)
	}
}

func TestRecorderTeesBody(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := &recorder{ResponseWriter: rr, status: http.StatusOK}
	rec.WriteHeader(http.StatusCreated)
	rec.Write([]byte("hello"))

	if rec.status != http.StatusCreated || rec.body.String() != "hello" || rr.Body.String() != "hello" {
		t.Fatalf("status=%d body=%q downstream=%q", rec.status, rec.body.String(), rr.Body.String())
	}
}
