package cache

import (
	"bytes"
	"net/http"
)

// Middleware serves cached GET responses for namespace and stores fresh 200
// responses. Query order does not matter: keys use the canonical encoding.
func (s *Store) Middleware(namespace string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.Enabled() || r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := Key(namespace, r.Method, r.URL.Path, r.URL.Query().Encode())
			if body, ok := s.Get(r.Context(), key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.status == http.StatusOK && rec.body.Len() > 0 {
				s.Set(r.Context(), key, rec.body.Bytes())
			}
		})
	}
}

// recorder tees the response body so it can be cached after the handler
// returns.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
