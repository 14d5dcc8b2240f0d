package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestResolveRateTier(t *testing.T) {
	t.Run("Auth endpoints get the strict tier", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		limit, burst, tier := resolveRateTier(r)

		assert.Equal(t, limitStrict, limit)
		assert.Equal(t, burstStrict, burst)
		assert.Equal(t, "strict", tier)
	})

	t.Run("Everything else gets the general tier", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		limit, burst, tier := resolveRateTier(r)

		assert.Equal(t, limitGeneral, limit)
		assert.Equal(t, burstGeneral, burst)
		assert.Equal(t, "general", tier)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("Requests beyond the burst are rejected", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		handler := RateLimitMiddleware(next)

		var last int
		for i := 0; i < burstStrict+1; i++ {
			r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			r.RemoteAddr = "203.0.113.7:1234"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			last = w.Code
		}

		assert.Equal(t, http.StatusTooManyRequests, last)
	})

	t.Run("Separate identities have separate quotas", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		handler := RateLimitMiddleware(next)

		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "203.0.113.8:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetVisitor(t *testing.T) {
	a := getVisitor("test:visitor:a", rate.Limit(1), 1)
	b := getVisitor("test:visitor:a", rate.Limit(1), 1)
	c := getVisitor("test:visitor:b", rate.Limit(1), 1)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
