package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("From cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})

		assert.Equal(t, "cookie-token", ExtractAccessToken(r))
	})

	t.Run("From bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "header-token", ExtractAccessToken(r))
	})

	t.Run("Cookie wins over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")

		assert.Equal(t, "cookie-token", ExtractAccessToken(r))
	})

	t.Run("Missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Equal(t, "", ExtractAccessToken(r))
	})

	t.Run("Non-bearer header ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		assert.Equal(t, "", ExtractAccessToken(r))
	})
}
