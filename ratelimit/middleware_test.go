package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Hit(context.Context, string, string, Policy) (Decision, error) {
	return Decision{}, errors.New("store unavailable")
}

func okHandler(hits *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareDeniesAfterQuota(t *testing.T) {
	limiter := New(NewMemoryStore(), Policy{
		Class:   "login",
		Quota:   5,
		Window:  15 * time.Minute,
		Message: "Too many login attempts, retry in 15 minutes",
	})

	hits := 0
	handler := Middleware(limiter, "login")(okHandler(&hits))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
		req.RemoteAddr = "10.0.0.1:51234"
		handler.ServeHTTP(rec, req)
	}

	assert.Equal(t, 5, hits)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "5", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	var body struct {
		Message    string `json:"message"`
		URL        string `json:"url"`
		StatusCode int    `json:"statusCode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many login attempts, retry in 15 minutes", body.Message)
	assert.Equal(t, "/api/users/login", body.URL)
	assert.Equal(t, http.StatusTooManyRequests, body.StatusCode)
}

func TestMiddlewareKeysByClientIP(t *testing.T) {
	limiter := New(NewMemoryStore(), Policy{
		Class: "login", Quota: 1, Window: time.Minute, Message: "too many",
	})

	hits := 0
	handler := Middleware(limiter, "login")(okHandler(&hits))

	for _, addr := range []string{"10.0.0.1:1111", "10.0.0.1:2222"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
	}

	// Same IP on a different port shares the window.
	assert.Equal(t, 1, hits)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.RemoteAddr = "10.0.0.2:3333"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, 2, hits)
}

func TestMiddlewareFailsOpenOnStoreError(t *testing.T) {
	limiter := New(failingStore{}, Policy{
		Class: "login", Quota: 1, Window: time.Minute, Message: "too many",
	})

	hits := 0
	handler := Middleware(limiter, "login")(okHandler(&hits))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 1, hits)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareSetsHeadersOnAllowedRequests(t *testing.T) {
	limiter := New(NewMemoryStore(), Policy{
		Class: "login", Quota: 5, Window: time.Minute, Message: "too many",
	})

	hits := 0
	handler := Middleware(limiter, "login")(okHandler(&hits))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "5", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("RateLimit-Reset"))
}
