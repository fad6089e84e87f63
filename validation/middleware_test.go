package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	Message    string `json:"message"`
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
}

func TestMiddlewarePassesValidPayloadToHandler(t *testing.T) {
	gate := newTestGate(t)

	var bound struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	handlerRan := false
	handler := Middleware(gate, SchemaLogin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		require.NoError(t, Bind(r.Context(), &bound))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, handlerRan)
	assert.Equal(t, "user@example.com", bound.Email)
	assert.Equal(t, "secret", bound.Password)
}

func TestMiddlewareRejectsInvalidPayload(t *testing.T) {
	gate := newTestGate(t)

	handlerRan := false
	handler := Middleware(gate, SchemaLogin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login",
		strings.NewReader(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, handlerRan, "handler must not run on a rejected payload")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "the passed object doesn't fit the required format")
	assert.Equal(t, "/api/users/login", body.URL)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
}

func TestMiddlewareRejectsMalformedJSON(t *testing.T) {
	gate := newTestGate(t)

	handler := Middleware(gate, SchemaLogin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddlewareUnregisteredSchemaIsServerError(t *testing.T) {
	gate := newTestGate(t)

	handler := Middleware(gate, "missing-schema")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMiddlewareDropsUndeclaredFieldsFromContext(t *testing.T) {
	gate := newTestGate(t)

	handler := Middleware(gate, SchemaProfile)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := PayloadFromContext(r.Context())
		require.True(t, ok)
		// Optional absent fields simply do not appear in the normalized map.
		_, hasIMC := payload["imc"]
		assert.False(t, hasIMC)
		assert.Equal(t, 72.5, payload["weight"])
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPatch, "/api/users/1",
		strings.NewReader(`{"weight":72.5}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
