// Package validation, middleware form of the gate. The middleware decodes the
// request body exactly once, validates it against the named schema, and stores
// the normalized payload in the request context for the handler. On failure it
// answers with the standard `{message, url, statusCode}` envelope and the
// request never reaches the handler.
package validation

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/user/mealplanner-go/apperror"
)

// contextKey is a private type for context keys, preventing collisions with
// values stored by other packages.
type contextKey string

const payloadContextKey contextKey = "validated_payload"

// Middleware returns a chi-compatible middleware validating request bodies
// against the named schema.
func Middleware(gate *Gate, schemaName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				writeError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), err))
				return
			}
			defer r.Body.Close()

			normalized, err := gate.Validate(schemaName, payload)
			if err != nil {
				// Schema lookup failures are programming errors, not client errors.
				if _, ok := err.(*Error); !ok {
					writeError(w, r, apperror.NewInternalError("validation gate misconfigured", err))
					return
				}
				writeError(w, r, apperror.NewValidationError(err.Error(), err))
				return
			}

			ctx := context.WithValue(r.Context(), payloadContextKey, normalized)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PayloadFromContext returns the normalized payload stored by the middleware.
func PayloadFromContext(ctx context.Context) (map[string]interface{}, bool) {
	payload, ok := ctx.Value(payloadContextKey).(map[string]interface{})
	return payload, ok
}

// Bind maps the normalized payload from the context onto a DTO struct. The
// round trip through JSON reuses the struct's existing json tags instead of
// introducing a second field-mapping convention.
func Bind(ctx context.Context, dst interface{}) error {
	payload, ok := PayloadFromContext(ctx)
	if !ok {
		return apperror.NewInternalError("no validated payload in context", nil)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// writeError emits the standard error envelope. A local copy of the response
// helper is kept here because the auth package (which hosts the shared one)
// itself depends on this package.
func writeError(w http.ResponseWriter, r *http.Request, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse(r.URL.Path)); err != nil {
		http.Error(w, `{"message":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
