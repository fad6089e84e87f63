// Package auth, HTTP handlers for the authentication endpoints. Handlers
// decode the validated payload, delegate to the AuthService, and translate
// its results into HTTP responses. The writeJSON/WriteError helpers here are
// shared by the other feature packages as well.
package auth

import (
	"encoding/json"
	"net/http"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/validation"
)

// Handlers wraps the AuthService to provide HTTP handlers.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleSignup godoc
// @Summary User registration
// @Description Registers a new user account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param signupBody body auth.SignupRequest true "User registration details"
// @Success 201 {object} auth.User "User created successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - email already registered"
// @Failure 429 {object} apperror.ErrorResponse "Too Many Requests - signup quota exhausted"
// @Router /api/users/signup [post]
func (h *Handlers) HandleSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The body was decoded, normalized and checked by the validation gate
		// before this handler ran; Bind just maps it onto the DTO.
		var req SignupRequest
		if err := validation.Bind(r.Context(), &req); err != nil {
			WriteError(w, r, apperror.NewInternalError("validated payload missing from context", err))
			return
		}

		user, err := h.service.Signup(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary User login
// @Description Logs in an existing user and returns access and refresh tokens.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "User login credentials"
// @Success 200 {object} auth.TokenResponse "Login successful, tokens provided"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input or missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid credentials"
// @Failure 429 {object} apperror.ErrorResponse "Too Many Requests - login quota exhausted"
// @Router /api/users/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := validation.Bind(r.Context(), &req); err != nil {
			WriteError(w, r, apperror.NewInternalError("validated payload missing from context", err))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRefreshToken godoc
// @Summary Refresh access token
// @Description Provides a new access token using a valid refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshTokenRequest true "Refresh token details"
// @Success 200 {object} auth.TokenResponse "Tokens refreshed successfully"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - missing refresh token"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or expired refresh token"
// @Router /api/users/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.RefreshToken == "" {
			WriteError(w, r, apperror.NewBadRequestError("refresh_token is required", nil))
			return
		}

		resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// writeJSON serializes `data` to JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil { // Avoid writing "null" when no body is intended
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"message":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteJSON exposes the JSON response helper to the other feature packages,
// so every success response is encoded the same way.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data)
}

// WriteError converts any error into the standardized error envelope.
// Errors that are not already an *apperror.AppError are wrapped as a generic
// internal error so no raw detail leaks to the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	writeJSON(w, appErr.StatusCode(), appErr.ToResponse(r.URL.Path))
}
