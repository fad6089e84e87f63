// Package auth, request/response shapes for the authentication endpoints.
// These are the payloads the validation gate checks before a handler runs;
// the field names mirror what the web client sends.
package auth

// SignupRequest represents the registration request payload.
type SignupRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"strongpassword123"`
}

// TokenResponse is returned to the client upon successful login or token refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token" example:"def50200..."`
	TokenType    string `json:"token_type" example:"Bearer"`
	// ExpiresIn is the expiration time of the access token in Unix seconds.
	ExpiresIn int64 `json:"expires_in" example:"3600"`
}

// RefreshTokenRequest is used when a client wants a new access token
// using a still-valid refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"def50200..."`
}
