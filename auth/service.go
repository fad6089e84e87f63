// Package auth is responsible for authentication logic: account creation,
// credential verification and JWT issuance. Handlers stay thin; everything
// with a decision in it lives here.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/config"
)

const (
	// tokenTypeAccess is the claim value for short-lived access tokens.
	tokenTypeAccess = "access"
	// tokenTypeRefresh is the claim value for long-lived refresh tokens.
	tokenTypeRefresh = "refresh"
	// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
	pgUniqueViolation = "23505"
)

// AuthService provides authentication-related services.
// Dependencies (database pool and auth configuration) are injected via the constructor.
type AuthService struct {
	dbPool     *pgxpool.Pool
	authConfig config.AuthConfig
}

// NewAuthService creates a new AuthService.
func NewAuthService(dbPool *pgxpool.Pool, authConfig config.AuthConfig) *AuthService {
	return &AuthService{
		dbPool:     dbPool,
		authConfig: authConfig,
	}
}

// CustomClaims embeds jwt.RegisteredClaims and adds the application's own fields.
// Embedding RegisteredClaims brings the standard `exp`, `iat` and `nbf` handling.
type CustomClaims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Signup creates a new user account. The password is hashed with bcrypt and
// the email is lowercased so lookups stay case-insensitive.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:          strings.ToLower(req.Email),
		HashedPassword: string(hashedPassword),
	}

	createdUser, err := s.createUser(ctx, user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Returning a Conflict lets the handler answer 409 instead of a bare 500.
			return nil, apperror.NewConflictError("email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}
	return createdUser, nil
}

// Login authenticates a user and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Same message whether the account is missing or the password is wrong,
			// so the endpoint cannot be used to enumerate accounts.
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		log.Printf("database error during login lookup: %v", err)
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}

	return s.generateTokens(user.ID)
}

// RefreshToken validates a refresh token and issues a fresh access token.
// The refresh token itself is returned unchanged; rotation would happen here
// if a revocation list were introduced.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenResponse, error) {
	claims, err := s.validateToken(refreshTokenString, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError(fmt.Sprintf("invalid refresh token: %s", err.Error()), err)
	}

	newAccessToken, newAccessExpiresAt, err := s.generateSpecificToken(claims.UserID, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new access token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    newAccessExpiresAt.Unix(),
	}, nil
}

// generateTokens creates both access and refresh tokens for a user.
func (s *AuthService) generateTokens(userID int) (*TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.generateSpecificToken(userID, tokenTypeAccess, s.authConfig.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.generateSpecificToken(userID, tokenTypeRefresh, s.authConfig.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		// ExpiresIn refers to the access token's expiration.
		ExpiresIn: accessExpiresAt.Unix(),
	}, nil
}

// generateSpecificToken creates a JWT with the given claims, type, and duration.
func (s *AuthService) generateSpecificToken(userID int, tokenType string, duration time.Duration) (string, time.Time, error) {
	expirationTime := time.Now().Add(duration)
	claims := &CustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "mealplanner",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.authConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// validateToken parses a JWT string and checks signature, expiry and token type.
func (s *AuthService) validateToken(tokenString string, expectedTokenType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	return claims, nil
}

// --- Database helpers ---
// Direct SQL stays localized here; the rest of the package never sees a query.

func (s *AuthService) createUser(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (email, password)
              VALUES ($1, $2)
              RETURNING id, created_at`
	err := s.dbPool.QueryRow(ctx, query, user.Email, user.HashedPassword).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	query := `SELECT id, email, password, created_at FROM users WHERE email = $1`
	err := s.dbPool.QueryRow(ctx, query, strings.ToLower(email)).Scan(&user.ID, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with email '%s' not found", email), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by email", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their numeric id.
func (s *AuthService) GetUserByID(ctx context.Context, userID int) (*User, error) {
	var user User
	query := `SELECT id, email, password, created_at FROM users WHERE id = $1`
	err := s.dbPool.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Email, &user.HashedPassword, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user by id", err)
	}
	return &user, nil
}
