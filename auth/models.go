// Package auth handles authentication: signup, login, token issuance and
// verification. This file defines the user entity as stored in the database
// and used by the business logic.
package auth

import "time"

// User represents an account in the system.
// The `json:"-"` tag on HashedPassword keeps the hash out of every API
// response that serializes a User.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
