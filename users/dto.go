// Package users, request/response shapes for profile management.
package users

import "time"

// ProfileResponse represents the data returned for a user profile.
// Pointer fields are null in JSON until the user has filled in that part of
// the profile.
type ProfileResponse struct {
	ID     int      `json:"id"`
	Email  string   `json:"email"`
	Weight *float64 `json:"weight,omitempty"` // kilograms
	Height *float64 `json:"height,omitempty"` // centimeters
	IMC    *int     `json:"imc,omitempty"`    // body mass index, derived from weight and height
	// Intolerances lists the ids of the user's declared food intolerances.
	Intolerances []int     `json:"intolerances"`
	CreatedAt    time.Time `json:"created_at"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left
// untouched; a non-nil Intolerances replaces the stored list wholesale.
type UpdateProfileRequest struct {
	Weight       *float64 `json:"weight,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Intolerances *[]int   `json:"intolerances,omitempty"`
}
