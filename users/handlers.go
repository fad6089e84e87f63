// Package users, HTTP handlers for profile management. Both routes sit behind
// the auth guard, and a caller may only touch their own profile.
package users

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/auth"
	"github.com/user/mealplanner-go/validation"
)

// UserHandlers provides HTTP handlers for user profile management.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleGetProfile godoc
// @Summary Get a user's profile
// @Description Retrieves the profile of the authenticated user.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param userID path int true "User ID"
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - profile belongs to another user"
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/users/{userID} [get]
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r)
		if !ok {
			return
		}

		profile, err := h.service.GetProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateProfile godoc
// @Summary Update a user's profile
// @Description Applies a partial update to the nutrition profile (weight, height, intolerances). The BMI is recomputed server-side.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path int true "User ID"
// @Param profileBody body UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input data"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - profile belongs to another user"
// @Router /api/users/{userID} [patch]
func (h *UserHandlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r)
		if !ok {
			return
		}

		var req UpdateProfileRequest
		if err := validation.Bind(r.Context(), &req); err != nil {
			auth.WriteError(w, r, apperror.NewInternalError("validated payload missing from context", err))
			return
		}

		if req.Weight == nil && req.Height == nil && req.Intolerances == nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("no fields provided for update", nil))
			return
		}

		profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// authorizedUserID parses the userID path parameter and checks it against the
// authenticated identity. Writes the error response itself on failure.
func authorizedUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("identity not found in context", nil))
		return 0, false
	}

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("userID must be an integer", err))
		return 0, false
	}

	if userID != identity.UserID {
		auth.WriteError(w, r, apperror.NewUnauthorizedError("cannot access another user's profile", nil))
		return 0, false
	}

	return userID, true
}
