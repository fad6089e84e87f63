// Package meals, HTTP handlers for the plan endpoints. Both routes sit behind
// the auth guard; a caller may only read or regenerate their own plan.
package meals

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/auth"
	"github.com/user/mealplanner-go/validation"
)

// NewMealsRequest is the payload for plan regeneration, validated against the
// newmeals schema before the handler runs.
type NewMealsRequest struct {
	StartDate time.Time `json:"start_date"`
}

// MealHandlers provides HTTP handlers for meal plans.
type MealHandlers struct {
	service *MealService
}

// NewMealHandlers creates new MealHandlers.
func NewMealHandlers(service *MealService) *MealHandlers {
	return &MealHandlers{service: service}
}

// HandleGetPlan godoc
// @Summary Get a user's meal plan
// @Description Returns the authenticated user's plan as an ordered array of day plans. Accepts optional from/to date bounds (YYYY-MM-DD).
// @Tags Meals
// @Produce json
// @Security BearerAuth
// @Param userID path int true "User ID"
// @Param from query string false "Lower date bound (inclusive)"
// @Param to query string false "Upper date bound (exclusive)"
// @Success 200 {array} meals.DayPlan
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - plan belongs to another user"
// @Router /api/meals/{userID} [get]
func (h *MealHandlers) HandleGetPlan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r)
		if !ok {
			return
		}

		rng, err := rangeFromQuery(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		plan, err := h.service.GetPlan(r.Context(), userID, rng)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, plan)
	}
}

// HandleGenerateWeek godoc
// @Summary Generate a new week of meals
// @Description Replaces the week starting at start_date with a freshly generated plan and returns it.
// @Tags Meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path int true "User ID"
// @Param newMealsBody body meals.NewMealsRequest true "Week anchor date"
// @Success 200 {array} meals.DayPlan
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - invalid start_date"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} apperror.ErrorResponse "Forbidden - plan belongs to another user"
// @Router /api/meals/{userID}/postnewmeals [post]
func (h *MealHandlers) HandleGenerateWeek() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authorizedUserID(w, r)
		if !ok {
			return
		}

		var req NewMealsRequest
		if err := validation.Bind(r.Context(), &req); err != nil {
			auth.WriteError(w, r, apperror.NewInternalError("validated payload missing from context", err))
			return
		}

		plan, err := h.service.GenerateWeek(r.Context(), userID, req.StartDate)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, plan)
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
		auth.WriteError(w, r, apperror.NewUnauthorizedError("cannot access another user's meal plan", nil))
		return 0, false
	}

	return userID, true
}

// rangeFromQuery builds an optional DateRange from from/to query parameters.
func rangeFromQuery(r *http.Request) (*DateRange, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" && toStr == "" {
		return nil, nil
	}

	from, err := time.Parse(dateKeyLayout, fromStr)
	if err != nil {
		return nil, apperror.NewBadRequestError("from must be a YYYY-MM-DD date", err)
	}
	to, err := time.Parse(dateKeyLayout, toStr)
	if err != nil {
		return nil, apperror.NewBadRequestError("to must be a YYYY-MM-DD date", err)
	}
	if !from.Before(to) {
		return nil, apperror.NewBadRequestError("from must be before to", nil)
	}

	return &DateRange{From: from, To: to}, nil
}
