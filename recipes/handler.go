// Package recipes, HTTP handlers for the catalogue endpoints.
package recipes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/mealplanner-go/auth"
)

// RecipeHandler handles HTTP requests for the recipe catalogue.
type RecipeHandler struct {
	service *RecipeService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service *RecipeService) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// RegisterRoutes registers the catalogue routes on a sub-router; the mount
// point (e.g. /api/recipes) is decided by the caller.
func (h *RecipeHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.listRecipes)
	router.Get("/{slug}", h.getRecipe)
}

// listRecipes godoc
// @Summary List recipes
// @Description Returns the full recipe catalogue.
// @Tags Recipes
// @Produce json
// @Success 200 {array} recipes.Recipe
// @Router /api/recipes [get]
func (h *RecipeHandler) listRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRecipes(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, list)
}

// getRecipe godoc
// @Summary Get one recipe
// @Description Returns a single recipe by its slug.
// @Tags Recipes
// @Produce json
// @Param slug path string true "Recipe slug"
// @Success 200 {object} recipes.Recipe
// @Failure 404 {object} apperror.ErrorResponse "Not Found"
// @Router /api/recipes/{slug} [get]
func (h *RecipeHandler) getRecipe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	recipe, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, recipe)
}

// HandleListIntolerances godoc
// @Summary List intolerances
// @Description Returns the food-intolerance reference list.
// @Tags Recipes
// @Produce json
// @Success 200 {array} recipes.Intolerance
// @Router /api/intolerances [get]
func (h *RecipeHandler) HandleListIntolerances() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ListIntolerances(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}
