// Package recipes serves the reference data the planner draws from: the
// recipe catalogue and the intolerance list. Both are read-only from the API's
// point of view; they are maintained through seeding, not through requests.
package recipes

// Recipe is one catalogue entry. The nullable `type` code is the meal slot
// the recipe is intended for (breakfast, lunch, dinner, snack); older entries
// carry no code.
type Recipe struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Slot        *int   `json:"type"`
	Description string `json:"description,omitempty"`
}

// Intolerance is one entry of the food-intolerance reference list users pick
// from when filling their profile.
type Intolerance struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}
