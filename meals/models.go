// Package meals produces and aggregates per-day meal plans. This file defines
// the data shapes flowing through the aggregator.
package meals

import "time"

// Meal slot ordinals. A day's recipes are ordered by this code; recipes in
// older rows may carry no code at all.
const (
	SlotBreakfast = 0
	SlotLunch     = 1
	SlotDinner    = 2
	SlotSnack     = 3
)

// slotsPerDay is how many recipes a generated day contains, one per slot.
const slotsPerDay = 4

// RawMealAssignment is one recipe assigned to one user on one date, exactly as
// storage returns it. The aggregator treats these rows as read-only input.
type RawMealAssignment struct {
	RecipeID int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	// Slot is the meal-slot type code. It is nullable in storage, so it is a
	// pointer here; see slotOrdinal for how missing values sort.
	Slot *int `json:"type"`
	// Date is the calendar day of the assignment. Omitted from the per-recipe
	// JSON because the enclosing DayPlan already carries it.
	Date time.Time `json:"-"`
}

// slotOrdinal returns the slot code used for ordering. Missing or malformed
// (negative) codes sort first rather than failing aggregation.
func (a RawMealAssignment) slotOrdinal() int {
	if a.Slot == nil || *a.Slot < 0 {
		return SlotBreakfast
	}
	return *a.Slot
}

// DayPlan is one calendar date with its recipes ordered by meal slot.
// The `recipesofuser` field name is part of the client contract.
type DayPlan struct {
	Date          string              `json:"date"`
	RecipesOfUser []RawMealAssignment `json:"recipesofuser"`
}

// PlanResult is the ordered sequence of day plans, ascending by date. It
// covers exactly the dates present in the raw input; dates with no
// assignments do not appear.
type PlanResult []DayPlan

// DateRange optionally bounds a plan fetch, inclusive of From and exclusive
// of To.
type DateRange struct {
	From time.Time
	To   time.Time
}

// dateKey is the canonical per-day grouping key: the calendar date, never the
// timestamp.
const dateKeyLayout = "2006-01-02"
