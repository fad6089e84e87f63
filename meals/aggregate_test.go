package meals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(n int) *int {
	return &n
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateEmptyInput(t *testing.T) {
	got := Aggregate(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Aggregate([]RawMealAssignment{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateOrdersWithinDayBySlot(t *testing.T) {
	rows := []RawMealAssignment{
		{RecipeID: 1, Name: "dinner", Slot: slot(2), Date: day(2026, 8, 3)},
		{RecipeID: 2, Name: "breakfast-a", Slot: slot(0), Date: day(2026, 8, 3)},
		{RecipeID: 3, Name: "lunch", Slot: slot(1), Date: day(2026, 8, 3)},
		{RecipeID: 4, Name: "breakfast-b", Slot: slot(0), Date: day(2026, 8, 3)},
	}

	got := Aggregate(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "2026-08-03", got[0].Date)

	ids := make([]int, 0, len(got[0].RecipesOfUser))
	for _, e := range got[0].RecipesOfUser {
		ids = append(ids, e.RecipeID)
	}
	// Equal ordinals keep their storage order (2 before 4).
	assert.Equal(t, []int{2, 4, 3, 1}, ids)
}

func TestAggregateSortsDaysAscending(t *testing.T) {
	rows := []RawMealAssignment{
		{RecipeID: 1, Slot: slot(0), Date: day(2026, 8, 5)},
		{RecipeID: 2, Slot: slot(0), Date: day(2026, 8, 1)},
		{RecipeID: 3, Slot: slot(0), Date: day(2026, 8, 3)},
	}

	got := Aggregate(rows)
	require.Len(t, got, 3)
	assert.Equal(t, "2026-08-01", got[0].Date)
	assert.Equal(t, "2026-08-03", got[1].Date)
	assert.Equal(t, "2026-08-05", got[2].Date)
}

func TestAggregateGroupsByCalendarDateNotTimestamp(t *testing.T) {
	morning := time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 3, 20, 30, 0, 0, time.UTC)

	got := Aggregate([]RawMealAssignment{
		{RecipeID: 1, Slot: slot(0), Date: morning},
		{RecipeID: 2, Slot: slot(2), Date: evening},
	})

	require.Len(t, got, 1)
	assert.Len(t, got[0].RecipesOfUser, 2)
}

func TestAggregateMissingSlotSortsFirst(t *testing.T) {
	negative := -1
	rows := []RawMealAssignment{
		{RecipeID: 1, Slot: slot(3), Date: day(2026, 8, 3)},
		{RecipeID: 2, Slot: nil, Date: day(2026, 8, 3)},
		{RecipeID: 3, Slot: slot(1), Date: day(2026, 8, 3)},
		{RecipeID: 4, Slot: &negative, Date: day(2026, 8, 3)},
	}

	got := Aggregate(rows)
	require.Len(t, got, 1)

	ids := make([]int, 0, 4)
	for _, e := range got[0].RecipesOfUser {
		ids = append(ids, e.RecipeID)
	}
	// nil and negative both count as ordinal 0 and stay in storage order.
	assert.Equal(t, []int{2, 4, 3, 1}, ids)
}

func TestAggregateIsIdempotent(t *testing.T) {
	rows := []RawMealAssignment{
		{RecipeID: 1, Slot: slot(2), Date: day(2026, 8, 4)},
		{RecipeID: 2, Slot: slot(0), Date: day(2026, 8, 2)},
		{RecipeID: 3, Slot: nil, Date: day(2026, 8, 4)},
	}

	first := Aggregate(rows)
	second := Aggregate(rows)
	assert.Equal(t, first, second)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	rows := []RawMealAssignment{
		{RecipeID: 1, Slot: slot(2), Date: day(2026, 8, 3)},
		{RecipeID: 2, Slot: slot(0), Date: day(2026, 8, 3)},
	}
	original := make([]RawMealAssignment, len(rows))
	copy(original, rows)

	Aggregate(rows)

	assert.Equal(t, original, rows)
}
