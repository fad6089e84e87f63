// Package meals, the plan service. Fetching folds raw assignment rows through
// Aggregate; generation writes a fresh week of assignments drawn from the
// recipes compatible with the user's intolerances. Storage failures are
// surfaced to the caller as-is; the service never retries.
package meals

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/planfeed"
	"github.com/user/mealplanner-go/recipes"
)

// generatedDays is how many days one postnewmeals call plans ahead.
const generatedDays = 7

// MealService produces and retrieves per-user meal plans.
type MealService struct {
	db      *pgxpool.Pool
	catalog *recipes.RecipeService
	feed    *planfeed.Broadcaster
}

// NewMealService creates a new MealService.
func NewMealService(db *pgxpool.Pool, catalog *recipes.RecipeService, feed *planfeed.Broadcaster) *MealService {
	return &MealService{db: db, catalog: catalog, feed: feed}
}

// GetPlan returns the user's aggregated plan, optionally bounded by a date
// range. An empty fetch yields an empty plan, not an error.
func (s *MealService) GetPlan(ctx context.Context, userID int, rng *DateRange) (PlanResult, error) {
	rows, err := s.fetchAssignments(ctx, userID, rng)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows), nil
}

// GenerateWeek replaces the user's assignments for the week starting at
// startDate with a fresh plan of one recipe per slot per day, drawn from the
// recipes compatible with the user's intolerances, then returns the updated
// plan for that week. Connected dashboards are notified through the plan feed.
func (s *MealService) GenerateWeek(ctx context.Context, userID int, startDate time.Time) (PlanResult, error) {
	candidates, err := s.catalog.ListCompatible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperror.NewConflictError("no recipes are compatible with the user's intolerances", nil)
	}

	bySlot := groupBySlot(candidates)
	start := truncateToDay(startDate)
	end := start.AddDate(0, 0, generatedDays)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin plan transaction", err)
	}
	// Rollback is a no-op once the transaction committed.
	defer tx.Rollback(ctx)

	// Regenerating a week replaces it wholesale; leaving stale rows behind
	// would duplicate slots in the aggregated plan.
	if _, err := tx.Exec(ctx,
		`DELETE FROM user_recipe WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, start, end,
	); err != nil {
		return nil, apperror.NewDatabaseError("failed to clear previous assignments", err)
	}

	for day := 0; day < generatedDays; day++ {
		date := start.AddDate(0, 0, day)
		for slot := 0; slot < slotsPerDay; slot++ {
			recipe := pickRecipe(bySlot, candidates, slot, day)
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_recipe (user_id, recipe_id, date) VALUES ($1, $2, $3)`,
				userID, recipe.ID, date,
			); err != nil {
				return nil, apperror.NewDatabaseError("failed to insert assignment", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit plan transaction", err)
	}

	s.feed.PublishToUser(userID, planfeed.Event{
		Name: planfeed.EventPlanUpdated,
		Data: map[string]string{
			"start_date": start.Format(dateKeyLayout),
			"end_date":   end.Format(dateKeyLayout),
		},
	})

	return s.GetPlan(ctx, userID, &DateRange{From: start, To: end})
}

// fetchAssignments reads the raw rows for one user. Rows come back in
// insertion order, which is the tie-break order the aggregation preserves.
func (s *MealService) fetchAssignments(ctx context.Context, userID int, rng *DateRange) ([]RawMealAssignment, error) {
	query := `
		SELECT r.id, r.name, r.slug, r.type, ur.date
		FROM user_recipe ur
		JOIN recipe r ON r.id = ur.recipe_id
		WHERE ur.user_id = $1`
	args := []interface{}{userID}
	if rng != nil {
		query += fmt.Sprintf(" AND ur.date >= $%d AND ur.date < $%d", len(args)+1, len(args)+2)
		args = append(args, rng.From, rng.To)
	}
	query += " ORDER BY ur.id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to fetch meal assignments", err)
	}
	defer rows.Close()

	assignments := []RawMealAssignment{}
	for rows.Next() {
		var a RawMealAssignment
		if err := rows.Scan(&a.RecipeID, &a.Name, &a.Slug, &a.Slot, &a.Date); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan meal assignment", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read meal assignments", err)
	}
	return assignments, nil
}

// groupBySlot indexes candidate recipes by their slot code. Recipes without a
// code are usable anywhere and stay out of the index; pickRecipe falls back to
// the full candidate list for slots with no dedicated recipes.
func groupBySlot(candidates []recipes.Recipe) map[int][]recipes.Recipe {
	bySlot := make(map[int][]recipes.Recipe)
	for _, r := range candidates {
		if r.Slot == nil || *r.Slot < 0 {
			continue
		}
		bySlot[*r.Slot] = append(bySlot[*r.Slot], r)
	}
	return bySlot
}

// pickRecipe selects the recipe for one (day, slot) cell, rotating through the
// slot's candidates so consecutive days vary. Selection is deterministic for
// unchanged catalogue data.
func pickRecipe(bySlot map[int][]recipes.Recipe, all []recipes.Recipe, slot, day int) recipes.Recipe {
	pool := bySlot[slot]
	if len(pool) == 0 {
		pool = all
	}
	return pool[day%len(pool)]
}

// truncateToDay drops the time-of-day component; assignments are keyed by
// calendar date.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
