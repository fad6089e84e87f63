// Package recipes, catalogue queries. The service owns all SQL touching the
// recipe and intolerance tables; the plan generator consumes it through
// ListCompatible.
package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/mealplanner-go/apperror"
)

// RecipeService provides read access to the recipe catalogue.
type RecipeService struct {
	db *pgxpool.Pool
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(db *pgxpool.Pool) *RecipeService {
	return &RecipeService{db: db}
}

// ListRecipes returns the whole catalogue.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]Recipe, error) {
	query := `SELECT id, name, slug, type, COALESCE(description, '') FROM recipe ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list recipes", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// GetBySlug returns one recipe by its URL slug.
func (s *RecipeService) GetBySlug(ctx context.Context, slug string) (*Recipe, error) {
	var recipe Recipe
	query := `SELECT id, name, slug, type, COALESCE(description, '') FROM recipe WHERE slug = $1`
	err := s.db.QueryRow(ctx, query, slug).Scan(&recipe.ID, &recipe.Name, &recipe.Slug, &recipe.Slot, &recipe.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("recipe '%s' not found", slug), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get recipe", err)
	}
	return &recipe, nil
}

// ListCompatible returns the recipes a user can be served: everything not
// linked to one of the user's declared intolerances. Used by the plan
// generator, so the ordering is fixed to keep generation deterministic for
// unchanged data.
func (s *RecipeService) ListCompatible(ctx context.Context, userID int) ([]Recipe, error) {
	query := `
		SELECT r.id, r.name, r.slug, r.type, COALESCE(r.description, '')
		FROM recipe r
		WHERE NOT EXISTS (
			SELECT 1
			FROM recipe_intolerance ri
			JOIN user_intolerance ui ON ui.intolerance_id = ri.intolerance_id
			WHERE ri.recipe_id = r.id AND ui.user_id = $1
		)
		ORDER BY r.id
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list compatible recipes", err)
	}
	defer rows.Close()

	return scanRecipes(rows)
}

// ListIntolerances returns the intolerance reference list.
func (s *RecipeService) ListIntolerances(ctx context.Context) ([]Intolerance, error) {
	query := `SELECT id, label FROM intolerance ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list intolerances", err)
	}
	defer rows.Close()

	intolerances := []Intolerance{}
	for rows.Next() {
		var i Intolerance
		if err := rows.Scan(&i.ID, &i.Label); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan intolerance", err)
		}
		intolerances = append(intolerances, i)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read intolerances", err)
	}
	return intolerances, nil
}

// scanRecipes drains a recipe result set.
func scanRecipes(rows pgx.Rows) ([]Recipe, error) {
	recipes := []Recipe{}
	for rows.Next() {
		var r Recipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.Slot, &r.Description); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan recipe", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read recipes", err)
	}
	return recipes, nil
}
