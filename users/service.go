// Package users contains the business logic for user profile management:
// nutrition profile reads and partial updates, including the derived body
// mass index and the intolerance list feeding plan generation.
package users

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/mealplanner-go/apperror"
)

// UserService provides methods for profile management.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetProfile retrieves a user's profile by id, including the intolerance list.
func (s *UserService) GetProfile(ctx context.Context, userID int) (*ProfileResponse, error) {
	query := `SELECT id, email, weight, height, imc, created_at FROM users WHERE id = $1`

	var profile ProfileResponse
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Weight,
		&profile.Height,
		&profile.IMC,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}

	intolerances, err := s.listIntoleranceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Intolerances = intolerances

	return &profile, nil
}

// UpdateProfile applies a partial profile update and returns the new profile.
// The body mass index is always recomputed server-side from the effective
// weight and height, never trusted from the client.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req *UpdateProfileRequest) (*ProfileResponse, error) {
	current, err := s.GetProfile(ctx, userID) // also serves as the existence check
	if err != nil {
		return nil, err
	}

	// Build the UPDATE dynamically from the provided fields.
	var setClauses []string
	var args []interface{}
	argID := 1

	if req.Weight != nil {
		setClauses = append(setClauses, fmt.Sprintf("weight = $%d", argID))
		args = append(args, *req.Weight)
		argID++
	}
	if req.Height != nil {
		setClauses = append(setClauses, fmt.Sprintf("height = $%d", argID))
		args = append(args, *req.Height)
		argID++
	}

	// Recompute the BMI whenever either component changes and both are known.
	effectiveWeight := firstNonNil(req.Weight, current.Weight)
	effectiveHeight := firstNonNil(req.Height, current.Height)
	if (req.Weight != nil || req.Height != nil) && effectiveWeight != nil && effectiveHeight != nil {
		imc := ComputeIMC(*effectiveWeight, *effectiveHeight)
		setClauses = append(setClauses, fmt.Sprintf("imc = $%d", argID))
		args = append(args, imc)
		argID++
	}

	if len(setClauses) > 0 {
		args = append(args, userID) // WHERE clause
		query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argID)
		if _, err := s.db.Exec(ctx, query, args...); err != nil {
			return nil, apperror.NewDatabaseError("failed to update user profile", err)
		}
	}

	if req.Intolerances != nil {
		if err := s.replaceIntolerances(ctx, userID, *req.Intolerances); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(ctx, userID)
}

// ComputeIMC derives the body mass index from a weight in kilograms and a
// height in centimeters, rounded to the nearest whole number.
func ComputeIMC(weightKg, heightCm float64) int {
	return int(math.Round(weightKg * 10000 / (heightCm * heightCm)))
}

// listIntoleranceIDs returns the ids of the user's declared intolerances.
func (s *UserService) listIntoleranceIDs(ctx context.Context, userID int) ([]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT intolerance_id FROM user_intolerance WHERE user_id = $1 ORDER BY intolerance_id`, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list intolerances", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan intolerance id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to read intolerances", err)
	}
	return ids, nil
}

// replaceIntolerances swaps the user's intolerance list atomically. A partial
// replacement would let plan generation see a half-updated list.
func (s *UserService) replaceIntolerances(ctx context.Context, userID int, intoleranceIDs []int) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperror.NewDatabaseError("failed to begin intolerance update", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM user_intolerance WHERE user_id = $1`, userID); err != nil {
		return apperror.NewDatabaseError("failed to clear intolerances", err)
	}
	for _, id := range intoleranceIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_intolerance (user_id, intolerance_id) VALUES ($1, $2)`, userID, id); err != nil {
			return apperror.NewDatabaseError("failed to insert intolerance", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.NewDatabaseError("failed to commit intolerance update", err)
	}
	return nil
}

// firstNonNil returns the first non-nil of two optional floats.
func firstNonNil(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}
