package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shanmukhasaireddy13/code-chef-solutions-sub000/internal/model"
)

var ErrSolutionNotFound = errors.New("solution not found")

func (r *Repository) GetSolution(ctx context.Context, id uuid.UUID) (*model.Solution, error) {
	var solution model.Solution
	err := r.db.GetContext(ctx, &solution, "SELECT * FROM solutions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSolutionNotFound
		}
		return nil, err
	}
	return &solution, nil
}

func (r *Repository) GetSolutionByProblemID(ctx context.Context, problemID string) (*model.Solution, error) {
	var solution model.Solution
	err := r.db.GetContext(ctx, &solution, "SELECT * FROM solutions WHERE problem_id = $1", problemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSolutionNotFound
		}
		return nil, err
	}
	return &solution, nil
}

// GetSolutionsByProblemIDs resolves catalog identifiers in one query. Callers
// detect missing entries by comparing result length against input length.
func (r *Repository) GetSolutionsByProblemIDs(ctx context.Context, problemIDs []string) ([]model.Solution, error) {
	if len(problemIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM solutions WHERE problem_id IN (?)", problemIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var solutions []model.Solution
	if err := r.db.SelectContext(ctx, &solutions, query, args...); err != nil {
		return nil, err
	}
	return solutions, nil
}

func (r *Repository) ListSolutions(ctx context.Context, limit, offset int) ([]model.Solution, error) {
	var solutions []model.Solution
	err := r.db.SelectContext(ctx, &solutions, `
		SELECT * FROM solutions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	return solutions, err
}

func (r *Repository) CreateSolution(ctx context.Context, solution *model.Solution) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO solutions (id, problem_id, title, price, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		solution.ID, solution.ProblemID, solution.Title, solution.Price, solution.Content,
	).Scan(&solution.CreatedAt)
}
