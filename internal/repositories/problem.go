package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// ProblemRepository persists [models.Problem] records.
type ProblemRepository struct {
	db *sql.DB
}

// NewProblemRepository creates a new [ProblemRepository] with the given database connection
func NewProblemRepository(db *sql.DB) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// Create inserts a new problem with a generated ID and sequence
func (r *ProblemRepository) Create(ctx context.Context, problem *models.Problem) error {
	problem.ID = shared.GenerateID()

	if err := problem.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		sequence, err := nextSequence(ctx, tx, "problems")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO problems (id, sequence, title, difficulty, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			problem.ID,
			sequence,
			problem.Title,
			string(problem.Difficulty),
			strings.Join(problem.Tags, ","),
			problem.CreatedAt,
			problem.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert problem: %w", err)
		}
		return nil
	})
}

// Get retrieves a problem by ID
func (r *ProblemRepository) Get(ctx context.Context, id string) (*models.Problem, error) {
	query := `
		SELECT id, title, difficulty, tags, created_at, updated_at
		FROM problems
		WHERE id = ?
	`

	problem, err := scanProblem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrProblemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query problem: %w", err)
	}
	return problem, nil
}

// List retrieves problems in insertion order, optionally filtered by difficulty
func (r *ProblemRepository) List(ctx context.Context, difficulty models.Difficulty) ([]*models.Problem, error) {
	query := `
		SELECT id, title, difficulty, tags, created_at, updated_at
		FROM problems
	`
	args := []any{}
	if difficulty != "" {
		query += " WHERE difficulty = ?"
		args = append(args, string(difficulty))
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query problems: %w", err)
	}
	defer rows.Close()

	problems := []*models.Problem{}
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan problem: %w", err)
		}
		problems = append(problems, problem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return problems, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProblem(row scanner) (*models.Problem, error) {
	var (
		problem    models.Problem
		difficulty string
		tags       string
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(&problem.ID, &problem.Title, &difficulty, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	problem.Difficulty = models.Difficulty(difficulty)
	problem.Tags = splitTags(tags)
	problem.CreatedAt = createdAt
	problem.UpdatedAt = updatedAt
	return &problem, nil
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
