package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// PlaylistProblemRepository manages the links between playlists and problems.
type PlaylistProblemRepository struct {
	db *sql.DB
}

// NewPlaylistProblemRepository creates a new PlaylistProblemRepository with the given database connection
func NewPlaylistProblemRepository(db *sql.DB) *PlaylistProblemRepository {
	return &PlaylistProblemRepository{db: db}
}

// AddProblems links each problem to the playlist owned by userID.
//
// Pairs that are already linked are skipped and not counted. Returns [shared.ErrPlaylistNotFound]
// when the playlist does not belong to userID and [shared.ErrProblemNotFound] when a problem id
// has no row; in both cases nothing is inserted.
func (r *PlaylistProblemRepository) AddProblems(ctx context.Context, playlistID, userID string, problemIDs []string) (models.BatchResult, error) {
	var result models.BatchResult

	problemIDs = shared.UniqueStrings(problemIDs)
	if len(problemIDs) == 0 {
		return result, fmt.Errorf("%w: no problem ids", shared.ErrInvalidInput)
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := getOwned(ctx, tx, playlistID, userID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO problems_in_playlist (id, playlist_id, problem_id, created_at)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, problemID := range problemIDs {
			res, err := stmt.ExecContext(ctx, shared.GenerateID(), playlistID, problemID, now)
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %s", shared.ErrProblemNotFound, problemID)
			}
			if err != nil {
				return fmt.Errorf("failed to insert playlist problem: %w", err)
			}

			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get affected rows: %w", err)
			}
			result.Count += n
		}
		return nil
	})
	if err != nil {
		return models.BatchResult{}, err
	}

	return result, nil
}

// RemoveProblems deletes the links between the playlist owned by userID and the given problems.
//
// Links to other problems are untouched. Ids that are not linked are ignored.
func (r *PlaylistProblemRepository) RemoveProblems(ctx context.Context, playlistID, userID string, problemIDs []string) (models.BatchResult, error) {
	var result models.BatchResult

	problemIDs = shared.UniqueStrings(problemIDs)
	if len(problemIDs) == 0 {
		return result, fmt.Errorf("%w: no problem ids", shared.ErrInvalidInput)
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := getOwned(ctx, tx, playlistID, userID); err != nil {
			return err
		}

		query := fmt.Sprintf(
			"DELETE FROM problems_in_playlist WHERE playlist_id = ? AND problem_id IN (%s)",
			placeholders(len(problemIDs)),
		)
		args := append([]any{playlistID}, stringArgs(problemIDs)...)

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete playlist problems: %w", err)
		}

		if result.Count, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.BatchResult{}, err
	}

	return result, nil
}

// Count returns the number of links held by a playlist.
func (r *PlaylistProblemRepository) Count(ctx context.Context, playlistID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM problems_in_playlist WHERE playlist_id = ?", playlistID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlist problems: %w", err)
	}
	return count, nil
}

// listLinks loads links joined with their problem and playlist, grouped by playlist id.
//
// where filters on the aliases l (link), p (playlist) and pr (problem).
func listLinks(ctx context.Context, q querier, where string, args ...any) (map[string][]models.PlaylistProblem, error) {
	query := `
		SELECT l.id, l.playlist_id, l.problem_id, l.created_at,
			pr.id, pr.title, pr.difficulty, pr.tags, pr.created_at, pr.updated_at
		FROM problems_in_playlist l
		JOIN playlists p ON p.id = l.playlist_id
		JOIN problems pr ON pr.id = l.problem_id
		WHERE ` + where + `
		ORDER BY l.created_at ASC, l.rowid ASC
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist problems: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]models.PlaylistProblem)
	for rows.Next() {
		var (
			link       models.PlaylistProblem
			problem    models.Problem
			linkedAt   time.Time
			difficulty string
			tags       string
			createdAt  time.Time
			updatedAt  time.Time
		)

		err := rows.Scan(
			&link.ID, &link.PlaylistID, &link.ProblemID, &linkedAt,
			&problem.ID, &problem.Title, &difficulty, &tags, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist problem: %w", err)
		}

		problem.Difficulty = models.Difficulty(difficulty)
		problem.Tags = splitTags(tags)
		problem.CreatedAt = createdAt
		problem.UpdatedAt = updatedAt

		link.CreatedAt = linkedAt
		link.Problem = &problem
		grouped[link.PlaylistID] = append(grouped[link.PlaylistID], link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return grouped, nil
}
