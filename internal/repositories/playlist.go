package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// PlaylistRepository persists [models.Playlist] records.
//
// Reads and deletes are always scoped to the owning user.
type PlaylistRepository struct {
	db        *sql.DB
	nameScope shared.NameScope
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection.
//
// scope decides which existing playlists a new name is checked against; an empty scope means global.
func NewPlaylistRepository(db *sql.DB, scope shared.NameScope) *PlaylistRepository {
	if scope == "" {
		scope = shared.NameScopeGlobal
	}
	return &PlaylistRepository{db: db, nameScope: scope}
}

// NameScope returns the uniqueness policy applied by Create.
func (r *PlaylistRepository) NameScope() shared.NameScope {
	return r.nameScope
}

// Create inserts a new playlist with generated ID and sequence.
//
// Returns [shared.ErrPlaylistExists] when the name is already taken under the configured scope.
// The name check and the insert share one transaction.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	playlist.ID = shared.GenerateID()

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		taken, err := r.nameTaken(ctx, tx, playlist.Name, playlist.UserID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistExists, playlist.Name)
		}

		sequence, err := nextSequence(ctx, tx, "playlists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO playlists (id, sequence, user_id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			playlist.ID,
			sequence,
			playlist.UserID,
			playlist.Name,
			playlist.Description,
			playlist.CreatedAt,
			playlist.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}

		if playlist.Problems == nil {
			playlist.Problems = []models.PlaylistProblem{}
		}
		return nil
	})
}

func (r *PlaylistRepository) nameTaken(ctx context.Context, q querier, name, userID string) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM playlists WHERE name = ?"
	args := []any{name}
	if r.nameScope == shared.NameScopeUser {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += ")"

	var exists bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check playlist name: %w", err)
	}
	return exists, nil
}

// Get retrieves a playlist owned by userID, including its linked problems.
func (r *PlaylistRepository) Get(ctx context.Context, id, userID string) (*models.Playlist, error) {
	var playlist *models.Playlist

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if playlist, err = getOwned(ctx, tx, id, userID); err != nil {
			return err
		}

		links, err := listLinks(ctx, tx, "l.playlist_id = ?", id)
		if err != nil {
			return err
		}
		playlist.Problems = links[id]
		if playlist.Problems == nil {
			playlist.Problems = []models.PlaylistProblem{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return playlist, nil
}

// List retrieves every playlist owned by userID in creation order, each including its linked problems.
//
// The result is never nil; a user without playlists gets an empty slice.
func (r *PlaylistRepository) List(ctx context.Context, userID string) ([]*models.Playlist, error) {
	playlists := []*models.Playlist{}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			SELECT id, user_id, name, description, created_at, updated_at
			FROM playlists
			WHERE user_id = ?
			ORDER BY sequence ASC
		`

		rows, err := tx.QueryContext(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("failed to query playlists: %w", err)
		}

		for rows.Next() {
			playlist, err := scanPlaylist(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan playlist: %w", err)
			}
			playlists = append(playlists, playlist)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("row iteration error: %w", err)
		}
		rows.Close()

		if len(playlists) == 0 {
			return nil
		}

		links, err := listLinks(ctx, tx, "p.user_id = ?", userID)
		if err != nil {
			return err
		}
		for _, playlist := range playlists {
			if found := links[playlist.ID]; found != nil {
				playlist.Problems = found
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return playlists, nil
}

// Delete removes a playlist owned by userID and returns the deleted record.
//
// Links are removed by the foreign key cascade. Returns [shared.ErrPlaylistNotFound]
// when no playlist matched the id and owner.
func (r *PlaylistRepository) Delete(ctx context.Context, id, userID string) (*models.Playlist, error) {
	var deleted *models.Playlist

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if deleted, err = getOwned(ctx, tx, id, userID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// getOwned loads a playlist row without its links.
func getOwned(ctx context.Context, q querier, id, userID string) (*models.Playlist, error) {
	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM playlists
		WHERE id = ? AND user_id = ?
	`

	playlist, err := scanPlaylist(q.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist: %w", err)
	}
	return playlist, nil
}

func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		playlist  models.Playlist
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&playlist.ID, &playlist.UserID, &playlist.Name, &playlist.Description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	playlist.CreatedAt = createdAt
	playlist.UpdatedAt = updatedAt
	playlist.Problems = []models.PlaylistProblem{}
	return &playlist, nil
}
