package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedProblems(t *testing.T, db *sql.DB, titles ...string) []*models.Problem {
	t.Helper()

	repo := NewProblemRepository(db)
	problems := make([]*models.Problem, 0, len(titles))
	for _, title := range titles {
		p := models.NewProblem(title, models.DifficultyEasy, "arrays")
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("failed to create problem %q: %v", title, err)
		}
		problems = append(problems, p)
	}
	return problems
}

func seedPlaylist(t *testing.T, repo *PlaylistRepository, userID, name string) *models.Playlist {
	t.Helper()

	p := models.NewPlaylist(userID, name, "")
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create playlist %q: %v", name, err)
	}
	return p
}

func TestProblemRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProblemRepository(db)

		problem := models.NewProblem("Two Sum", models.DifficultyEasy, "arrays", "hashing")
		if err := repo.Create(ctx, problem); err != nil {
			t.Fatalf("failed to create problem: %v", err)
		}

		if problem.ID == "" {
			t.Fatal("problem ID should be set after creation")
		}

		retrieved, err := repo.Get(ctx, problem.ID)
		if err != nil {
			t.Fatalf("failed to get problem: %v", err)
		}

		if retrieved.Title != "Two Sum" {
			t.Errorf("expected title 'Two Sum', got %s", retrieved.Title)
		}
		if len(retrieved.Tags) != 2 || retrieved.Tags[1] != "hashing" {
			t.Errorf("expected tags [arrays hashing], got %v", retrieved.Tags)
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProblemRepository(db)

		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrProblemNotFound) {
			t.Errorf("expected ErrProblemNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewProblemRepository(db)

		seedProblems(t, db, "A", "B")
		hard := models.NewProblem("C", models.DifficultyHard)
		if err := repo.Create(ctx, hard); err != nil {
			t.Fatalf("failed to create problem: %v", err)
		}

		all, err := repo.List(ctx, "")
		if err != nil {
			t.Fatalf("failed to list problems: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 problems, got %d", len(all))
		}
		if all[0].Title != "A" || all[2].Title != "C" {
			t.Errorf("expected insertion order, got %s..%s", all[0].Title, all[2].Title)
		}

		filtered, err := repo.List(ctx, models.DifficultyHard)
		if err != nil {
			t.Fatalf("failed to list filtered problems: %v", err)
		}
		if len(filtered) != 1 || filtered[0].ID != hard.ID {
			t.Errorf("expected only the hard problem, got %d results", len(filtered))
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)

		playlist := models.NewPlaylist("user-1", "Easy Wins", "warmups")
		if err := repo.Create(ctx, playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		if playlist.ID == "" {
			t.Error("playlist ID should be set after creation")
		}

		retrieved, err := repo.Get(ctx, playlist.ID, "user-1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name != "Easy Wins" || retrieved.Description != "warmups" || retrieved.UserID != "user-1" {
			t.Errorf("stored fields do not match input: %+v", retrieved)
		}
		if retrieved.Problems == nil || len(retrieved.Problems) != 0 {
			t.Errorf("expected empty problems, got %v", retrieved.Problems)
		}
	})

	t.Run("Get scoped to owner", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)
		playlist := seedPlaylist(t, repo, "user-1", "Mine")

		if _, err := repo.Get(ctx, playlist.ID, "user-2"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound for another user, got %v", err)
		}
		if _, err := repo.Get(ctx, "missing", "user-1"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound for unknown id, got %v", err)
		}
	})

	t.Run("Get includes problems", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)
		links := NewPlaylistProblemRepository(db)
		problems := seedProblems(t, db, "Two Sum", "Valid Parentheses")
		playlist := seedPlaylist(t, repo, "user-1", "Warmups")

		if _, err := links.AddProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID, problems[1].ID}); err != nil {
			t.Fatalf("failed to add problems: %v", err)
		}

		retrieved, err := repo.Get(ctx, playlist.ID, "user-1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if len(retrieved.Problems) != 2 {
			t.Fatalf("expected 2 linked problems, got %d", len(retrieved.Problems))
		}
		for _, link := range retrieved.Problems {
			if link.Problem == nil {
				t.Fatal("expected link to carry its problem")
			}
			if link.PlaylistID != playlist.ID {
				t.Errorf("expected link to reference %s, got %s", playlist.ID, link.PlaylistID)
			}
		}
	})

	t.Run("List returns only the owner's playlists", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)
		links := NewPlaylistProblemRepository(db)
		problems := seedProblems(t, db, "Two Sum")

		first := seedPlaylist(t, repo, "user-1", "First")
		seedPlaylist(t, repo, "user-1", "Second")
		seedPlaylist(t, repo, "user-2", "Theirs")

		if _, err := links.AddProblems(ctx, first.ID, "user-1", []string{problems[0].ID}); err != nil {
			t.Fatalf("failed to add problem: %v", err)
		}

		playlists, err := repo.List(ctx, "user-1")
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		for _, p := range playlists {
			if p.UserID != "user-1" {
				t.Errorf("expected only user-1 playlists, got owner %s", p.UserID)
			}
		}
		if playlists[0].Name != "First" || len(playlists[0].Problems) != 1 {
			t.Errorf("expected First with one problem, got %s with %d", playlists[0].Name, len(playlists[0].Problems))
		}
		if playlists[0].Problems[0].Problem.Title != "Two Sum" {
			t.Errorf("expected linked problem Two Sum, got %s", playlists[0].Problems[0].Problem.Title)
		}
		if playlists[1].Problems == nil {
			t.Error("expected empty, non-nil problems for Second")
		}
	})

	t.Run("List empty", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)

		playlists, err := repo.List(ctx, "nobody")
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if playlists == nil || len(playlists) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", playlists)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)
		links := NewPlaylistProblemRepository(db)
		problems := seedProblems(t, db, "Two Sum")
		playlist := seedPlaylist(t, repo, "user-1", "Doomed")

		if _, err := links.AddProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID}); err != nil {
			t.Fatalf("failed to add problem: %v", err)
		}

		deleted, err := repo.Delete(ctx, playlist.ID, "user-1")
		if err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}
		if deleted.ID != playlist.ID || deleted.Name != "Doomed" {
			t.Errorf("expected deleted record to be returned, got %+v", deleted)
		}

		if _, err := repo.Get(ctx, playlist.ID, "user-1"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound after delete, got %v", err)
		}

		count, err := links.Count(ctx, playlist.ID)
		if err != nil {
			t.Fatalf("failed to count links: %v", err)
		}
		if count != 0 {
			t.Errorf("expected links to cascade, %d remain", count)
		}
	})
}

func TestPlaylistNameScope(t *testing.T) {
	ctx := context.Background()

	t.Run("global rejects a name used by another user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeGlobal)
		seedPlaylist(t, repo, "user-1", "Easy Wins")

		err := repo.Create(ctx, models.NewPlaylist("user-2", "Easy Wins", ""))
		if !errors.Is(err, shared.ErrPlaylistExists) {
			t.Fatalf("expected ErrPlaylistExists, got %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM playlists").Scan(&count); err != nil {
			t.Fatalf("failed to count playlists: %v", err)
		}
		if count != 1 {
			t.Errorf("expected no new row, found %d playlists", count)
		}
	})

	t.Run("user allows the same name for different owners", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewPlaylistRepository(db, shared.NameScopeUser)
		seedPlaylist(t, repo, "user-1", "Easy Wins")

		if err := repo.Create(ctx, models.NewPlaylist("user-2", "Easy Wins", "")); err != nil {
			t.Fatalf("expected create to succeed for another user, got %v", err)
		}

		err := repo.Create(ctx, models.NewPlaylist("user-1", "Easy Wins", ""))
		if !errors.Is(err, shared.ErrPlaylistExists) {
			t.Errorf("expected ErrPlaylistExists for the same owner, got %v", err)
		}
	})

	t.Run("empty scope defaults to global", func(t *testing.T) {
		repo := NewPlaylistRepository(nil, "")
		if repo.NameScope() != shared.NameScopeGlobal {
			t.Errorf("expected global scope, got %s", repo.NameScope())
		}
	})
}

func TestPlaylistProblemRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*sql.DB, *PlaylistProblemRepository, *models.Playlist, []*models.Problem) {
		db := setupTestDB(t)
		playlists := NewPlaylistRepository(db, shared.NameScopeGlobal)
		problems := seedProblems(t, db, "p1", "p2", "p3")
		playlist := seedPlaylist(t, playlists, "user-1", "X")
		return db, NewPlaylistProblemRepository(db), playlist, problems
	}

	t.Run("AddProblems creates one link per id", func(t *testing.T) {
		db, repo, playlist, problems := setup(t)

		result, err := repo.AddProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID, problems[1].ID})
		if err != nil {
			t.Fatalf("failed to add problems: %v", err)
		}
		if result.Count != 2 {
			t.Errorf("expected count 2, got %d", result.Count)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM problems_in_playlist WHERE playlist_id = ?", playlist.ID).Scan(&count); err != nil {
			t.Fatalf("failed to count links: %v", err)
		}
		if count != 2 {
			t.Errorf("expected exactly 2 link rows, got %d", count)
		}
	})

	t.Run("AddProblems skips existing pairs", func(t *testing.T) {
		_, repo, playlist, problems := setup(t)

		if _, err := repo.AddProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID}); err != nil {
			t.Fatalf("failed to add problem: %v", err)
		}

		result, err := repo.AddProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID, problems[0].ID, problems[1].ID})
		if err != nil {
			t.Fatalf("failed to add problems: %v", err)
		}
		if result.Count != 1 {
			t.Errorf("expected only the new pair to count, got %d", result.Count)
		}
	})

	t.Run("AddProblems unknown problem inserts nothing", func(t *testing.T) {
		_, repo, playlist, problems := setup(t)

		_, err := repo.AddProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID, "missing"})
		if !errors.Is(err, shared.ErrProblemNotFound) {
			t.Fatalf("expected ErrProblemNotFound, got %v", err)
		}

		count, err := repo.Count(ctx, playlist.ID)
		if err != nil {
			t.Fatalf("failed to count links: %v", err)
		}
		if count != 0 {
			t.Errorf("expected rollback to leave no links, got %d", count)
		}
	})

	t.Run("AddProblems foreign playlist", func(t *testing.T) {
		_, repo, playlist, problems := setup(t)

		_, err := repo.AddProblems(ctx, playlist.ID, "user-2", []string{problems[0].ID})
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("AddProblems empty ids", func(t *testing.T) {
		_, repo, playlist, _ := setup(t)

		if _, err := repo.AddProblems(ctx, playlist.ID, "user-1", []string{" "}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("RemoveProblems removes only the given pairs", func(t *testing.T) {
		db, repo, playlist, problems := setup(t)
		playlists := NewPlaylistRepository(db, shared.NameScopeGlobal)
		other := seedPlaylist(t, playlists, "user-1", "Y")

		ids := []string{problems[0].ID, problems[1].ID, problems[2].ID}
		if _, err := repo.AddProblems(ctx, playlist.ID, "user-1", ids); err != nil {
			t.Fatalf("failed to add problems: %v", err)
		}
		if _, err := repo.AddProblems(ctx, other.ID, "user-1", ids[:1]); err != nil {
			t.Fatalf("failed to add problem to other playlist: %v", err)
		}

		result, err := repo.RemoveProblems(ctx, playlist.ID, "user-1", []string{problems[0].ID})
		if err != nil {
			t.Fatalf("failed to remove problem: %v", err)
		}
		if result.Count != 1 {
			t.Errorf("expected count 1, got %d", result.Count)
		}

		remaining, err := playlists.Get(ctx, playlist.ID, "user-1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		for _, id := range remaining.ProblemIDs() {
			if id == problems[0].ID {
				t.Error("expected removed problem to be gone")
			}
		}
		if len(remaining.Problems) != 2 {
			t.Errorf("expected 2 remaining links, got %d", len(remaining.Problems))
		}

		otherCount, err := repo.Count(ctx, other.ID)
		if err != nil {
			t.Fatalf("failed to count links: %v", err)
		}
		if otherCount != 1 {
			t.Errorf("expected other playlist untouched, got %d links", otherCount)
		}
	})

	t.Run("RemoveProblems unknown ids", func(t *testing.T) {
		_, repo, playlist, _ := setup(t)

		result, err := repo.RemoveProblems(ctx, playlist.ID, "user-1", []string{"nope"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Count != 0 {
			t.Errorf("expected count 0, got %d", result.Count)
		}
	})

	t.Run("RemoveProblems foreign playlist", func(t *testing.T) {
		_, repo, playlist, problems := setup(t)

		_, err := repo.RemoveProblems(ctx, playlist.ID, "user-2", []string{problems[0].ID})
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestConcurrentWrites(t *testing.T) {
	ctx := context.Background()

	db, err := shared.NewDatabase(filepath.Join(t.TempDir(), "cpx.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	shared.ConfigureDatabase(db, 10, 5)

	if _, err := shared.RunMigrations(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	repo := NewPlaylistRepository(db, shared.NameScopeGlobal)

	t.Run("distinct names all succeed", func(t *testing.T) {
		const n = 20
		errs := make(chan error, n)

		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.Create(ctx, models.NewPlaylist("u1", fmt.Sprintf("list-%02d", i), ""))
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("concurrent Create failed: %v", err)
			}
		}

		playlists, err := repo.List(ctx, "u1")
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(playlists) != n {
			t.Errorf("expected %d playlists, got %d", n, len(playlists))
		}
	})

	t.Run("same name is created once", func(t *testing.T) {
		const n = 8
		errs := make(chan error, n)

		var wg sync.WaitGroup
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- repo.Create(ctx, models.NewPlaylist("u2", "shared", ""))
			}()
		}
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			switch {
			case err == nil:
				created++
			case !errors.Is(err, shared.ErrPlaylistExists):
				t.Errorf("expected ErrPlaylistExists, got %v", err)
			}
		}
		if created != 1 {
			t.Errorf("expected exactly one create to succeed, got %d", created)
		}
	})
}
