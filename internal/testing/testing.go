// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// ErrStore is returned by the failing store doubles.
var ErrStore = errors.New("store unavailable")

// MustOpenDB opens an in-memory SQLite database with migrations applied and closes it on cleanup.
func MustOpenDB(t *testing.T) *sql.DB {
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

// FailingPlaylistStore is a playlist store whose every call returns Err.
type FailingPlaylistStore struct {
	Err error
}

func (f *FailingPlaylistStore) Create(ctx context.Context, playlist *models.Playlist) error {
	return f.err()
}

func (f *FailingPlaylistStore) Get(ctx context.Context, id, userID string) (*models.Playlist, error) {
	return nil, f.err()
}

func (f *FailingPlaylistStore) List(ctx context.Context, userID string) ([]*models.Playlist, error) {
	return nil, f.err()
}

func (f *FailingPlaylistStore) Delete(ctx context.Context, id, userID string) (*models.Playlist, error) {
	return nil, f.err()
}

func (f *FailingPlaylistStore) AddProblems(ctx context.Context, playlistID, userID string, problemIDs []string) (models.BatchResult, error) {
	return models.BatchResult{}, f.err()
}

func (f *FailingPlaylistStore) RemoveProblems(ctx context.Context, playlistID, userID string, problemIDs []string) (models.BatchResult, error) {
	return models.BatchResult{}, f.err()
}

func (f *FailingPlaylistStore) err() error {
	if f.Err == nil {
		return ErrStore
	}
	return f.Err
}

// NilListStore returns a nil slice from List, as a store with no rows might.
type NilListStore struct {
	FailingPlaylistStore
}

func (n *NilListStore) List(ctx context.Context, userID string) ([]*models.Playlist, error) {
	return nil, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

var _ io.Writer = (*FWriter)(nil)

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
