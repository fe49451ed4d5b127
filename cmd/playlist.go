package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cpx/internal/formatter"
	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
	"github.com/desertthunder/cpx/internal/tasks"
	"github.com/desertthunder/cpx/internal/ui"
)

// PlaylistCreate creates a playlist for a user and links any given problems.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stores := r.stores(db)
	playlist := models.NewPlaylist(userID, cmd.String("name"), cmd.String("description"))
	if err := stores.playlists.Create(ctx, playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	r.writePlain("%s created %s (%s)\n", r.palette.OK("✓"), playlist.Name, playlist.ID)

	if ids := cmd.StringSlice("problem"); len(ids) > 0 {
		result, err := stores.links.AddProblems(ctx, playlist.ID, userID, ids)
		if err != nil {
			return fmt.Errorf("failed to add problems: %w", err)
		}
		r.writePlain("%s added %d problem(s)\n", r.palette.OK("✓"), result.Count)
	}
	return nil
}

// PlaylistAddProblems links problems to a playlist and reports the new total.
func (r *Runner) PlaylistAddProblems(ctx context.Context, cmd *cli.Command) error {
	return r.changeProblems(ctx, cmd, "added", func(stores storeSet, id, userID string, problemIDs []string) (models.BatchResult, error) {
		return stores.links.AddProblems(ctx, id, userID, problemIDs)
	})
}

// PlaylistRemoveProblems unlinks problems from a playlist and reports the new total.
func (r *Runner) PlaylistRemoveProblems(ctx context.Context, cmd *cli.Command) error {
	return r.changeProblems(ctx, cmd, "removed", func(stores storeSet, id, userID string, problemIDs []string) (models.BatchResult, error) {
		return stores.links.RemoveProblems(ctx, id, userID, problemIDs)
	})
}

func (r *Runner) changeProblems(
	ctx context.Context, cmd *cli.Command, verb string,
	change func(stores storeSet, id, userID string, problemIDs []string) (models.BatchResult, error),
) error {
	id := cmd.String("id")
	if !shared.IsValidID(id) {
		return fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, id)
	}
	problemIDs := shared.UniqueStrings(cmd.StringSlice("problem"))
	if len(problemIDs) == 0 {
		return fmt.Errorf("%w: at least one --problem", shared.ErrMissingArgument)
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stores := r.stores(db)
	result, err := change(stores, id, cmd.String("user"), problemIDs)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	total, err := stores.links.Count(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%s %s %d problem(s), playlist now holds %d\n", r.palette.OK("✓"), verb, result.Count, total)
}

// PlaylistList lists a user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := r.stores(db).playlists.List(ctx, cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%s  %s  %s\n", p.ID, p.Name, r.palette.Help(fmt.Sprintf("%d problems", len(p.Problems))))
	}
	return nil
}

// PlaylistShow prints one playlist with its problems.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if !shared.IsValidID(id) {
		return fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, id)
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	playlist, err := r.stores(db).playlists.Get(ctx, id, cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to get playlist: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}

	r.writePlainHeader(playlist.Name)
	if playlist.Description != "" {
		r.writePlain("%s\n", playlist.Description)
	}
	r.writePlainln("Problems: %d", len(playlist.Problems))
	for i, link := range playlist.Problems {
		if link.Problem == nil {
			r.writePlain("%2d. %s\n", i+1, link.ProblemID)
			continue
		}
		r.writePlain("%2d. %-6s %s\n", i+1, ui.Difficulty(link.Problem.Difficulty), link.Problem.Title)
	}
	return nil
}

// PlaylistExport writes one, several or all of a user's playlists to files.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ids := shared.UniqueStrings(cmd.StringSlice("id"))
	for _, id := range ids {
		if !shared.IsValidID(id) {
			return fmt.Errorf("%w: playlist id %q", shared.ErrInvalidArgument, id)
		}
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewExportEngine(r.stores(db).playlists, r.logger)

	prog := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range prog {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	result, err := engine.BulkExport(ctx, prog, cmd.String("user"), ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	})
	close(prog)
	wg.Wait()
	if err != nil {
		return err
	}

	for _, res := range result.Results {
		if res.Success {
			r.writePlain("%s %s (%d files)\n", r.palette.OK("✓"), res.PlaylistName, len(res.Files))
		} else {
			r.writePlain("%s %s: %s\n", r.palette.Err("✗"), res.PlaylistName, res.Error)
		}
	}
	return r.writePlainln("Exported %d/%d playlists to %s (manifest: %s)",
		result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory, result.ManifestPath)
}
