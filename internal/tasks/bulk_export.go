package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/cpx/internal/formatter"
	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: json)
	OutputDir  string           // Base output directory (default: cpx_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Playlist reads per second; 0 reads as fast as possible
}

type exportJob struct {
	index    int
	playlist *models.Playlist
}

type exportOutcome struct {
	index  int
	result formatter.PlaylistExportResult
}

// BulkExport exports the given playlists owned by userID, or all of them when ids is empty.
//
// A failure to read or write one playlist is recorded in the result and the run continues.
// Results keep the order of ids (or of the user's playlists). The returned error is set
// when the run could not start, was canceled, or the manifest could not be written.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	userID string,
	ids []string,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("cpx_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	var listed []*models.Playlist
	if len(ids) == 0 {
		e.sendProgress(prog, fetchingPlaylistsUpdate(userID))

		playlists, err := e.source.List(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}
		listed = playlists
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(ids)
	result := &formatter.BulkExportResult{
		Format:          opts.Format,
		TotalPlaylists:  total,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]formatter.PlaylistExportResult, 0, total),
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan exportJob, total)
	outcomes := make(chan exportOutcome, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, outcomes, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, id := range ids {
			if ctx.Err() != nil {
				return
			}

			if listed != nil {
				e.sendProgress(prog, exportingPlaylistUpdate(i+1, total, listed[i].Name))
				jobs <- exportJob{index: i, playlist: listed[i]}
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			playlist, err := e.source.Get(ctx, id, userID)
			if err != nil {
				outcomes <- exportOutcome{index: i, result: formatter.PlaylistExportResult{
					PlaylistID:   id,
					PlaylistName: fmt.Sprintf("Unknown (%s)", id),
					Error:        fmt.Sprintf("failed to fetch playlist: %v", err),
				}}
				continue
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, total, playlist.Name))
			jobs <- exportJob{index: i, playlist: playlist}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	slots := make([]*formatter.PlaylistExportResult, total)
	completed := 0
	for out := range outcomes {
		completed++
		res := out.result
		slots[out.index] = &res

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("export failed", "playlist", res.PlaylistID, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	for _, res := range slots {
		if res != nil {
			result.Results = append(result.Results, *res)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export canceled: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteBulkExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes playlists from the jobs channel until it is closed or ctx is canceled.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	outcomes chan<- exportOutcome,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		outcomes <- exportOutcome{index: job.index, result: e.exportSinglePlaylist(job.playlist, opts)}
	}
}

func (e *ExportEngine) exportSinglePlaylist(playlist *models.Playlist, opts BulkExportOpts) formatter.PlaylistExportResult {
	result := formatter.PlaylistExportResult{
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
	}

	files, err := formatter.WriteExport(playlist, opts.Format, opts.OutputDir)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Files = files
	result.Success = true
	return result
}
