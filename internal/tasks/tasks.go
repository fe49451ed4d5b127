package tasks

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

// PlaylistSource reads playlists, with their problems, owned by a user.
type PlaylistSource interface {
	Get(ctx context.Context, id, userID string) (*models.Playlist, error)
	List(ctx context.Context, userID string) ([]*models.Playlist, error)
}

// ExportEngine exports playlists from a [PlaylistSource].
type ExportEngine struct {
	source PlaylistSource
	logger *log.Logger
}

// NewExportEngine creates an [ExportEngine]. A nil logger writes to stderr.
func NewExportEngine(source PlaylistSource, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExportEngine{source: source, logger: shared.WithLogger(logger, "task", "export")}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
