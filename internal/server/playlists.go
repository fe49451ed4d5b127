package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
)

const maxBodyBytes = 1 << 20

// PlaylistStore is the playlist persistence used by [PlaylistHandler].
type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	Get(ctx context.Context, id, userID string) (*models.Playlist, error)
	List(ctx context.Context, userID string) ([]*models.Playlist, error)
	Delete(ctx context.Context, id, userID string) (*models.Playlist, error)
}

// PlaylistProblemStore is the link persistence used by [PlaylistHandler].
type PlaylistProblemStore interface {
	AddProblems(ctx context.Context, playlistID, userID string, problemIDs []string) (models.BatchResult, error)
	RemoveProblems(ctx context.Context, playlistID, userID string, problemIDs []string) (models.BatchResult, error)
}

// CreatePlaylistRequest is the body of POST /playlists.
type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProblemIDsRequest is the body of the problem link endpoints.
//
// ProblemIDs stays raw so a non-array value can be told apart from a missing one.
type ProblemIDsRequest struct {
	ProblemIDs json.RawMessage `json:"problemIds"`
}

// PlaylistHandler serves the playlist endpoints.
type PlaylistHandler struct {
	playlists PlaylistStore
	links     PlaylistProblemStore
	logger    *log.Logger
}

// NewPlaylistHandler creates a [PlaylistHandler].
func NewPlaylistHandler(playlists PlaylistStore, links PlaylistProblemStore, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		playlists: playlists,
		links:     links,
		logger:    shared.WithLogger(logger, "handler", "playlists"),
	}
}

// Routes implements [Handler].
func (h *PlaylistHandler) Routes(r chi.Router) {
	r.Route("/playlists", func(r chi.Router) {
		r.Post("/", h.CreatePlaylist)
		r.Get("/", h.GetAllListDetails)
		r.Get("/{playlistId}", h.GetPlaylistDetails)
		r.Delete("/{playlistId}", h.DeletePlaylist)
		r.Post("/{playlistId}/problems", h.AddProblemToPlaylist)
		r.Delete("/{playlistId}/problems", h.DeleteProblemFromPlaylist)
	})
}

// CreatePlaylist creates a playlist owned by the caller.
func (h *PlaylistHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req CreatePlaylistRequest
	if err := decodeBody(w, r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		RespondError(w, http.StatusBadRequest, "Playlist name is required.", nil)
		return
	}

	playlist := models.NewPlaylist(userID, req.Name, req.Description)
	err := h.playlists.Create(r.Context(), playlist)
	switch {
	case errors.Is(err, shared.ErrPlaylistExists):
		RespondError(w, http.StatusBadRequest, "Playlist already exists.", nil)
	case errors.Is(err, shared.ErrInvalidInput):
		RespondError(w, http.StatusBadRequest, "Invalid playlist details.", nil)
	case err != nil:
		h.internalError(w, r, "Error in creating playlist.", err)
	default:
		RespondSuccess(w, http.StatusCreated, "Playlist created successfully.", playlist)
	}
}

// GetAllListDetails lists the caller's playlists with their problems.
func (h *PlaylistHandler) GetAllListDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	playlists, err := h.playlists.List(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "Error in fetching all playlist.", err)
		return
	}
	if playlists == nil {
		playlists = []*models.Playlist{}
	}

	RespondSuccess(w, http.StatusOK, "Playlists fetched successfully.", playlists)
}

// GetPlaylistDetails returns one of the caller's playlists with its problems.
func (h *PlaylistHandler) GetPlaylistDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	playlist, err := h.playlists.Get(r.Context(), chi.URLParam(r, "playlistId"), userID)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		RespondError(w, http.StatusNotFound, "No playlist with the id found.", nil)
	case err != nil:
		h.internalError(w, r, "Error in fetching a playlist.", err)
	default:
		RespondSuccess(w, http.StatusOK, "Playlist fetched successfully.", playlist)
	}
}

// AddProblemToPlaylist links the given problems to one of the caller's playlists.
func (h *PlaylistHandler) AddProblemToPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	problemIDs, err := decodeProblemIDs(w, r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid or missing problem ids.", nil)
		return
	}

	result, err := h.links.AddProblems(r.Context(), chi.URLParam(r, "playlistId"), userID, problemIDs)
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		RespondError(w, http.StatusBadRequest, "Invalid or missing problem ids.", nil)
	case errors.Is(err, shared.ErrPlaylistNotFound):
		RespondError(w, http.StatusNotFound, "Playlist not found.", nil)
	case errors.Is(err, shared.ErrProblemNotFound):
		RespondError(w, http.StatusNotFound, "Problem not found.", nil)
	case err != nil:
		h.internalError(w, r, "Error in adding problem to a playlist.", err)
	default:
		RespondSuccess(w, http.StatusCreated, "Problems added to playlist successfully.", result)
	}
}

// DeletePlaylist deletes one of the caller's playlists and returns the deleted record.
func (h *PlaylistHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	deleted, err := h.playlists.Delete(r.Context(), chi.URLParam(r, "playlistId"), userID)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		RespondError(w, http.StatusNotFound, "Playlist not found.", nil)
	case err != nil:
		h.internalError(w, r, "Error in deleting a playlist.", err)
	default:
		RespondSuccess(w, http.StatusOK, "Playlist deleted successfully.", deleted)
	}
}

// DeleteProblemFromPlaylist unlinks the given problems from one of the caller's playlists.
func (h *PlaylistHandler) DeleteProblemFromPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	problemIDs, err := decodeProblemIDs(w, r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid or missing problem ids.", nil)
		return
	}

	result, err := h.links.RemoveProblems(r.Context(), chi.URLParam(r, "playlistId"), userID, problemIDs)
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		RespondError(w, http.StatusBadRequest, "Invalid or missing problem ids.", nil)
	case errors.Is(err, shared.ErrPlaylistNotFound):
		RespondError(w, http.StatusNotFound, "Playlist not found.", nil)
	case err != nil:
		h.internalError(w, r, "Error in deleting problem from a playlist.", err)
	default:
		RespondSuccess(w, http.StatusOK, "Problems deleted from playlist successfully.", result)
	}
}

func (h *PlaylistHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Authentication required.", nil)
	}
	return userID, ok
}

func (h *PlaylistHandler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.logger.Error(message, "error", err, "method", r.Method, "path", r.URL.Path)
	RespondError(w, http.StatusInternalServerError, message, nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON body", shared.ErrInvalidInput)
	}
	return nil
}

// decodeProblemIDs requires problemIds to be a non-empty array of strings.
func decodeProblemIDs(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var req ProblemIDsRequest
	if err := decodeBody(w, r, &req); err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(string(req.ProblemIDs))
	if !strings.HasPrefix(raw, "[") {
		return nil, fmt.Errorf("%w: problemIds must be an array", shared.ErrInvalidInput)
	}

	var ids []string
	if err := json.Unmarshal(req.ProblemIDs, &ids); err != nil {
		return nil, fmt.Errorf("%w: problemIds must contain strings", shared.ErrInvalidInput)
	}

	ids = shared.UniqueStrings(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: problemIds is empty", shared.ErrInvalidInput)
	}
	return ids, nil
}
