// package models defines the data model for the problem playlist service
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Length limits count runes, not bytes.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// Difficulty ranks a problem.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty accepts any casing of EASY, MEDIUM or HARD.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Problem is a coding problem that playlists can reference.
type Problem struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NewProblem creates a Problem with timestamps set to now.
func NewProblem(title string, difficulty Difficulty, tags ...string) *Problem {
	now := time.Now().UTC()
	if tags == nil {
		tags = []string{}
	}
	return &Problem{
		Title:      strings.TrimSpace(title),
		Difficulty: difficulty,
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the problem's fields.
func (p *Problem) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("problem id is required")
	}
	if p.Title == "" {
		return fmt.Errorf("problem title is required")
	}
	if _, err := ParseDifficulty(string(p.Difficulty)); err != nil {
		return err
	}
	return nil
}

// Playlist is a named collection of problems owned by one user.
//
// Problems is populated on reads and is always a non-nil slice in responses.
type Playlist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	UserID      string            `json:"userId"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Problems    []PlaylistProblem `json:"problems"`
}

// NewPlaylist creates a Playlist owned by userID with timestamps set to now.
func NewPlaylist(userID, name, description string) *Playlist {
	now := time.Now().UTC()
	return &Playlist{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Problems:    []PlaylistProblem{},
	}
}

// Validate checks the playlist's fields.
func (p *Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("playlist owner is required")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return fmt.Errorf("playlist name exceeds %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return fmt.Errorf("playlist description exceeds %d characters", MaxDescriptionLength)
	}
	return nil
}

// ProblemIDs returns the ids of the linked problems in link order.
func (p *Playlist) ProblemIDs() []string {
	ids := make([]string, 0, len(p.Problems))
	for _, link := range p.Problems {
		ids = append(ids, link.ProblemID)
	}
	return ids
}

// PlaylistProblem links one problem to one playlist.
type PlaylistProblem struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	ProblemID  string    `json:"problemId"`
	CreatedAt  time.Time `json:"createdAt"`
	Problem    *Problem  `json:"problem,omitempty"`
}

// BatchResult reports how many rows a batch operation touched.
type BatchResult struct {
	Count int64 `json:"count"`
}
