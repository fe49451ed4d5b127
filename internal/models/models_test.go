package models

import (
	"strings"
	"testing"
)

func TestParseDifficulty(t *testing.T) {
	tc := []struct {
		input   string
		want    Difficulty
		wantErr bool
	}{
		{input: "easy", want: DifficultyEasy},
		{input: " Medium ", want: DifficultyMedium},
		{input: "HARD", want: DifficultyHard},
		{input: "impossible", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficulty(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDifficulty(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDifficulty(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlaylistValidate(t *testing.T) {
	valid := func() *Playlist {
		p := NewPlaylist("user-1", "  Easy Wins ", "warmups")
		p.ID = "playlist-1"
		return p
	}

	t.Run("valid", func(t *testing.T) {
		p := valid()
		if err := p.Validate(); err != nil {
			t.Fatalf("expected valid playlist, got %v", err)
		}
		if p.Name != "Easy Wins" {
			t.Errorf("expected trimmed name, got %q", p.Name)
		}
		if p.Problems == nil {
			t.Error("expected problems to be an empty slice")
		}
	})

	tc := []struct {
		name   string
		mutate func(*Playlist)
	}{
		{name: "missing id", mutate: func(p *Playlist) { p.ID = "" }},
		{name: "missing owner", mutate: func(p *Playlist) { p.UserID = "" }},
		{name: "missing name", mutate: func(p *Playlist) { p.Name = "" }},
		{name: "long name", mutate: func(p *Playlist) { p.Name = strings.Repeat("a", MaxNameLength+1) }},
		{name: "long description", mutate: func(p *Playlist) { p.Description = strings.Repeat("a", MaxDescriptionLength+1) }},
		{name: "long multi-byte name", mutate: func(p *Playlist) { p.Name = strings.Repeat("日", MaxNameLength+1) }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	t.Run("limits count characters", func(t *testing.T) {
		p := valid()
		p.Name = strings.Repeat("日", MaxNameLength)
		p.Description = strings.Repeat("é", MaxDescriptionLength)
		if err := p.Validate(); err != nil {
			t.Errorf("expected multi-byte text at the limit to be valid, got %v", err)
		}
	})
}

func TestProblemValidate(t *testing.T) {
	p := NewProblem("Two Sum", DifficultyEasy)
	if err := p.Validate(); err == nil {
		t.Error("expected error for missing id")
	}

	p.ID = "problem-1"
	if err := p.Validate(); err != nil {
		t.Errorf("expected valid problem, got %v", err)
	}
	if p.Tags == nil {
		t.Error("expected tags to default to an empty slice")
	}

	p.Difficulty = "TRIVIAL"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestPlaylistProblemIDs(t *testing.T) {
	p := NewPlaylist("user-1", "list", "")
	p.Problems = []PlaylistProblem{{ProblemID: "a"}, {ProblemID: "b"}}

	ids := p.ProblemIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("unexpected problem ids %v", ids)
	}
}
