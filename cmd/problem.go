package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cpx/internal/models"
	"github.com/desertthunder/cpx/internal/shared"
	"github.com/desertthunder/cpx/internal/ui"
)

// ProblemAdd adds a problem to the catalog.
func (r *Runner) ProblemAdd(ctx context.Context, cmd *cli.Command) error {
	difficulty, err := models.ParseDifficulty(cmd.String("difficulty"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	tags := []string{}
	for _, tag := range cmd.StringSlice("tag") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	problem := models.NewProblem(cmd.String("title"), difficulty, shared.UniqueStrings(tags)...)
	if err := r.stores(db).problems.Create(ctx, problem); err != nil {
		return fmt.Errorf("failed to create problem: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(problem, false)
	}
	return r.writePlain("%s %s %s\n", r.palette.OK("✓"), problem.ID, problem.Title)
}

// ProblemList lists the catalog, optionally filtered by difficulty.
func (r *Runner) ProblemList(ctx context.Context, cmd *cli.Command) error {
	var difficulty models.Difficulty
	if d := cmd.String("difficulty"); d != "" {
		parsed, err := models.ParseDifficulty(d)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		difficulty = parsed
	}

	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	problems, err := r.stores(db).problems.List(ctx, difficulty)
	if err != nil {
		return fmt.Errorf("failed to list problems: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(problems, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Problems (%d)", len(problems)))
	for _, p := range problems {
		r.writePlain("%s  %-6s  %s", p.ID, ui.Difficulty(p.Difficulty), p.Title)
		if len(p.Tags) > 0 {
			r.writePlain("  %s", r.palette.Help(strings.Join(p.Tags, ", ")))
		}
		r.writePlain("\n")
	}
	return nil
}
