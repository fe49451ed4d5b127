package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cpx/internal/server"
)

// Token prints a bearer token whose subject is the given user id.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")
	if err := r.config.ValidateAuth(); err != nil {
		return err
	}

	token, err := server.NewTokenIssuer(r.config.Auth).Issue(userID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := map[string]any{"token": token, "user": userID}
		if ttl := r.config.Auth.TokenTTL.Duration; ttl > 0 {
			out["expiresAt"] = time.Now().Add(ttl).UTC()
		}
		return r.writeJSON(out, false)
	}
	return r.writePlain("%s\n", token)
}
