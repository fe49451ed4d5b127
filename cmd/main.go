package main

import (
	"context"
	"os"

	"github.com/desertthunder/cpx/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Fatalf("failed to load environment: %v", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})
	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
