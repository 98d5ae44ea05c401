package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/loopauth/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "loopauth",
		Usage:    "Capture OAuth2 authorization codes on a loopback redirect listener",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			logger.Error("authorization was not completed", "error", err)
			os.Exit(2)
		}
		logger.Fatalf("application error: %v", err)
	}
}
