package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/loopauth/internal/models"
	"github.com/desertthunder/loopauth/internal/repositories"
	"github.com/desertthunder/loopauth/internal/serializer"
	"github.com/desertthunder/loopauth/internal/shared"
	"github.com/desertthunder/loopauth/internal/ui"
	"github.com/urfave/cli/v3"
)

// AttemptsList prints recent attempts from the journal, optionally exporting them to a compressed archive.
func (r *Runner) AttemptsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openJournal(config, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	attempts, err := repositories.NewAttemptRepository(db).List(map[string]any{
		"limit":   cmd.Int("limit"),
		"outcome": cmd.String("outcome"),
	})
	if err != nil {
		return err
	}

	views := make([]models.AttemptView, 0, len(attempts))
	for _, a := range attempts {
		views = append(views, a.View())
	}

	if out := cmd.String("out"); out != "" {
		if err := r.serializer.SerializeCompressed(ctx, views, out); err != nil {
			return fmt.Errorf("failed to export attempts: %w", err)
		}
		r.logger.Info("attempts exported", "file", out, "count", len(views))
		return r.writePlain("✓ %d attempts written to %s\n", len(views), out)
	}

	if cmd.Bool("json") {
		return r.writeJSON(views)
	}
	r.printAttempts(views)
	return nil
}

// AttemptsShow prints attempts from an archive written by [Runner.AttemptsList].
func (r *Runner) AttemptsShow(ctx context.Context, cmd *cli.Command) error {
	file := cmd.StringArg("file")
	if file == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	views, err := serializer.DeserializeCompressed[[]models.AttemptView](r.serializer, file)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(views)
	}
	r.printAttempts(views)
	return nil
}

// AttemptsDelete removes one attempt from the journal.
func (r *Runner) AttemptsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := r.openJournal(config, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewAttemptRepository(db).Delete(id); err != nil {
		return err
	}

	r.logger.Info("attempt deleted", "id", id)
	return r.writePlain("✓ Attempt %s deleted\n", id)
}

func (r *Runner) printAttempts(views []models.AttemptView) {
	if len(views) == 0 {
		r.writePlain("No attempts recorded.\n")
		return
	}

	r.writePlain("%s\n\n", ui.Styles.Title(fmt.Sprintf("%d attempts", len(views))))
	for _, v := range views {
		outcome := ui.Styles.Warn(v.Outcome)
		if v.Outcome == "success" {
			outcome = ui.Styles.OK(v.Outcome)
		}
		r.writePlain("#%d %s %s\n", v.Sequence, v.CreatedAt.Local().Format("2006-01-02 15:04:05"), outcome)
		r.writePlain("   ID: %s\n", v.ID)
		r.writePlain("   Redirect: %s\n", v.RedirectURI)
		if v.ProviderError != "" {
			r.writePlain("   Provider error: %s\n", v.ProviderError)
		}
	}
}
