package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/loopauth/internal/models"
	"github.com/desertthunder/loopauth/internal/repositories"
	"github.com/desertthunder/loopauth/internal/server"
	"github.com/desertthunder/loopauth/internal/shared"
	"github.com/desertthunder/loopauth/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Authorize starts the loopback listener, opens the provider's authorization URL and waits for the redirect.
//
// Flags override config.toml, which overrides built-in defaults.
func (r *Runner) Authorize(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.IsSet("port") {
		port := cmd.Int("port")
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: port %d", shared.ErrInvalidFlag, port)
		}
		config.Listener.Port = uint16(port)
	}
	if cmd.IsSet("path") {
		config.Listener.Path = cmd.String("path")
	}
	if cmd.IsSet("auth-url") {
		config.Provider.AuthURL = cmd.String("auth-url")
	}
	if cmd.IsSet("client-id") {
		config.Provider.ClientID = cmd.String("client-id")
	}
	if cmd.IsSet("scope") {
		config.Provider.Scopes = cmd.StringSlice("scope")
	}

	if config.Provider.AuthURL == "" || config.Provider.ClientID == "" {
		return fmt.Errorf("%w: auth_url and client_id must be set in config.toml or with flags", shared.ErrMissingArgument)
	}

	timeout := cmd.Duration("timeout")
	if !cmd.IsSet("timeout") && config.Listener.Timeout != "" {
		if timeout, err = config.Listener.WaitTimeout(); err != nil {
			return err
		}
	}

	state := cmd.String("state")
	if state == "" {
		if state, err = shared.GenerateState(); err != nil {
			return fmt.Errorf("failed to generate state token: %w", err)
		}
	}

	listener, err := server.NewListener(
		server.Config{Port: config.Listener.Port, Path: config.Listener.Path},
		server.WithLogger(shared.WithLogger(r.logger, "component", "listener")),
		server.WithOpener(r.opener),
	)
	if err != nil {
		return err
	}

	oauthConfig := &oauth2.Config{
		ClientID:    config.Provider.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: config.Provider.AuthURL},
		RedirectURL: listener.RedirectURI(),
		Scopes:      config.Provider.Scopes,
	}
	authURL := oauthConfig.AuthCodeURL(state)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)
	} else {
		r.writePlain("→ Waiting for authorization...\n")
	}

	var journal *attemptJournal
	if !cmd.Bool("no-journal") {
		journal = r.beginAttempt(config, cmd, listener.RedirectURI())
		defer journal.close()
	}

	result, startErr := listener.Start(ctx, authURL, state)
	journal.finish(result, startErr)

	if startErr != nil {
		if errors.Is(startErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: no redirect within %s", shared.ErrTimeout, timeout)
		}
		return startErr
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result); err != nil {
			return err
		}
	} else {
		r.printResult(result)
	}

	if err := result.Err(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	return nil
}

func (r *Runner) printResult(result server.Result) {
	if result.Successful {
		r.writePlain("%s\n", ui.Styles.OK("✓ Authorization code received"))
		r.writePlain("%s\n", result.Code)
		r.writePlain("%s\n", ui.Styles.Help("Exchange it for tokens before it expires."))
		return
	}

	r.writePlain("%s\n", ui.Styles.Err("✗ Authorization failed: "+string(result.Outcome)))
	if result.ProviderError != "" {
		r.writePlain("  Provider error: %s\n", result.ProviderError)
	}
	if result.ProviderErrorDescription != "" {
		r.writePlain("  Description: %s\n", result.ProviderErrorDescription)
	}
}

// attemptJournal is the journal row of one authorize run. A nil journal records nothing.
//
// Journal failures are logged and never fail the command.
type attemptJournal struct {
	db      *sql.DB
	repo    *repositories.AttemptRepository
	attempt *models.Attempt
	logger  *log.Logger
}

// beginAttempt records a pending attempt before the listener starts waiting.
func (r *Runner) beginAttempt(config *shared.Config, cmd *cli.Command, redirectURI string) *attemptJournal {
	db, err := r.openJournal(config, cmd)
	if err != nil {
		r.logger.Warn("failed to open attempt journal", "error", err)
		return nil
	}

	repo := repositories.NewAttemptRepository(db)
	attempt := models.NewAttempt(redirectURI, string(server.OutcomePending), "")
	attempt.SetCreatedAt(time.Now().UTC())
	if err := repo.Create(attempt); err != nil {
		r.logger.Warn("failed to record attempt", "error", err)
		db.Close()
		return nil
	}

	return &attemptJournal{db: db, repo: repo, attempt: attempt, logger: r.logger}
}

// finish stores the final outcome. Runs that failed before reaching the provider are removed.
func (j *attemptJournal) finish(result server.Result, startErr error) {
	if j == nil {
		return
	}

	if startErr != nil && result.Outcome == server.OutcomePending {
		if err := j.repo.Delete(j.attempt.ID()); err != nil {
			j.logger.Warn("failed to discard attempt", "id", j.attempt.ID(), "error", err)
		}
		return
	}

	j.attempt.SetOutcome(string(result.Outcome))
	j.attempt.SetProviderError(result.ProviderError)
	if err := j.repo.Update(j.attempt); err != nil {
		j.logger.Warn("failed to update attempt", "id", j.attempt.ID(), "error", err)
		return
	}
	j.logger.Debug("attempt recorded", "id", j.attempt.ID(), "sequence", j.attempt.Sequence())
}

func (j *attemptJournal) close() {
	if j == nil {
		return
	}
	if err := j.db.Close(); err != nil {
		j.logger.Warn("failed to close attempt journal", "error", err)
	}
}
