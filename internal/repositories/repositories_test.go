package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/loopauth/internal/models"
	"github.com/desertthunder/loopauth/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestAttemptRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))
		attempt := models.NewAttempt("http://127.0.0.1:3000/", "success", "")

		if err := repo.Create(attempt); err != nil {
			t.Fatalf("failed to create attempt: %v", err)
		}

		if attempt.ID() == "" {
			t.Error("attempt ID should be set after creation")
		}
		if attempt.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", attempt.Sequence())
		}
	})

	t.Run("Create validates", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))

		err := repo.Create(models.NewAttempt("", "success", ""))
		if !errors.Is(err, models.ErrMissingRedirectURI) {
			t.Errorf("expected ErrMissingRedirectURI, got %v", err)
		}

		err = repo.Create(models.NewAttempt("http://127.0.0.1:3000/", "", ""))
		if !errors.Is(err, models.ErrMissingOutcome) {
			t.Errorf("expected ErrMissingOutcome, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))
		attempt := models.NewAttempt("http://127.0.0.1:3000/", "provider_error", "access_denied")

		if err := repo.Create(attempt); err != nil {
			t.Fatalf("failed to create attempt: %v", err)
		}

		retrieved, err := repo.Get(attempt.ID())
		if err != nil {
			t.Fatalf("failed to get attempt: %v", err)
		}

		if retrieved.RedirectURI() != attempt.RedirectURI() {
			t.Errorf("expected redirect uri %s, got %s", attempt.RedirectURI(), retrieved.RedirectURI())
		}
		if retrieved.ProviderError() != "access_denied" {
			t.Errorf("expected provider error access_denied, got %s", retrieved.ProviderError())
		}
		if !retrieved.CreatedAt().Equal(attempt.CreatedAt()) {
			t.Errorf("expected created_at %v, got %v", attempt.CreatedAt(), retrieved.CreatedAt())
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))

		if _, err := repo.Get("missing"); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("expected ErrAttemptNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))
		attempt := models.NewAttempt("http://127.0.0.1:3000/", "pending", "")

		if err := repo.Create(attempt); err != nil {
			t.Fatalf("failed to create attempt: %v", err)
		}

		attempt.SetOutcome("state_mismatch")
		if err := repo.Update(attempt); err != nil {
			t.Fatalf("failed to update attempt: %v", err)
		}

		retrieved, err := repo.Get(attempt.ID())
		if err != nil {
			t.Fatalf("failed to get attempt: %v", err)
		}
		if retrieved.Outcome() != "state_mismatch" {
			t.Errorf("expected outcome state_mismatch, got %s", retrieved.Outcome())
		}

		ghost := models.NewAttempt("http://127.0.0.1:3000/", "success", "")
		ghost.SetID("missing")
		if err := repo.Update(ghost); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("expected ErrAttemptNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))
		attempt := models.NewAttempt("http://127.0.0.1:3000/", "success", "")

		if err := repo.Create(attempt); err != nil {
			t.Fatalf("failed to create attempt: %v", err)
		}

		if err := repo.Delete(attempt.ID()); err != nil {
			t.Fatalf("failed to delete attempt: %v", err)
		}

		if _, err := repo.Get(attempt.ID()); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("deleted attempt should not be found, got %v", err)
		}

		if err := repo.Delete(attempt.ID()); !errors.Is(err, ErrAttemptNotFound) {
			t.Errorf("second delete should fail, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewAttemptRepository(setupTestDB(t))

		for _, outcome := range []string{"success", "malformed", "success", "state_mismatch"} {
			if err := repo.Create(models.NewAttempt("http://127.0.0.1:3000/", outcome, "")); err != nil {
				t.Fatalf("failed to create attempt: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list attempts: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("expected 4 attempts, got %d", len(all))
		}
		if all[0].Sequence() != 4 || all[0].Outcome() != "state_mismatch" {
			t.Errorf("expected newest first, got #%d %s", all[0].Sequence(), all[0].Outcome())
		}

		successes, err := repo.List(map[string]any{"outcome": "success"})
		if err != nil {
			t.Fatalf("failed to list attempts: %v", err)
		}
		if len(successes) != 2 {
			t.Errorf("expected 2 successful attempts, got %d", len(successes))
		}

		limited, err := repo.List(map[string]any{"limit": 1})
		if err != nil {
			t.Fatalf("failed to list attempts: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected 1 attempt, got %d", len(limited))
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "attempts")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown table")
	}
}
