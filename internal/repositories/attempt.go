package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/loopauth/internal/models"
	"github.com/desertthunder/loopauth/internal/shared"
)

// ErrAttemptNotFound is returned when no live attempt has the requested ID.
var ErrAttemptNotFound = errors.New("attempt not found")

// AttemptRepository implements [models.Repository] for [models.Attempt] persistence.
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new [AttemptRepository] with the given database connection
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create inserts a new attempt with generated ID and sequence
func (r *AttemptRepository) Create(attempt *models.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "attempts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	_, err = r.db.Exec(`
		INSERT INTO attempts (id, sequence, redirect_uri, outcome, provider_error, created_at) VALUES (?, ?, ?, ?, ?, ?)
	`, id, sequence, attempt.RedirectURI(), attempt.Outcome(), attempt.ProviderError(), attempt.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}

	attempt.SetID(id)
	attempt.SetSequence(sequence)
	return nil
}

// Get retrieves an attempt by ID, excluding soft-deleted attempts
func (r *AttemptRepository) Get(id string) (*models.Attempt, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, redirect_uri, outcome, provider_error, created_at, deleted_at
		FROM attempts
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attempt: %w", err)
	}
	return attempt, nil
}

// Update rewrites the outcome and provider error of an existing attempt
func (r *AttemptRepository) Update(attempt *models.Attempt) error {
	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	res, err := r.db.Exec(`
		UPDATE attempts SET outcome = ?, provider_error = ? WHERE id = ? AND deleted_at IS NULL
	`, attempt.Outcome(), attempt.ProviderError(), attempt.ID())
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}

	return requireRow(res, attempt.ID())
}

// Delete soft-deletes an attempt
func (r *AttemptRepository) Delete(id string) error {
	res, err := r.db.Exec(`UPDATE attempts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}

	return requireRow(res, id)
}

// List returns live attempts newest first.
//
// Supported criteria: "outcome" (string) filters by outcome, "limit" (int) caps the result size.
func (r *AttemptRepository) List(criteria map[string]any) ([]*models.Attempt, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []any
	)

	if outcome, ok := criteria["outcome"].(string); ok && outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, outcome)
	}

	query := "SELECT id, sequence, redirect_uri, outcome, provider_error, created_at, deleted_at FROM attempts WHERE " +
		strings.Join(where, " AND ") + " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}

	return attempts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s scanner) (*models.Attempt, error) {
	var (
		id, redirectURI, outcome, providerError string
		sequence                                int
		createdAt                               time.Time
		deletedAt                               sql.NullTime
	)

	if err := s.Scan(&id, &sequence, &redirectURI, &outcome, &providerError, &createdAt, &deletedAt); err != nil {
		return nil, err
	}

	attempt := models.NewAttempt(redirectURI, outcome, providerError)
	attempt.SetID(id)
	attempt.SetSequence(sequence)
	attempt.SetCreatedAt(createdAt)
	if deletedAt.Valid {
		attempt.SetDeletedAt(&deletedAt.Time)
	}
	return attempt, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	return nil
}
