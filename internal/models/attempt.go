package models

import (
	"errors"
	"time"
)

var (
	ErrMissingRedirectURI = errors.New("attempt requires a redirect uri")
	ErrMissingOutcome     = errors.New("attempt requires an outcome")
)

// Attempt records one authorization redirect capture. The authorization code is deliberately not part of it.
type Attempt struct {
	id            string
	sequence      int
	redirectURI   string
	outcome       string
	providerError string
	createdAt     time.Time
	deletedAt     *time.Time
}

// NewAttempt creates an Attempt stamped with the current time.
func NewAttempt(redirectURI, outcome, providerError string) *Attempt {
	return &Attempt{
		redirectURI:   redirectURI,
		outcome:       outcome,
		providerError: providerError,
		createdAt:     time.Now().UTC(),
	}
}

func (a *Attempt) ID() string                { return a.id }
func (a *Attempt) Sequence() int             { return a.sequence }
func (a *Attempt) RedirectURI() string       { return a.redirectURI }
func (a *Attempt) Outcome() string           { return a.outcome }
func (a *Attempt) ProviderError() string     { return a.providerError }
func (a *Attempt) CreatedAt() time.Time      { return a.createdAt }
func (a *Attempt) DeletedAt() *time.Time     { return a.deletedAt }
func (a *Attempt) SetID(id string)           { a.id = id }
func (a *Attempt) SetSequence(seq int)       { a.sequence = seq }
func (a *Attempt) SetOutcome(o string)       { a.outcome = o }
func (a *Attempt) SetCreatedAt(t time.Time)  { a.createdAt = t }
func (a *Attempt) SetDeletedAt(t *time.Time) { a.deletedAt = t }

// SetProviderError records the provider's error parameter.
func (a *Attempt) SetProviderError(e string) { a.providerError = e }

// Validate checks required fields.
func (a *Attempt) Validate() error {
	if a.redirectURI == "" {
		return ErrMissingRedirectURI
	}
	if a.outcome == "" {
		return ErrMissingOutcome
	}
	return nil
}

// AttemptView is the exported, serializable form of an [Attempt].
type AttemptView struct {
	ID            string    `json:"id"`
	Sequence      int       `json:"sequence"`
	RedirectURI   string    `json:"redirect_uri"`
	Outcome       string    `json:"outcome"`
	ProviderError string    `json:"provider_error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// View returns the serializable form of a.
func (a *Attempt) View() AttemptView {
	return AttemptView{
		ID:            a.id,
		Sequence:      a.sequence,
		RedirectURI:   a.redirectURI,
		Outcome:       a.outcome,
		ProviderError: a.providerError,
		CreatedAt:     a.createdAt,
	}
}
