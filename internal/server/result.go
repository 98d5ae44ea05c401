package server

import (
	"crypto/subtle"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
)

// Outcome classifies how a [Listener.Start] call ended.
type Outcome string

const (
	OutcomePending       Outcome = "pending"
	OutcomeSuccess       Outcome = "success"
	OutcomeProviderError Outcome = "provider_error"
	OutcomeMalformed     Outcome = "malformed"
	OutcomeStateMismatch Outcome = "state_mismatch"
	OutcomeCancelled     Outcome = "cancelled"
)

// Result is the authorization outcome recorded by a [Listener].
//
// Successful implies a non-empty Code and, when an expected state was given, a matching state.
type Result struct {
	Code                     string  `json:"code,omitempty"`
	Successful               bool    `json:"successful"`
	Outcome                  Outcome `json:"outcome"`
	ProviderError            string  `json:"provider_error,omitempty"`
	ProviderErrorDescription string  `json:"provider_error_description,omitempty"`
}

// Err maps the outcome to a sentinel error. It returns nil only for [OutcomeSuccess].
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeProviderError:
		if r.ProviderErrorDescription != "" {
			return fmt.Errorf("%w: %s - %s", ErrProviderError, r.ProviderError, r.ProviderErrorDescription)
		}
		return fmt.Errorf("%w: %s", ErrProviderError, r.ProviderError)
	case OutcomeMalformed:
		return ErrMalformedResponse
	case OutcomeStateMismatch:
		return ErrStateMismatch
	case OutcomeCancelled:
		return ErrCancelled
	default:
		return ErrNoCallback
	}
}

// validate applies the redirect checks in order; the first failing check decides the outcome.
func validate(q url.Values, expectedState string, logger *log.Logger) Result {
	if q.Has("error") {
		res := Result{
			Outcome:                  OutcomeProviderError,
			ProviderError:            q.Get("error"),
			ProviderErrorDescription: q.Get("error_description"),
		}
		logger.Warn("provider returned an error", "error", res.ProviderError, "description", res.ProviderErrorDescription)
		return res
	}

	// An empty code can never be redeemed; an empty state is still a state.
	code, state := q.Get("code"), q.Get("state")
	if code == "" || !q.Has("state") {
		logger.Warn("malformed authorization response", "has_code", code != "", "has_state", q.Has("state"))
		return Result{Outcome: OutcomeMalformed}
	}

	if expectedState != "" && subtle.ConstantTimeCompare([]byte(expectedState), []byte(state)) != 1 {
		logger.Warn("state mismatch, possible forged redirect")
		return Result{Outcome: OutcomeStateMismatch}
	}

	logger.Info("authorization code received")
	return Result{Code: code, Successful: true, Outcome: OutcomeSuccess}
}
