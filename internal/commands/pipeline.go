package commands

import (
	"context"
	"errors"

	"github.com/muurk/wifid/internal/params"
)

// Outcome classifies a finished command for logging and metrics.
type Outcome string

const (
	OutcomeQuery    Outcome = "query"    // payload-less status report
	OutcomeSaved    Outcome = "saved"    // persisted, apply deferred
	OutcomeApplied  Outcome = "applied"  // persisted and applied
	OutcomeRejected Outcome = "rejected" // invalid payload, nothing persisted
	OutcomeDegraded Outcome = "degraded" // accepted, but not durable or not fully applied
	OutcomeUnknown  Outcome = "unknown"  // unrecognized command word
)

// Request is one command invocation.
type Request struct {
	// Raw is everything after the command word
	Raw  string
	Args params.Args
}

// Pipeline is the shared configure-then-apply flow. T is the validated payload.
//
// With an empty payload it runs Query. Otherwise it runs Parse, then Persist, then
// either Apply or Confirm. A Parse error stops the flow before anything is persisted.
// A Persist error is reported as a caveat and the flow continues.
type Pipeline[T any] struct {
	// HasPayload reports whether req configures rather than queries
	HasPayload func(req Request) bool
	Parse      func(req Request) (T, error)
	Persist    func(ctx context.Context, v T) error
	// Apply, when set and returning applied=true, replaces Confirm
	Apply   func(ctx context.Context, v T, r *Reply) (applied bool, err error)
	Confirm func(v T, r *Reply)
	Query   func(r *Reply)
}

// Run executes the pipeline for req.
func (p Pipeline[T]) Run(ctx context.Context, req Request, r *Reply) (Outcome, error) {
	hasPayload := p.HasPayload
	if hasPayload == nil {
		hasPayload = func(req Request) bool { return req.Raw != "" }
	}
	if !hasPayload(req) {
		p.Query(r)
		return OutcomeQuery, nil
	}

	v, err := p.Parse(req)
	if err != nil {
		r.Error(err)
		return OutcomeRejected, err
	}

	var persistErr error
	if err := p.Persist(ctx, v); err != nil {
		persistErr = NewPersistenceError(err)
	}

	outcome := OutcomeSaved
	var applyErr error
	applied := false
	if p.Apply != nil {
		applied, applyErr = p.Apply(ctx, v, r)
		if applied {
			outcome = OutcomeApplied
		}
	}
	if !applied && p.Confirm != nil {
		p.Confirm(v, r)
	}

	if persistErr != nil {
		r.Msg("Warning", "settings not saved, change will be lost on restart")
	}

	err = joinErrors(persistErr, applyErr)
	if err != nil {
		outcome = OutcomeDegraded
	}
	return outcome, err
}

// joinErrors keeps a single error unwrapped.
func joinErrors(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	}
	return errors.Join(nonNil...)
}
