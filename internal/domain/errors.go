package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced across the service boundary. All are local to a
// single session.
var (
	ErrInvalidTurn        = errors.New("turn has no text and no attachments")
	ErrTooManyAttachments = errors.New("too many attachments")
	ErrUnknownVersion     = errors.New("unknown preview version")
	ErrNothingToConfirm   = errors.New("no active preview to confirm")
	ErrSessionBusy        = errors.New("session busy")
	ErrSessionNotFound    = errors.New("session not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrNoPendingRetry     = errors.New("no pending retry on session")
	ErrInvoiceNotFound    = errors.New("invoice not found")
)

// CommitError wraps a render/persist or policy failure during confirm. The
// session stays uncommitted and the caller may retry.
type CommitError struct {
	Reason string
	Err    error
}

func (e *CommitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("commit failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("commit failed: %s", e.Reason)
}

func (e *CommitError) Unwrap() error { return e.Err }
