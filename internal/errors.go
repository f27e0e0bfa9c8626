package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed import data. Records lists the indexes of
// the offending entries in the imported array.
type ValidationError struct {
	Reason  string
	Records []int
}

func (e *ValidationError) Error() string {
	if len(e.Records) == 0 {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	idx := make([]string, len(e.Records))
	for i, r := range e.Records {
		idx[i] = fmt.Sprintf("%d", r)
	}
	return fmt.Sprintf("validation error: %s (records: %s)", e.Reason, strings.Join(idx, ", "))
}

// TransportError represents a failed inference call for any reason other than
// cancellation.
type TransportError struct {
	Op  string // "chat", "models"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError represents errors reading or writing the durable state
// slot.
type PersistenceError struct {
	Op  string // "open", "load", "save", "parse"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsCancellation reports whether err stems from a user-initiated stop rather
// than a transport failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
