// Package jobs models a style transfer job on the client: its status state
// machine, the poller that follows it to a terminal status and a group of
// pollers for jobs listed in the library.
package jobs

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the client-side view of a job's status.
type Status string

const (
	// StatusIdle means no job exists yet.
	StatusIdle       Status = "IDLE"
	StatusPending    Status = "PENDING"
	StatusUploading  Status = "UPLOADING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var ErrEmptyStatus = errors.New("empty status")

// ParseStatus normalises a status reported by the server. Statuses the
// client does not know are returned as-is; the poller treats them as still
// running.
func ParseStatus(s string) (Status, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", ErrEmptyStatus
	}
	return Status(s), nil
}

// Terminal reports whether no further transition may happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) String() string { return string(s) }

// isValidTransition enforces UPLOADING -> PROCESSING -> {COMPLETED | FAILED},
// with UPLOADING -> FAILED for a rejected submission.
func isValidTransition(from, to Status) bool {
	switch from {
	case StatusUploading:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

type transitionError struct {
	from, to Status
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.from, e.to)
}

func (e *transitionError) Unwrap() error { return ErrInvalidTransition }
