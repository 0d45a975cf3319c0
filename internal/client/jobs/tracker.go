package jobs

import (
	"errors"
	"sync"
)

var ErrInvalidTransition = errors.New("invalid job transition")

// Job is a snapshot of a tracked job. ID is zero until the server assigned
// one; Result is set only for COMPLETED.
type Job struct {
	ID     int64
	Status Status
	Result string
}

// Tracker owns one job's status and rejects transitions that would break
// monotonicity.
type Tracker struct {
	mu  sync.RWMutex
	job Job
}

// NewTracker starts a job that is being uploaded.
func NewTracker() *Tracker {
	return &Tracker{job: Job{Status: StatusUploading}}
}

// Resume tracks a job the server already accepted, e.g. one found in the
// library still running.
func Resume(id int64) *Tracker {
	return &Tracker{job: Job{ID: id, Status: StatusProcessing}}
}

func (t *Tracker) transition(to Status, apply func(*Job)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isValidTransition(t.job.Status, to) {
		return &transitionError{from: t.job.Status, to: to}
	}
	t.job.Status = to
	if apply != nil {
		apply(&t.job)
	}
	return nil
}

// Accept records the server-assigned id and moves to PROCESSING.
func (t *Tracker) Accept(id int64) error {
	return t.transition(StatusProcessing, func(j *Job) { j.ID = id })
}

func (t *Tracker) Complete(result string) error {
	return t.transition(StatusCompleted, func(j *Job) { j.Result = result })
}

func (t *Tracker) Fail() error {
	return t.transition(StatusFailed, nil)
}

// Snapshot returns a copy of the current job.
func (t *Tracker) Snapshot() Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.job
}
