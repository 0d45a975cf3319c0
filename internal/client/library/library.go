// Package library lists the user's jobs and deletes them in two steps:
// a local confirmation mark, then the remote deletion.
package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/dmitrijs2005/neuralart/internal/client/jobs"
	"github.com/dmitrijs2005/neuralart/internal/client/notice"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
	"github.com/dmitrijs2005/neuralart/internal/logging"
	"github.com/samber/lo"
)

const (
	ListFailedMessage   = "Could not load your images."
	DeleteFailedMessage = "Could not delete the image. Please try again."
)

// API is the remote surface the controller uses.
type API interface {
	Library(ctx context.Context) ([]client.LibraryItem, error)
	Delete(ctx context.Context, id int64) error
	Status(ctx context.Context, id int64) (client.StatusResponse, error)
}

type Notifier interface {
	Push(msg string) notice.Notice
}

// Entry is a job as the library shows it.
type Entry struct {
	ID     int64
	Status jobs.Status
	Result string
}

func (e Entry) Completed() bool { return e.Status == jobs.StatusCompleted && e.Result != "" }

type Controller struct {
	api     API
	gate    session.Gate
	notices Notifier
	logger  logging.Logger
	watches *jobs.Group

	mu      sync.Mutex
	entries []Entry
	pending *int64
}

// NewController builds a controller. interval paces the pollers that
// WatchPending starts for jobs still running.
func NewController(ctx context.Context, api API, gate session.Gate, notices Notifier, logger logging.Logger, interval time.Duration) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Controller{
		api:     api,
		gate:    gate,
		notices: notices,
		logger:  logger.With("component", "library"),
	}
	c.watches = jobs.NewGroup(ctx, api, interval,
		jobs.WithGate(gate),
		jobs.WithLogger(c.logger),
		jobs.WithObserver(c.apply),
	)
	return c
}

func toEntry(it client.LibraryItem) Entry {
	e := Entry{ID: it.ID, Status: jobs.StatusPending}
	if s, err := jobs.ParseStatus(it.Status); err == nil {
		e.Status = s
	}
	if it.Result != nil {
		e.Result = *it.Result
	}
	return e
}

// List replaces the local list with the server's. On failure the current
// list is kept and a notice is shown, unless the session was rejected.
func (c *Controller) List(ctx context.Context) ([]Entry, error) {
	if !c.gate.IsAuthenticated() {
		return nil, session.ErrNotAuthenticated
	}

	items, err := c.api.Library(ctx)
	if err != nil {
		if client.IsAuthFailure(err) {
			c.gate.HandleAuthFailure(ctx)
			return nil, err
		}
		c.push(ListFailedMessage)
		c.logger.Warn(ctx, "list library", "error", err)
		return nil, err
	}
	if !c.gate.IsAuthenticated() {
		return nil, session.ErrNotAuthenticated
	}

	entries := lo.Map(lo.UniqBy(items, func(it client.LibraryItem) int64 { return it.ID }),
		func(it client.LibraryItem, _ int) Entry { return toEntry(it) })

	c.mu.Lock()
	c.entries = entries
	if c.pending != nil && !lo.ContainsBy(entries, func(e Entry) bool { return e.ID == *c.pending }) {
		c.pending = nil
	}
	out := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug(ctx, "library loaded", "count", len(out))
	return out, nil
}

func (c *Controller) snapshotLocked() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entries returns the local list.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Entry(id int64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Find(c.entries, func(e Entry) bool { return e.ID == id })
}

// RequestDelete marks id as pending confirmation. No request is sent.
func (c *Controller) RequestDelete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !lo.ContainsBy(c.entries, func(e Entry) bool { return e.ID == id }) {
		return fmt.Errorf("entry %d: %w", id, client.ErrNotFound)
	}
	c.pending = &id
	return nil
}

// Pending returns the id waiting for confirmation.
func (c *Controller) Pending() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0, false
	}
	return *c.pending, true
}

// CancelDelete clears the pending mark.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// ConfirmDelete deletes the pending entry remotely and removes it locally
// only once the server agreed. A 404 counts as already deleted. It reports
// whether an entry was removed; with nothing pending it does nothing.
func (c *Controller) ConfirmDelete(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return false, nil
	}
	id := *c.pending
	c.mu.Unlock()

	if !c.gate.IsAuthenticated() {
		return false, session.ErrNotAuthenticated
	}

	err := c.api.Delete(ctx, id)
	switch {
	case err == nil, errors.Is(err, client.ErrNotFound):
	case client.IsAuthFailure(err):
		c.gate.HandleAuthFailure(ctx)
		return false, err
	default:
		c.push(DeleteFailedMessage)
		c.logger.Warn(ctx, "delete entry", "id", id, "error", err)
		return false, err
	}

	c.watches.Cancel(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil && *c.pending == id {
		c.pending = nil
	}
	before := len(c.entries)
	c.entries = lo.Filter(c.entries, func(e Entry, _ int) bool { return e.ID != id })
	removed := len(c.entries) < before
	if removed {
		c.logger.Info(ctx, "entry deleted", "id", id)
	}
	return removed, nil
}

// WatchPending polls every listed job that is still running and updates
// its entry when it finishes. It returns how many pollers were started.
func (c *Controller) WatchPending() int {
	c.mu.Lock()
	running := lo.Filter(c.entries, func(e Entry, _ int) bool { return !e.Status.Terminal() })
	c.mu.Unlock()

	started := 0
	for _, e := range running {
		if c.watches.Watch(jobs.Resume(e.ID)) {
			started++
		}
	}
	return started
}

// StopWatching cancels every poller and forgets the list and the pending
// mark. It does not block, so it is safe to call from a session listener.
func (c *Controller) StopWatching() {
	c.watches.CancelAll()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.pending = nil
}

// Watching reports whether job id is being polled.
func (c *Controller) Watching(id int64) bool { return c.watches.Active(id) }

// apply folds a poller transition into the list.
func (c *Controller) apply(j jobs.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID == j.ID {
			c.entries[i].Status = j.Status
			c.entries[i].Result = j.Result
		}
	}
}

func (c *Controller) push(msg string) {
	if c.notices != nil {
		c.notices.Push(msg)
	}
}

// Dispose stops all pollers.
func (c *Controller) Dispose() {
	c.watches.Stop()
}
