package upload

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/dmitrijs2005/neuralart/internal/client/jobs"
	"github.com/dmitrijs2005/neuralart/internal/client/notice"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
	"github.com/dmitrijs2005/neuralart/internal/logging"
)

// InvalidFileMessage is the notice shown when a non-image is selected.
const InvalidFileMessage = "Whoops! Please drop a valid image file (JPEG, PNG, etc.)."

var (
	ErrIncomplete       = errors.New("both a content and a style image are required")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
)

type Submitter interface {
	Submit(ctx context.Context, content, style client.Upload) (int64, error)
}

// JobPoller is the part of jobs.Poller the coordinator drives.
type JobPoller interface {
	Start(ctx context.Context, t *jobs.Tracker) error
	Stop()
}

type Notifier interface {
	Push(msg string) notice.Notice
}

type selection struct {
	file    File
	preview Preview
}

// Coordinator owns the two selected files, their previews and the job they
// produce. Polling runs under a context owned by the coordinator, so
// Suspend and Dispose stop it regardless of the caller that submitted.
type Coordinator struct {
	api      Submitter
	gate     session.Gate
	poller   JobPoller
	previews PreviewStore
	notices  Notifier
	logger   logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	slots      [2]*selection
	tracker    *jobs.Tracker
	handedOff  int64
	pollCancel context.CancelFunc
	submitting bool
	disposed   bool
}

func NewCoordinator(
	ctx context.Context,
	api Submitter,
	gate session.Gate,
	poller JobPoller,
	previews PreviewStore,
	notices Notifier,
	logger logging.Logger,
) *Coordinator {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Coordinator{
		api:      api,
		gate:     gate,
		poller:   poller,
		previews: previews,
		notices:  notices,
		logger:   logger.With("component", "upload"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Select puts f into slot. A non-image is rejected with ErrInvalidFileType
// and a notice; the previous selection stays as it was.
func (c *Coordinator) Select(slot Slot, f File) error {
	if err := Validate(f); err != nil {
		if c.notices != nil {
			c.notices.Push(InvalidFileMessage)
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old := c.slots[slot]; old != nil {
		c.release(old)
	}

	sel := &selection{file: f}
	p, err := c.previews.Create(f)
	if err != nil {
		c.logger.Warn(c.ctx, "create preview", "slot", slot.String(), "error", err)
	} else {
		sel.preview = p
	}
	c.slots[slot] = sel
	return nil
}

// SelectPath reads path and selects it.
func (c *Coordinator) SelectPath(slot Slot, path string) error {
	f, err := FromPath(path)
	if err != nil {
		return err
	}
	return c.Select(slot, f)
}

func (c *Coordinator) release(sel *selection) {
	if sel.preview.Ref == "" {
		return
	}
	if err := c.previews.Release(sel.preview); err != nil {
		c.logger.Warn(c.ctx, "release preview", "ref", sel.preview.Ref, "error", err)
	}
	sel.preview = Preview{}
}

// Selected returns the file and preview in slot.
func (c *Coordinator) Selected(slot Slot) (File, Preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := c.slots[slot]
	if sel == nil {
		return File{}, Preview{}, false
	}
	return sel.file, sel.preview, true
}

// Ready returns the error Submit would fail with before any request, or
// nil when a submission can go out.
func (c *Coordinator) Ready() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyLocked()
}

func (c *Coordinator) readyLocked() error {
	switch {
	case c.submitting:
		return ErrSubmitInProgress
	case c.slots[SlotContent] == nil || c.slots[SlotStyle] == nil:
		return ErrIncomplete
	case c.disposed || !c.gate.IsAuthenticated():
		return session.ErrNotAuthenticated
	}
	return nil
}

// CanSubmit reports whether Submit would issue a request.
func (c *Coordinator) CanSubmit() bool { return c.Ready() == nil }

// Submit sends both files and hands the accepted job to the poller. It
// returns before any network call when a file is missing or the session
// is not authenticated. A rejected request fails the job without retry.
func (c *Coordinator) Submit(ctx context.Context) (int64, error) {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	content := c.slots[SlotContent].file.upload()
	style := c.slots[SlotStyle].file.upload()
	tracker := jobs.NewTracker()
	c.tracker = tracker
	c.handedOff = 0
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	c.poller.Stop()

	c.logger.Info(ctx, "submitting job", "content", content.Name, "style", style.Name)
	id, err := c.api.Submit(ctx, content, style)
	if err != nil {
		_ = tracker.Fail()
		if client.IsAuthFailure(err) {
			c.gate.HandleAuthFailure(ctx)
		}
		c.logger.Info(ctx, "submission failed", "error", err)
		return 0, err
	}
	if err := tracker.Accept(id); err != nil {
		return 0, err
	}
	c.logger.Info(ctx, "job accepted", "job_id", id)

	c.mu.Lock()
	if c.tracker != tracker || c.disposed {
		c.mu.Unlock()
		return id, nil
	}
	if !c.gate.IsAuthenticated() {
		c.handOffLocked()
		c.mu.Unlock()
		return id, session.ErrNotAuthenticated
	}
	// A Suspend from here on cancels pollCtx, so the poller exits at once.
	pollCtx, cancel := context.WithCancel(c.ctx)
	c.pollCancel = cancel
	c.mu.Unlock()

	if err := c.poller.Start(pollCtx, tracker); err != nil {
		return id, err
	}
	return id, nil
}

// Suspend stops polling the current job when the session ends. It never
// waits for the poller, so it may run inside a session listener. A job
// still running on the server is handed off: Status goes back to IDLE and
// HandedOff names the job.
func (c *Coordinator) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
	if c.tracker != nil && c.tracker.Snapshot().Status == jobs.StatusProcessing {
		c.handOffLocked()
	}
}

func (c *Coordinator) handOffLocked() {
	c.handedOff = c.tracker.Snapshot().ID
	c.tracker = nil
	c.logger.Info(c.ctx, "job handed off to the library", "job_id", c.handedOff)
}

// HandedOff returns the job that was still running when its polling was
// cut short by the end of the session.
func (c *Coordinator) HandedOff() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handedOff, c.handedOff != 0
}

// Status is IDLE until a submission was made.
func (c *Coordinator) Status() jobs.Status {
	if j, ok := c.Job(); ok {
		return j.Status
	}
	return jobs.StatusIdle
}

func (c *Coordinator) Job() (jobs.Job, bool) {
	c.mu.Lock()
	t := c.tracker
	c.mu.Unlock()
	if t == nil {
		return jobs.Job{}, false
	}
	return t.Snapshot(), true
}

// Reset stops polling, releases both previews and returns to IDLE.
func (c *Coordinator) Reset() {
	c.poller.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Coordinator) clearLocked() {
	for i, sel := range c.slots {
		if sel != nil {
			c.release(sel)
			c.slots[i] = nil
		}
	}
	c.tracker = nil
	c.handedOff = 0
	if c.pollCancel != nil {
		c.pollCancel()
		c.pollCancel = nil
	}
}

// Dispose stops polling for good and releases every preview.
func (c *Coordinator) Dispose() {
	c.cancel()
	c.poller.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	c.clearLocked()
}
