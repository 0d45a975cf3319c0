package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/neuralart/internal/client/client"
	"github.com/dmitrijs2005/neuralart/internal/client/session"
	"github.com/dmitrijs2005/neuralart/internal/logging"
)

// DefaultInterval is the pause between two status queries.
const DefaultInterval = 3 * time.Second

var ErrNotProcessing = errors.New("job is not processing")

// StatusAPI is the status endpoint the poller queries.
type StatusAPI interface {
	Status(ctx context.Context, id int64) (client.StatusResponse, error)
}

// Observer receives the job after every transition the poller applies.
// It runs on the poller goroutine and must not call Stop.
type Observer func(Job)

type settings struct {
	gate     session.Gate
	logger   logging.Logger
	observer Observer
}

type Option func(*settings)

// WithGate makes the poller stop once the session is gone and report
// authorization failures to it.
func WithGate(g session.Gate) Option {
	return func(s *settings) { s.gate = g }
}

func WithLogger(l logging.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}

func newSettings(opts []Option) settings {
	s := settings{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Poller follows one job at a time from PROCESSING to a terminal status.
// Ticks are strictly sequential: the next one is armed only after the
// previous response was handled.
type Poller struct {
	api      StatusAPI
	interval time.Duration
	settings

	polls atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(api StatusAPI, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		interval: interval,
		settings: newSettings(opts),
	}
}

// Polls is the number of status requests issued so far.
func (p *Poller) Polls() int64 { return p.polls.Load() }

// Start begins a recurrence for t in the background, stopping any previous
// one first. t must be PROCESSING.
func (p *Poller) Start(ctx context.Context, t *Tracker) error {
	if st := t.Snapshot().Status; st != StatusProcessing {
		return fmt.Errorf("%w: %s", ErrNotProcessing, st)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()
		if err := p.Run(ctx, t); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Debug(ctx, "polling ended", "job_id", t.Snapshot().ID, "error", err)
		}
	}()
	return nil
}

// Stop cancels the active recurrence, if any, and waits for it to exit.
// A response arriving after Stop is discarded.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

// IsActive reports whether a recurrence is running.
func (p *Poller) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done is closed when the current recurrence exits. Without one it is
// already closed.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.done
}

// Run polls in the calling goroutine until t is terminal, ctx is done or
// the session is lost. It returns nil once t is COMPLETED and the cause when
// t was FAILED; ctx.Err() or session.ErrNotAuthenticated mean it stopped
// without a transition.
func (p *Poller) Run(ctx context.Context, t *Tracker) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if p.gate != nil && !p.gate.IsAuthenticated() {
			p.logger.Info(ctx, "session lost, polling stopped", "job_id", t.Snapshot().ID)
			return session.ErrNotAuthenticated
		}

		finished, err := p.tick(ctx, t)
		if finished {
			return err
		}
		timer.Reset(p.interval)
	}
}

func (p *Poller) tick(ctx context.Context, t *Tracker) (bool, error) {
	id := t.Snapshot().ID
	p.polls.Add(1)

	resp, err := p.api.Status(ctx, id)
	if ctx.Err() != nil {
		return true, ctx.Err()
	}
	if err != nil {
		// A rejected session says nothing about the job; it keeps running
		// on the server and stays PROCESSING here.
		if client.IsAuthFailure(err) && p.gate != nil {
			p.logger.Info(ctx, "session rejected, polling stopped", "job_id", id)
			p.gate.HandleAuthFailure(ctx)
			return true, err
		}
		p.fail(ctx, t, err)
		return true, err
	}
	if p.gate != nil && !p.gate.IsAuthenticated() {
		return true, session.ErrNotAuthenticated
	}

	status, err := ParseStatus(resp.Status)
	if err != nil {
		err = fmt.Errorf("%w: %v", client.ErrMalformedResponse, err)
		p.fail(ctx, t, err)
		return true, err
	}

	switch status {
	case StatusCompleted:
		if resp.Result == nil || *resp.Result == "" {
			err := fmt.Errorf("%w: completed without result", client.ErrMalformedResponse)
			p.fail(ctx, t, err)
			return true, err
		}
		if err := t.Complete(*resp.Result); err != nil {
			return true, err
		}
		p.logger.Info(ctx, "job completed", "job_id", id, "result", *resp.Result)
		p.emit(t)
		return true, nil
	case StatusFailed:
		err := fmt.Errorf("job %d failed on the server", id)
		p.fail(ctx, t, err)
		return true, err
	default:
		p.logger.Debug(ctx, "job still running", "job_id", id, "status", status)
		return false, nil
	}
}

func (p *Poller) fail(ctx context.Context, t *Tracker, cause error) {
	if err := t.Fail(); err != nil {
		return
	}
	p.logger.Info(ctx, "job failed", "job_id", t.Snapshot().ID, "cause", cause)
	p.emit(t)
}

func (p *Poller) emit(t *Tracker) {
	if p.observer != nil {
		p.observer(t.Snapshot())
	}
}
