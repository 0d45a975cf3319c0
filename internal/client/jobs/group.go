package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// Group runs independent pollers, at most one per job id. Stop cancels
// them all and waits until every goroutine has exited.
type Group struct {
	api      StatusAPI
	interval time.Duration
	opts     []Option

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu     sync.Mutex
	active map[int64]*watch
}

type watch struct {
	cancel context.CancelFunc
	poller *Poller
}

func NewGroup(ctx context.Context, api StatusAPI, interval time.Duration, opts ...Option) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{
		api:      api,
		interval: interval,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		active:   make(map[int64]*watch),
	}
}

// Watch starts polling t unless its job is already watched or the group is
// stopped. It reports whether a poller was started.
func (g *Group) Watch(t *Tracker) bool {
	job := t.Snapshot()
	if job.Status != StatusProcessing {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ctx.Err() != nil {
		return false
	}
	if _, ok := g.active[job.ID]; ok {
		return false
	}

	ctx, cancel := context.WithCancel(g.ctx)
	w := &watch{cancel: cancel, poller: NewPoller(g.api, g.interval, g.opts...)}
	g.active[job.ID] = w

	g.wg.Go(func() {
		defer cancel()
		defer g.remove(job.ID, w)
		_ = w.poller.Run(ctx, t)
	})
	return true
}

func (g *Group) remove(id int64, w *watch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[id] == w {
		delete(g.active, id)
	}
}

// Cancel stops polling job id without a transition.
func (g *Group) Cancel(id int64) {
	g.mu.Lock()
	w, ok := g.active[id]
	if ok {
		delete(g.active, id)
	}
	g.mu.Unlock()

	if ok {
		w.cancel()
	}
}

// CancelAll stops every poller without waiting. The group stays usable.
func (g *Group) CancelAll() {
	g.mu.Lock()
	ws := g.active
	g.active = make(map[int64]*watch)
	g.mu.Unlock()

	for _, w := range ws {
		w.cancel()
	}
}

func (g *Group) Active(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[id]
	return ok
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}

// Stop cancels every poller and waits for them.
func (g *Group) Stop() {
	g.mu.Lock()
	g.cancel()
	g.mu.Unlock()
	g.wg.Wait()
}
