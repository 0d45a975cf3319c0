package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_WatchDedupes(t *testing.T) {
	api := &scriptedAPI{steps: []step{{status: "PROCESSING"}}}
	g := NewGroup(context.Background(), api, tick)
	t.Cleanup(g.Stop)

	tr := Resume(5)
	assert.True(t, g.Watch(tr))
	assert.False(t, g.Watch(tr))
	assert.False(t, g.Watch(Resume(5)))
	assert.True(t, g.Active(5))
	assert.Equal(t, 1, g.Len())
}

func TestGroup_IgnoresNonProcessing(t *testing.T) {
	g := NewGroup(context.Background(), &scriptedAPI{steps: []step{{}}}, tick)
	t.Cleanup(g.Stop)

	assert.False(t, g.Watch(NewTracker()))
	assert.Equal(t, 0, g.Len())
}

func TestGroup_FinishedJobLeaves(t *testing.T) {
	api := &scriptedAPI{steps: []step{{status: "COMPLETED", result: "r"}}}
	g := NewGroup(context.Background(), api, tick)
	t.Cleanup(g.Stop)

	tr := Resume(1)
	require.True(t, g.Watch(tr))
	require.Eventually(t, func() bool { return !g.Active(1) }, time.Second, tick)
	assert.Equal(t, StatusCompleted, tr.Snapshot().Status)
}

func TestGroup_CancelAndStop(t *testing.T) {
	api := &scriptedAPI{steps: []step{{status: "PROCESSING"}}}
	g := NewGroup(context.Background(), api, tick)

	a, b := Resume(1), Resume(2)
	require.True(t, g.Watch(a))
	require.True(t, g.Watch(b))

	g.Cancel(1)
	assert.False(t, g.Active(1))
	assert.True(t, g.Active(2))

	g.Stop()
	assert.Equal(t, 0, g.Len())
	assert.False(t, g.Watch(Resume(3)), "stopped group accepts no work")

	frozen := api.Calls()
	time.Sleep(5 * tick)
	assert.Equal(t, frozen, api.Calls())
	assert.Equal(t, StatusProcessing, a.Snapshot().Status)
	assert.Equal(t, StatusProcessing, b.Snapshot().Status)
}

func TestGroup_CancelAllKeepsGroupUsable(t *testing.T) {
	api := &scriptedAPI{steps: []step{{status: "PROCESSING"}}}
	g := NewGroup(context.Background(), api, tick)
	t.Cleanup(g.Stop)

	require.True(t, g.Watch(Resume(1)))
	require.True(t, g.Watch(Resume(2)))

	g.CancelAll()
	assert.Equal(t, 0, g.Len())
	assert.False(t, g.Active(1))

	assert.True(t, g.Watch(Resume(1)), "a cancelled job can be watched again")
	assert.True(t, g.Active(1))
}
