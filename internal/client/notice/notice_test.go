package notice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBoard() (*Board, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBoard(3 * time.Second)
	b.now = c.now
	return b, c
}

func TestBoard_Expiry(t *testing.T) {
	b, c := newTestBoard()

	b.Push("first")
	c.t = c.t.Add(2 * time.Second)
	b.Push("second")

	require.Len(t, b.Active(), 2)

	c.t = c.t.Add(1500 * time.Millisecond)
	active := b.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)

	c.t = c.t.Add(2 * time.Second)
	assert.Empty(t, b.Active())
}

func TestBoard_Dismiss(t *testing.T) {
	b, _ := newTestBoard()

	n1 := b.Push("a")
	n2 := b.Push("b")
	assert.NotEqual(t, n1.ID, n2.ID)

	assert.True(t, b.Dismiss(n1.ID))
	assert.False(t, b.Dismiss(n1.ID))

	active := b.Active()
	require.Len(t, active, 1)
	assert.Equal(t, n2.ID, active[0].ID)

	b.Clear()
	assert.Empty(t, b.Active())
}

func TestNewBoard_DefaultTTL(t *testing.T) {
	b := NewBoard(0)
	assert.Equal(t, DefaultTTL, b.ttl)
}
