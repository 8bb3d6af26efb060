package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int }

func newCounterRegistry() (*Registry[*counter], *int) {
	created := 0
	r := NewRegistry(0, func(session, name string) *counter {
		created++
		return &counter{}
	})
	return r, &created
}

func TestGetIsScopedBySessionAndName(t *testing.T) {
	r, created := newCounterRegistry()

	a := r.Get("s1", "announcement")
	a.n = 5
	assert.Same(t, a, r.Get("s1", "announcement"))
	assert.NotSame(t, a, r.Get("s1", "gallery"))
	assert.NotSame(t, a, r.Get("s2", "announcement"))
	assert.Equal(t, 3, *created)
}

func TestDropRemovesOnlyThatSession(t *testing.T) {
	r, _ := newCounterRegistry()
	r.Get("s1", "a")
	r.Get("s1", "b")
	r.Get("s2", "a")

	r.Drop("s1")
	require.Equal(t, 1, r.Len())
	r.Get("s2", "a")
	assert.Equal(t, 1, r.Len())
}

func TestSweepForgetsIdleEntries(t *testing.T) {
	r, _ := newCounterRegistry()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base }
	r.Get("old", "a")
	r.now = func() time.Time { return base.Add(time.Hour) }
	r.Get("new", "a")

	removed := r.Sweep(base.Add(30 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, r.Len())
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	r, _ := newCounterRegistry()
	r.maxEntries = 2
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base }
	first := r.Get("s1", "a")
	r.now = func() time.Time { return base.Add(time.Minute) }
	r.Get("s2", "a")
	r.now = func() time.Time { return base.Add(2 * time.Minute) }
	r.Get("s3", "a")

	assert.Equal(t, 2, r.Len())
	assert.NotSame(t, first, r.Get("s1", "a"))
}
