package analysisjobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry()

	id := r.create("pl-1")
	require.NotEmpty(t, id)

	job, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, StatusQueued, job.Status)
	assert.Equal(t, "pl-1", job.PlaylistID)
	assert.Equal(t, 0, job.Total)
	assert.Equal(t, 0, job.Completed)
	assert.NotNil(t, job.Results)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_SnapshotIsIsolated(t *testing.T) {
	r := NewRegistry()
	id := r.create("pl-1")
	r.recordResult(id, "vid1", "analysis")

	snap, ok := r.Get(id)
	require.True(t, ok)

	// Mutating the snapshot must not leak into the registry's record.
	snap.Results["vid2"] = "injected"

	again, _ := r.Get(id)
	assert.Len(t, again.Results, 1)
}

func TestRegistry_TerminalStatesAreAbsorbing(t *testing.T) {
	r := NewRegistry()

	t.Run("done stays done", func(t *testing.T) {
		id := r.create("pl-1")
		r.markRunning(id)
		r.finish(id)

		r.markRunning(id)
		r.fail(id, "late failure")
		r.recordResult(id, "vid1", "late result")

		job, _ := r.Get(id)
		assert.Equal(t, StatusDone, job.Status)
		assert.Empty(t, job.Error)
		assert.Empty(t, job.Results)
	})

	t.Run("error stays error", func(t *testing.T) {
		id := r.create("pl-2")
		r.markRunning(id)
		r.fail(id, "boom")

		r.finish(id)
		r.markRunning(id)

		job, _ := r.Get(id)
		assert.Equal(t, StatusError, job.Status)
		assert.Equal(t, "boom", job.Error)
	})
}

func TestRegistry_UpdatedAtAdvances(t *testing.T) {
	r := NewRegistry()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return current }

	id := r.create("pl-1")
	first, _ := r.Get(id)

	current = current.Add(time.Second)
	r.recordResult(id, "vid1", "a")

	second, _ := r.Get(id)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestRegistry_CompletedTracksResults(t *testing.T) {
	r := NewRegistry()
	id := r.create("pl-1")
	r.setTotal(id, 3)

	r.recordResult(id, "vid1", "a")
	// Duplicate video id does not double-count.
	r.recordResult(id, "vid1", "a2")
	r.recordResult(id, "vid2", "b")

	job, _ := r.Get(id)
	assert.Equal(t, 2, job.Completed)
	assert.Len(t, job.Results, 2)
}

func TestRegistry_GC(t *testing.T) {
	r := NewRegistry()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return current }

	oldDone := r.create("pl-old")
	r.finish(oldDone)
	stillRunning := r.create("pl-running")
	r.markRunning(stillRunning)

	current = current.Add(2 * time.Hour)
	freshDone := r.create("pl-fresh")
	r.finish(freshDone)

	removed := r.GC(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get(oldDone)
	assert.False(t, ok)
	_, ok = r.Get(stillRunning)
	assert.True(t, ok, "running jobs are never collected")
}
