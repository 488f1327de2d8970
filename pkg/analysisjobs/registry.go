package analysisjobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the process-wide table of job records.
//
// It owns every Job once created. The runner mutates records through the
// unexported methods below; external readers only ever receive snapshots.
// Records are never evicted: acceptable for a single-node deployment, and
// GC(olderThan) exists for an operator-driven cleanup.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	// now is overridable for tests.
	now func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Get returns a snapshot of the job, or false when the id is unknown.
// The snapshot's Results map is a copy and safe to retain.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshot(job), true
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// GC removes terminal jobs whose last update is older than the cutoff and
// returns how many were removed. Running and queued jobs are never removed.
func (r *Registry) GC(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-olderThan)
	removed := 0
	for id, job := range r.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}

func snapshot(job *Job) Job {
	copied := *job
	copied.Results = make(map[string]string, len(job.Results))
	for k, v := range job.Results {
		copied.Results[k] = v
	}
	return copied
}

// create registers a fresh queued job and returns its id.
func (r *Registry) create(playlistID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	job := &Job{
		ID:         uuid.New().String(),
		PlaylistID: playlistID,
		Status:     StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
		Results:    make(map[string]string),
	}
	r.jobs[job.ID] = job
	return job.ID
}

// markRunning moves a queued job to running. Terminal jobs are untouched.
func (r *Registry) markRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = StatusRunning
	job.UpdatedAt = r.now().UTC()
}

// setTotal records the count of resolved videos.
func (r *Registry) setTotal(id string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Total = total
	job.UpdatedAt = r.now().UTC()
}

// recordResult stores one video's analysis and advances Completed.
// The result write and counter increment are a single atomic update: no
// partial per-video state is ever observable.
func (r *Registry) recordResult(id, videoID, analysis string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Results[videoID] = analysis
	job.Completed = len(job.Results)
	job.UpdatedAt = r.now().UTC()
}

// finish marks a job done. Terminal jobs are untouched.
func (r *Registry) finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = StatusDone
	job.UpdatedAt = r.now().UTC()
}

// fail marks a job errored with the given message, preserving whatever
// progress was recorded before the failure.
func (r *Registry) fail(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = StatusError
	job.Error = message
	job.UpdatedAt = r.now().UTC()
}
