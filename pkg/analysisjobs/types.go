// Package analysisjobs coordinates asynchronous bulk-analysis jobs.
//
// A job tracks one playlist-level analysis request: enqueueing registers a
// record and returns its id immediately; the work itself runs in a
// background goroutine and is observed only through the registry.
package analysisjobs

import "time"

// Status is the lifecycle state of a job.
//
// Transitions are monotonic: queued -> running -> done or error. No
// transition leaves done or error.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Terminal reports whether s is an absorbing state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job is one bulk analysis request and its progress.
//
// Registry readers receive copies; the owning runner goroutine is the only
// writer of the registry's record.
type Job struct {
	ID         string `json:"id"`
	PlaylistID string `json:"playlistId"`
	Status     Status `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Total is the count of valid videos resolved from the playlist.
	// Zero until resolution completes.
	Total int `json:"total"`

	// Completed counts videos whose analysis has been recorded in Results.
	Completed int `json:"completed"`

	// Results maps video id to analysis text.
	Results map[string]string `json:"results"`

	// Error holds the failure message; set iff Status is StatusError.
	Error string `json:"error,omitempty"`
}
