package analysisjobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vidlens/vidlens/pkg/youtube"
)

// defaultPace is the politeness delay inserted between videos of one job
// to avoid bursting the upstream generation API.
const defaultPace = 50 * time.Millisecond

// VideoLister is the slice of the video-hosting client the runner depends on.
type VideoLister interface {
	PlaylistVideos(ctx context.Context, accessToken, playlistID string) ([]*youtube.PlaylistItem, error)
}

// Options tunes runner behavior.
type Options struct {
	// Pace is the delay between videos within one job.
	// Zero means defaultPace; negative disables pacing.
	Pace time.Duration

	Logger *zap.Logger
}

// Runner executes bulk playlist-analysis jobs against the registry.
//
// Exactly one goroutine runs each job from enqueue to a terminal state.
// Failures are not retried: the first error aborts the rest of the job and
// marks it errored, preserving partial results. Concurrent requests for the
// same playlist create independent jobs; deduplication happens only at the
// per-video cache layer.
type Runner struct {
	registry *Registry
	lister   VideoLister
	analyzer *Analyzer
	pace     time.Duration
	logger   *zap.Logger
}

// NewRunner creates a runner.
func NewRunner(registry *Registry, lister VideoLister, analyzer *Analyzer, opts Options) *Runner {
	pace := opts.Pace
	if pace == 0 {
		pace = defaultPace
	}
	if pace < 0 {
		pace = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		registry: registry,
		lister:   lister,
		analyzer: analyzer,
		pace:     pace,
		logger:   logger,
	}
}

// EnqueuePlaylist registers a job for the playlist and returns its id
// immediately; the work proceeds in a background goroutine. Completion is
// observable only through the registry.
func (r *Runner) EnqueuePlaylist(accessToken, playlistID string) string {
	jobID := r.registry.create(playlistID)

	r.logger.Info("playlist analysis enqueued",
		zap.String("job_id", jobID),
		zap.String("playlist_id", playlistID))

	go r.run(jobID, accessToken, playlistID)
	return jobID
}

func (r *Runner) run(jobID, accessToken, playlistID string) {
	// Jobs are not cancellable once enqueued; they run to completion or
	// failure on a process-scoped context.
	ctx := context.Background()
	start := time.Now()

	r.registry.markRunning(jobID)

	items, err := r.lister.PlaylistVideos(ctx, accessToken, playlistID)
	if err != nil {
		r.failJob(jobID, err)
		return
	}

	ids := dedupe(youtube.VideoIDs(items))
	r.registry.setTotal(jobID, len(ids))

	for _, videoID := range ids {
		analysis, err := r.analyzer.AnalyzeByID(ctx, videoID)
		if err != nil {
			r.failJob(jobID, err)
			return
		}
		r.registry.recordResult(jobID, videoID, analysis)

		if r.pace > 0 {
			time.Sleep(r.pace)
		}
	}

	r.registry.finish(jobID)
	r.logger.Info("playlist analysis done",
		zap.String("job_id", jobID),
		zap.Int("videos", len(ids)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
}

// dedupe drops repeated ids, keeping first-occurrence order. A playlist
// containing the same video twice counts it once, so Total always matches
// the results map at completion.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *Runner) failJob(jobID string, err error) {
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	r.registry.fail(jobID, msg)
	r.logger.Warn("playlist analysis failed",
		zap.String("job_id", jobID),
		zap.Error(err))
}
