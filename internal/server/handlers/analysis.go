package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vidlens/vidlens/internal/apierr"
	"github.com/vidlens/vidlens/internal/server/middleware"
	"github.com/vidlens/vidlens/pkg/analysisjobs"
	"github.com/vidlens/vidlens/pkg/youtube"
)

// minJobIDLen guards against obviously malformed status lookups.
const minJobIDLen = 8

// minVideoIDLen matches the shortest id the upstream API issues.
const minVideoIDLen = 5

// Enqueuer starts bulk playlist jobs.
type Enqueuer interface {
	EnqueuePlaylist(accessToken, playlistID string) string
}

// JobReader reads job snapshots for polling.
type JobReader interface {
	Get(id string) (analysisjobs.Job, bool)
}

// VideoAnalyzer analyzes a single video given fetched metadata.
type VideoAnalyzer interface {
	AnalyzeDetail(ctx context.Context, videoID, title, description string) (string, error)
}

// VideoFetcher fetches one video's metadata.
type VideoFetcher interface {
	VideoByID(ctx context.Context, accessToken, videoID string) (*youtube.Video, error)
}

// Analysis bundles the analysis endpoints.
type Analysis struct {
	runner   Enqueuer
	jobs     JobReader
	analyzer VideoAnalyzer
	videos   VideoFetcher
	logger   *zap.Logger
}

// NewAnalysis creates the handler set.
func NewAnalysis(runner Enqueuer, jobs JobReader, analyzer VideoAnalyzer, videos VideoFetcher, logger *zap.Logger) *Analysis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analysis{runner: runner, jobs: jobs, analyzer: analyzer, videos: videos, logger: logger}
}

type startPlaylistBody struct {
	PlaylistID string `json:"playlistId"`
}

type startPlaylistResponse struct {
	JobID string `json:"jobId"`
}

// StartPlaylist enqueues a bulk analysis job and returns 202 immediately.
// Any failure inside the job is observable only via the status endpoint.
func (h *Analysis) StartPlaylist(w http.ResponseWriter, r *http.Request) {
	var body startPlaylistBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apierr.BadRequest(w, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(body.PlaylistID) == "" {
		apierr.BadRequest(w, "playlistId is required")
		return
	}

	token := middleware.AccessToken(r.Context())
	jobID := h.runner.EnqueuePlaylist(token, body.PlaylistID)

	writeJSON(w, http.StatusAccepted, startPlaylistResponse{JobID: jobID})
}

type jobResponse struct {
	ID        string              `json:"id"`
	Status    analysisjobs.Status `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Total     int                 `json:"total"`
	Completed int                 `json:"completed"`
	Results   map[string]string   `json:"results"`
	Error     *string             `json:"error"`
}

// JobStatus returns the snapshot of one job for polling.
func (h *Analysis) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if len(id) < minJobIDLen {
		apierr.BadRequest(w, "Invalid job id")
		return
	}

	job, ok := h.jobs.Get(id)
	if !ok {
		apierr.NotFound(w, "Job not found")
		return
	}

	resp := jobResponse{
		ID:        job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
		Total:     job.Total,
		Completed: job.Completed,
		Results:   job.Results,
	}
	if job.Error != "" {
		resp.Error = &job.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

type analyzeVideoBody struct {
	VideoID string `json:"videoId"`
}

type analyzeVideoResponse struct {
	Analysis string `json:"analysis"`
}

// AnalyzeVideo runs the synchronous single-video path: fetch metadata,
// analyze (cache-aware), respond with the analysis text.
func (h *Analysis) AnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	var body analyzeVideoBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		apierr.BadRequest(w, "Invalid JSON body")
		return
	}
	if len(strings.TrimSpace(body.VideoID)) < minVideoIDLen {
		apierr.BadRequest(w, "Invalid request body")
		return
	}
	videoID := strings.TrimSpace(body.VideoID)

	token := middleware.AccessToken(r.Context())

	video, err := h.videos.VideoByID(r.Context(), token, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrNotFound) {
			apierr.NotFound(w, "Video not found")
			return
		}
		h.logger.Error("video lookup failed", zap.String("video_id", videoID), zap.Error(err))
		apierr.Internal(w)
		return
	}

	var title, description string
	if video.Snippet != nil {
		title = video.Snippet.Title
		description = video.Snippet.Description
	}

	analysis, err := h.analyzer.AnalyzeDetail(r.Context(), videoID, title, description)
	if err != nil {
		h.logger.Error("video analysis failed", zap.String("video_id", videoID), zap.Error(err))
		apierr.Internal(w)
		return
	}

	writeJSON(w, http.StatusOK, analyzeVideoResponse{Analysis: analysis})
}
