package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlens/vidlens/internal/apierr"
	"github.com/vidlens/vidlens/internal/config"
	"github.com/vidlens/vidlens/internal/server/handlers"
	"github.com/vidlens/vidlens/pkg/analysisjobs"
	"github.com/vidlens/vidlens/pkg/youtube"
)

type stubEnqueuer struct{}

func (stubEnqueuer) EnqueuePlaylist(_, _ string) string { return "11111111-2222-3333" }

type stubJobs struct{}

func (stubJobs) Get(string) (analysisjobs.Job, bool) { return analysisjobs.Job{}, false }

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeDetail(context.Context, string, string, string) (string, error) {
	return "summary", nil
}

type stubFetcher struct{}

func (stubFetcher) VideoByID(context.Context, string, string) (*youtube.Video, error) {
	return &youtube.Video{ID: "vid42"}, nil
}

type stubPlaylistAPI struct{}

func (stubPlaylistAPI) MyPlaylists(context.Context, string) ([]*youtube.Playlist, error) {
	return nil, nil
}

func (stubPlaylistAPI) PlaylistVideos(context.Context, string, string) ([]*youtube.PlaylistItem, error) {
	return nil, nil
}

func newTestServer(limits config.RateLimitConfig) *Server {
	return New("127.0.0.1", 0, Deps{
		Analysis: handlers.NewAnalysis(stubEnqueuer{}, stubJobs{}, stubAnalyzer{}, stubFetcher{}, nil),
		Browse:   handlers.NewBrowse(stubPlaylistAPI{}, nil),
		Limits:   limits,
	})
}

func doJSON(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierr.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestUnknownRouteIs404Envelope(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{})

	rec := doJSON(t, srv, http.MethodGet, "/does-not-exist", "", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierr.CodeNotFound, errorCode(t, rec))
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{})

	rec := doJSON(t, srv, http.MethodPost, "/version", "", "")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, apierr.CodeMethodNotAllowed, errorCode(t, rec))
}

func TestHealthAndVersionAreOpen(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{})

	rec := doJSON(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/version", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRoutesRequireBearer(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{})

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/youtube/playlists"},
		{http.MethodGet, "/api/youtube/videos?playlistId=PL1"},
		{http.MethodPost, "/api/analysis/playlist"},
		{http.MethodPost, "/api/analysis/video"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := doJSON(t, srv, p.method, p.path, "", "")
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rec))
		})
	}
}

func TestStartPlaylistEndToEnd(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{})

	rec := doJSON(t, srv, http.MethodPost, "/api/analysis/playlist", "tok-123",
		`{"playlistId":"PL1"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID string `json:"jobId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.JobID)
}

func TestAnalysisFamilyRateLimited(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{Max: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/analysis/playlist", "tok-123",
			`{"playlistId":"PL1"}`)
		require.Equal(t, http.StatusAccepted, rec.Code, "request %d", i+1)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/analysis/playlist", "tok-123",
		`{"playlistId":"PL1"}`)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, apierr.CodeRateLimited, errorCode(t, rec))
}

func TestStatusPollingNeedsNoCredential(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{})

	// No Authorization header: the poll still reaches the handler and
	// fails only on the unknown id.
	rec := doJSON(t, srv, http.MethodGet, "/api/analysis/status/11111111-2222", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierr.CodeNotFound, errorCode(t, rec))

	// Malformed ids are still rejected.
	rec = doJSON(t, srv, http.MethodGet, "/api/analysis/status/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierr.CodeBadRequest, errorCode(t, rec))
}

func TestStatusPollingIsNotRateLimited(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{Max: 1, Window: time.Minute})

	// Exhaust the analysis window.
	rec := doJSON(t, srv, http.MethodPost, "/api/analysis/playlist", "tok-123",
		`{"playlistId":"PL1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	// Polling keeps working; the stub registry knows no jobs, so 404.
	for i := 0; i < 5; i++ {
		rec = doJSON(t, srv, http.MethodGet, "/api/analysis/status/11111111-2222", "", "")
		require.Equal(t, http.StatusNotFound, rec.Code, "poll %d", i+1)
	}
}

func TestEndpointFamiliesHaveIndependentLimits(t *testing.T) {
	srv := newTestServer(config.RateLimitConfig{Max: 1, Window: time.Minute})

	rec := doJSON(t, srv, http.MethodPost, "/api/analysis/playlist", "tok-123",
		`{"playlistId":"PL1"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/analysis/playlist", "tok-123",
		`{"playlistId":"PL1"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// The youtube family has its own window.
	rec = doJSON(t, srv, http.MethodGet, "/api/youtube/playlists", "tok-123", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
