package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vidlens/vidlens/internal/apierr"
	"github.com/vidlens/vidlens/internal/server/middleware"
	"github.com/vidlens/vidlens/pkg/youtube"
)

// PlaylistAPI is the slice of the video-hosting client the browse
// endpoints depend on.
type PlaylistAPI interface {
	MyPlaylists(ctx context.Context, accessToken string) ([]*youtube.Playlist, error)
	PlaylistVideos(ctx context.Context, accessToken, playlistID string) ([]*youtube.PlaylistItem, error)
}

// Browse bundles the playlist-browsing endpoints.
type Browse struct {
	api    PlaylistAPI
	logger *zap.Logger
}

// NewBrowse creates the handler set.
func NewBrowse(api PlaylistAPI, logger *zap.Logger) *Browse {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browse{api: api, logger: logger}
}

// Playlists lists the caller's playlists.
func (h *Browse) Playlists(w http.ResponseWriter, r *http.Request) {
	token := middleware.AccessToken(r.Context())

	playlists, err := h.api.MyPlaylists(r.Context(), token)
	if err != nil {
		h.logger.Error("playlist listing failed", zap.Error(err))
		apierr.Internal(w)
		return
	}
	if playlists == nil {
		playlists = []*youtube.Playlist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

type videoSummary struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Thumbnails  *youtube.Thumbnails `json:"thumbnails,omitempty"`
}

// PlaylistVideos lists the members of one playlist, normalized to the
// fields the dashboard renders. Malformed entries are excluded.
func (h *Browse) PlaylistVideos(w http.ResponseWriter, r *http.Request) {
	playlistID := strings.TrimSpace(r.URL.Query().Get("playlistId"))
	if playlistID == "" {
		apierr.BadRequest(w, "playlistId is required")
		return
	}

	token := middleware.AccessToken(r.Context())

	items, err := h.api.PlaylistVideos(r.Context(), token, playlistID)
	if err != nil {
		h.logger.Error("playlist videos listing failed",
			zap.String("playlist_id", playlistID), zap.Error(err))
		apierr.Internal(w)
		return
	}

	videos := make([]videoSummary, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		id := it.ID
		var title, description string
		var thumbs *youtube.Thumbnails
		if it.Snippet != nil {
			if it.Snippet.ResourceID != nil && it.Snippet.ResourceID.VideoID != "" {
				id = it.Snippet.ResourceID.VideoID
			}
			title = it.Snippet.Title
			description = it.Snippet.Description
			thumbs = it.Snippet.Thumbnails
		}
		if id == "" {
			continue
		}
		videos = append(videos, videoSummary{
			ID:          id,
			Title:       title,
			Description: description,
			Thumbnails:  thumbs,
		})
	}
	writeJSON(w, http.StatusOK, videos)
}
