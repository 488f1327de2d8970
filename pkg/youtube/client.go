// Package youtube is a narrow client for the video-hosting Data API.
//
// Listings are paginated: each call returns a page of items plus an
// optional continuation token. The client loops, accumulating items and
// following tokens until exhaustion or a hard item-count ceiling, which
// bounds worst-case latency and memory on very large playlists.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
	pageSize       = 50

	// Safety caps on accumulated items per listing.
	maxPlaylists     = 500
	maxPlaylistItems = 1000
)

// ErrNotFound is returned when a requested video does not exist upstream.
var ErrNotFound = errors.New("youtube: not found")

// Config configures the client.
type Config struct {
	// BaseURL overrides the API endpoint. Default: the public Data API v3.
	BaseURL string

	// Timeout applies per HTTP request. Default: 30s.
	Timeout time.Duration
}

// Client calls the video-hosting API with a bearer access token per call.
// Client holds no per-caller state and is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// New creates a client.
func New(cfg Config, logger *zap.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type playlistsPage struct {
	Items         []*Playlist `json:"items"`
	NextPageToken string      `json:"nextPageToken"`
}

type playlistItemsPage struct {
	Items         []*PlaylistItem `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
}

type videosPage struct {
	Items []*Video `json:"items"`
}

// MyPlaylists lists the playlists owned by the token's account.
func (c *Client) MyPlaylists(ctx context.Context, accessToken string) ([]*Playlist, error) {
	var (
		all       []*Playlist
		pageToken string
	)
	for {
		q := url.Values{}
		q.Set("mine", "true")
		q.Set("part", "snippet,contentDetails")
		q.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page playlistsPage
		if err := c.get(ctx, accessToken, "/playlists", q, &page); err != nil {
			return nil, fmt.Errorf("list playlists: %w", err)
		}
		all = append(all, page.Items...)

		if page.NextPageToken == "" || len(all) >= maxPlaylists {
			break
		}
		pageToken = page.NextPageToken
	}
	if len(all) > maxPlaylists {
		all = all[:maxPlaylists]
	}
	return all, nil
}

// PlaylistVideos lists the raw member items of a playlist, in API order.
// Items are returned as-is; use VideoIDs to extract the valid ids.
func (c *Client) PlaylistVideos(ctx context.Context, accessToken, playlistID string) ([]*PlaylistItem, error) {
	var (
		all       []*PlaylistItem
		pageToken string
	)
	for {
		q := url.Values{}
		q.Set("playlistId", playlistID)
		q.Set("part", "snippet")
		q.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var page playlistItemsPage
		if err := c.get(ctx, accessToken, "/playlistItems", q, &page); err != nil {
			return nil, fmt.Errorf("list playlist %s items: %w", playlistID, err)
		}
		all = append(all, page.Items...)

		if page.NextPageToken == "" || len(all) >= maxPlaylistItems {
			break
		}
		pageToken = page.NextPageToken
	}
	if len(all) > maxPlaylistItems {
		all = all[:maxPlaylistItems]
	}
	return all, nil
}

// VideoByID fetches the snippet of a single video.
// Returns ErrNotFound when the video does not exist upstream.
func (c *Client) VideoByID(ctx context.Context, accessToken, videoID string) (*Video, error) {
	q := url.Values{}
	q.Set("id", videoID)
	q.Set("part", "snippet")

	var page videosPage
	if err := c.get(ctx, accessToken, "/videos", q, &page); err != nil {
		return nil, fmt.Errorf("get video %s: %w", videoID, err)
	}
	for _, v := range page.Items {
		if v != nil && v.Snippet != nil {
			return v, nil
		}
	}
	return nil, ErrNotFound
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("youtube api call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
