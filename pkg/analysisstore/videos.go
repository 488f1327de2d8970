package analysisstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// VideoRow represents a row in the videos table.
type VideoRow struct {
	ID          string
	YoutubeID   string
	Title       *string
	ChannelID   *string
	DurationSec *int64
	PublishedAt *int64
	OwnerID     *string
}

// VideoMeta carries optional metadata for EnsureVideo. Nil fields are
// stored as NULL; they are never used to overwrite an existing row.
type VideoMeta struct {
	Title       *string
	ChannelID   *string
	DurationSec *int64
	PublishedAt *int64
	OwnerID     *string
}

// EnsureVideo guarantees a local row exists for the given external video id,
// creating it if absent. The operation is idempotent on youtube_id: a
// duplicate create is a no-op followed by a re-read of the stored row.
func (s *Store) EnsureVideo(ctx context.Context, youtubeID string, meta VideoMeta) (*VideoRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	youtubeID = strings.TrimSpace(youtubeID)
	if youtubeID == "" {
		return nil, errors.New("youtube id is required")
	}

	if existing, err := s.videoByYoutubeID(ctx, youtubeID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (id, youtube_id, title, channel_id, duration_sec, published_at, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(youtube_id) DO NOTHING`,
		uuid.New().String(), youtubeID,
		meta.Title, meta.ChannelID, meta.DurationSec, meta.PublishedAt, meta.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("insert video %s: %w", youtubeID, err)
	}

	created, err := s.videoByYoutubeID(ctx, youtubeID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("create or load video row for %s: %w", youtubeID, ErrNotFound)
	}
	return created, nil
}

func (s *Store) videoByYoutubeID(ctx context.Context, youtubeID string) (*VideoRow, error) {
	var row VideoRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, youtube_id, title, channel_id, duration_sec, published_at, owner_id
		 FROM videos
		 WHERE youtube_id = ?`,
		youtubeID).Scan(
		&row.ID, &row.YoutubeID, &row.Title, &row.ChannelID,
		&row.DurationSec, &row.PublishedAt, &row.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video by youtube id: %w", err)
	}
	return &row, nil
}
