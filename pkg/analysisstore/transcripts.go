package analysisstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TranscriptRow represents a row in the transcript_caches table.
//
// The transcript cache is storage-level only for now: rows round-trip
// through Save/Find, but no request path consumes them yet. The table is
// kept so a transcript-enriched prompt path needs no schema change.
type TranscriptRow struct {
	ID        string
	VideoID   string
	Lang      string
	Source    string
	Content   string
	FetchedAt time.Time
}

// SaveTranscript stores a fetched transcript for (video, lang, source).
// Unlike analyses, transcripts may be re-fetched: an existing row is
// replaced with the fresh content.
func (s *Store) SaveTranscript(ctx context.Context, videoID, lang, source, content string) (*TranscriptRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if videoID == "" || source == "" {
		return nil, errors.New("video id and source are required")
	}
	if lang == "" {
		lang = "en"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcript_caches (id, video_id, lang, source, content, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id, lang, source) DO UPDATE SET
		   content = excluded.content,
		   fetched_at = excluded.fetched_at`,
		uuid.New().String(), videoID, lang, source, content,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("save transcript: %w", err)
	}

	return s.FindTranscript(ctx, videoID, lang, source)
}

// FindTranscript returns the cached transcript, or nil when absent.
func (s *Store) FindTranscript(ctx context.Context, videoID, lang, source string) (*TranscriptRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if lang == "" {
		lang = "en"
	}

	var (
		row        TranscriptRow
		fetchedRaw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, lang, source, content, fetched_at
		 FROM transcript_caches
		 WHERE video_id = ? AND lang = ? AND source = ?`,
		videoID, lang, source).Scan(
		&row.ID, &row.VideoID, &row.Lang, &row.Source, &row.Content, &fetchedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transcript: %w", err)
	}

	fetchedAt, err := parseDBTime(fetchedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse fetched_at: %w", err)
	}
	row.FetchedAt = fetchedAt

	return &row, nil
}
