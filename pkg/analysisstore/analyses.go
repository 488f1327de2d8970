package analysisstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisKey is the natural key of one memoized analysis.
type AnalysisKey struct {
	VideoID    string
	Model      string
	PromptHash string
}

// AnalysisRow represents a row in the video_analyses table.
type AnalysisRow struct {
	ID            string
	VideoID       string
	Model         string
	PromptVersion int
	PromptHash    string
	Summary       string
	InsightsJSON  string
	TokensIn      *int64
	TokensOut     *int64
	CreatedAt     time.Time
}

// NewAnalysis is the input to UpsertAnalysis.
type NewAnalysis struct {
	AnalysisKey
	PromptVersion int
	Summary       string
	InsightsJSON  string
	TokensIn      *int64
	TokensOut     *int64
}

// FindAnalysis returns the cached analysis for key, or nil when absent.
func (s *Store) FindAnalysis(ctx context.Context, key AnalysisKey) (*AnalysisRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		row        AnalysisRow
		createdRaw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, video_id, model, prompt_version, prompt_hash, summary,
		        insights_json, tokens_in, tokens_out, created_at
		 FROM video_analyses
		 WHERE video_id = ? AND model = ? AND prompt_hash = ?`,
		key.VideoID, key.Model, key.PromptHash).Scan(
		&row.ID, &row.VideoID, &row.Model, &row.PromptVersion, &row.PromptHash,
		&row.Summary, &row.InsightsJSON, &row.TokensIn, &row.TokensOut, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find analysis: %w", err)
	}

	createdAt, err := parseDBTime(createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	row.CreatedAt = createdAt

	return &row, nil
}

// UpsertAnalysis inserts the analysis if its key is not yet present and
// returns the stored row.
//
// "Upsert" here is strictly idempotent-insert: when the key already exists
// (including a concurrent insert racing this one), the existing row wins
// and is re-read; it is never overwritten.
func (s *Store) UpsertAnalysis(ctx context.Context, a NewAnalysis) (*AnalysisRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.VideoID == "" || a.Model == "" || a.PromptHash == "" {
		return nil, errors.New("video id, model, and prompt hash are required")
	}

	version := a.PromptVersion
	if version <= 0 {
		version = 1
	}
	insights := a.InsightsJSON
	if insights == "" {
		insights = "{}"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO video_analyses
		 (id, video_id, model, prompt_version, prompt_hash, summary,
		  insights_json, tokens_in, tokens_out, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id, model, prompt_hash) DO NOTHING`,
		uuid.New().String(), a.VideoID, a.Model, version, a.PromptHash,
		a.Summary, insights, a.TokensIn, a.TokensOut,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert analysis: %w", err)
	}

	stored, err := s.FindAnalysis(ctx, a.AnalysisKey)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("upsert analysis for video %s: %w", a.VideoID, ErrNotFound)
	}
	return stored, nil
}
