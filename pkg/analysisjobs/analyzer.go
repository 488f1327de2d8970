package analysisjobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vidlens/vidlens/pkg/analysisstore"
	"github.com/vidlens/vidlens/pkg/gemini"
)

// Store is the slice of the analysis store the analyzer depends on.
type Store interface {
	EnsureVideo(ctx context.Context, youtubeID string, meta analysisstore.VideoMeta) (*analysisstore.VideoRow, error)
	FindAnalysis(ctx context.Context, key analysisstore.AnalysisKey) (*analysisstore.AnalysisRow, error)
	UpsertAnalysis(ctx context.Context, a analysisstore.NewAnalysis) (*analysisstore.AnalysisRow, error)
}

// Generator is the slice of the generative-AI client the analyzer depends on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*gemini.Result, error)
	Model() string
}

// Analyzer produces (or recalls) one analysis per video, memoized in the
// store under the (video, model, prompt-hash) key. It is shared by the
// bulk job runner and the synchronous single-video path.
type Analyzer struct {
	store  Store
	gen    Generator
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(store Store, gen Generator, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{store: store, gen: gen, logger: logger}
}

// AnalyzeByID analyzes a video known only by its external id, using the
// playlist prompt template. Cached results short-circuit the generation
// call entirely.
func (a *Analyzer) AnalyzeByID(ctx context.Context, videoID string) (string, error) {
	prompt := PlaylistPrompt(videoID)
	return a.analyze(ctx, videoID, analysisstore.VideoMeta{}, prompt, `{"source":"gemini","path":"playlist"}`)
}

// AnalyzeDetail analyzes a video whose title and description have been
// fetched, using the detail prompt template. The metadata is persisted on
// the video row when it is first created.
func (a *Analyzer) AnalyzeDetail(ctx context.Context, videoID, title, description string) (string, error) {
	prompt := DetailPrompt(videoID, title, description)
	meta := analysisstore.VideoMeta{}
	if title != "" {
		meta.Title = &title
	}
	return a.analyze(ctx, videoID, meta, prompt, `{"source":"gemini","path":"video"}`)
}

func (a *Analyzer) analyze(ctx context.Context, videoID string, meta analysisstore.VideoMeta, prompt, insightsJSON string) (string, error) {
	video, err := a.store.EnsureVideo(ctx, videoID, meta)
	if err != nil {
		return "", fmt.Errorf("ensure video row: %w", err)
	}

	key := analysisstore.AnalysisKey{
		VideoID:    video.ID,
		Model:      a.gen.Model(),
		PromptHash: PromptHash(a.gen.Model(), PromptVersion, prompt),
	}

	cached, err := a.store.FindAnalysis(ctx, key)
	if err != nil {
		return "", fmt.Errorf("look up cached analysis: %w", err)
	}
	if cached != nil {
		a.logger.Debug("analysis cache hit",
			zap.String("video_id", videoID),
			zap.String("model", key.Model))
		return cached.Summary, nil
	}

	result, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate analysis for %s: %w", videoID, err)
	}

	// Idempotent insert: if a concurrent analysis of the same key got there
	// first, the stored row wins and that summary is returned.
	stored, err := a.store.UpsertAnalysis(ctx, analysisstore.NewAnalysis{
		AnalysisKey:   key,
		PromptVersion: PromptVersion,
		Summary:       result.Text,
		InsightsJSON:  insightsJSON,
		TokensIn:      result.TokensIn,
		TokensOut:     result.TokensOut,
	})
	if err != nil {
		return "", fmt.Errorf("persist analysis for %s: %w", videoID, err)
	}
	return stored.Summary, nil
}
