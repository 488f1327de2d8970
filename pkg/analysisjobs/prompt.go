package analysisjobs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// PromptVersion is bumped whenever a prompt template changes in a way that
// should invalidate previously cached analyses. It is part of the cache key
// (via PromptHash) and stored alongside each analysis row.
const PromptVersion = 1

const playlistPromptTemplate = `Act as a world-class strategic analyst using your native YouTube extension. Your analysis should be deep, insightful, and structured for clarity.

Analyze this video and provide:
1) Core thesis (1 sentence)
2) 3-5 key pillars supporting the thesis
3) Hook deconstruction (quote + psychological trigger)
4) Most tweetable moment as a blockquote
5) Audience & purpose

Video: https://www.youtube.com/watch?v=%s`

const detailPromptTemplate = `Act as a world-class strategic analyst using your native YouTube extension. Your analysis should be deep, insightful, and structured for clarity.

Video: https://www.youtube.com/watch?v=%s
Title: %s
Description: %s

Provide:
1) Core thesis (1 sentence)
2) 3-5 key pillars supporting the thesis
3) Hook deconstruction (quote + psychological trigger)
4) Most tweetable moment as a blockquote
5) Audience & purpose
`

// PlaylistPrompt builds the canonical prompt used for videos analyzed as
// part of a playlist job, where only the video id is known.
func PlaylistPrompt(videoID string) string {
	return fmt.Sprintf(playlistPromptTemplate, videoID)
}

// DetailPrompt builds the richer prompt used by the single-video path,
// where title and description have been fetched.
func DetailPrompt(videoID, title, description string) string {
	if strings.TrimSpace(description) == "" {
		description = "(no description)"
	}
	return fmt.Sprintf(detailPromptTemplate, videoID, title, description)
}

// PromptHash derives the deterministic cache-key hash for one generation:
// the hex sha256 of the model identifier, the prompt template version, and
// the canonical prompt text.
func PromptHash(model string, version int, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\n" + strconv.Itoa(version) + "\n" + prompt))
	return hex.EncodeToString(sum[:])
}
