package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const postAnalysisSystem = "You are an elite Social Media Data Scientist and Linguistic Psychologist. Reply with a single JSON object only."

const postAnalysisPrompt = `Perform a granular analysis of a specific social media post to populate a high-fidelity marketing database.

### INPUT DATA
- Platform: %s
- Author: %s
- Post URL: %s
- Raw Content: "%s"

### ANALYSIS DIRECTIVES
Analyze the content on three distinct layers:
1. Surface Layer (Literal): extract explicit entities like hashtags, mentions and call-to-actions.
2. Semantic Layer (Linguistic): evaluate sentence structure, vocabulary sophistication and rhythm. Short, punchy sentences (Direct) or flowery, descriptive prose (Narrative)?
3. Psychographic Layer (Subtext): infer the target audience's values. Minimal text like "Strength in restraint" suggests a Luxury/High-Net-Worth audience, not "General Public".

### SPECIAL HANDLING FOR SHORT CONTENT
If the content is brief (under 20 words) you MUST NOT return "Unknown". Infer context from the available vocabulary:
- "Monday Mood" implies a Relatable/Casual tone.
- "Legacy defined." implies a Prestigious/Serious tone.
- "Link in bio!" implies a Promotional/Urgent tone.

### OUTPUT SCHEMA
Return a single valid JSON object, no markdown:
{
  "tone": "most specific descriptor, e.g. Professional, Witty, Satirical, Melancholic, Luxurious, Educational, Urgent, Minimalist, Aspirational, Aggressive, Whimsical",
  "sentiment": "Positive | Negative | Neutral | Mixed | Controversial",
  "keyThemes": ["2-4 abstract concepts, not words repeated from the text"],
  "writingStyle": "Narrative | Direct | Conversational | Academic | Poetic | Technical",
  "targetAudience": "ideal reader with age group, professional status or interest",
  "callToAction": "explicit or implicit request, or null",
  "hashtags": ["only hashtags present in the text"],
  "mentions": ["only @handles present in the text"],
  "wordCount": 0,
  "readabilityScore": "Easy | Moderate | Complex",
  "emotionalAppeal": "primary psychological trigger, e.g. FOMO, Nostalgia, Validation, Curiosity, Outrage, Hope, Exclusivity",
  "structureAnalysis": "brief flow, e.g. Hook -> Story -> CTA"
}
wordCount must be an integer, arrays must be closed, no text before or after the JSON.`

type postAnalysis domain.AnalysisResult

func (p postAnalysis) validate() error {
	if p.Tone == "" || p.Sentiment == "" {
		return errors.New("tone and sentiment are required")
	}
	if p.WordCount < 0 {
		return errors.New("wordCount must be non-negative")
	}
	return nil
}

// PostAnalyzer анализирует отдельный пост через LLM.
type PostAnalyzer struct {
	llm Completer
	log zerolog.Logger
}

func NewPostAnalyzer(llm Completer, logger zerolog.Logger) *PostAnalyzer {
	return &PostAnalyzer{llm: llm, log: logger}
}

// Analyze никогда не падает: при любой ошибке возвращается DefaultAnalysis.
func (a *PostAnalyzer) Analyze(ctx context.Context, content domain.NormalizedContent, url string) domain.AnalysisResult {
	author := content.Author
	if author == "" {
		author = "Unknown"
	}
	prompt := fmt.Sprintf(postAnalysisPrompt, content.Platform, author, url, content.Content)
	raw, err := a.llm.Complete(ctx, postAnalysisSystem, prompt, true)
	if err != nil {
		a.log.Error().Err(err).Str("url", url).Msg("analyzer: LLM недоступна, анализ по умолчанию")
		metrics.IncAnalysisFallback("post")
		return domain.DefaultAnalysis(content.Content)
	}
	parsed, err := DecodeJSON[postAnalysis](raw)
	if err != nil {
		a.log.Error().Err(err).Str("url", url).Msg("analyzer: не удалось разобрать анализ, анализ по умолчанию")
		metrics.IncAnalysisFallback("post")
		return domain.DefaultAnalysis(content.Content)
	}
	result := domain.AnalysisResult(parsed)
	result.KeyThemes = nonNil(result.KeyThemes)
	result.Hashtags = nonNil(result.Hashtags)
	result.Mentions = nonNil(result.Mentions)
	return result
}
