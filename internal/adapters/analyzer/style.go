package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"creatora-api/internal/domain"
)

const styleSystem = "You are an expert writing-style analyst. Reply with strict JSON only."

const stylePrompt = `Analyze the user's writing based on the following past posts.
Extract their consistent writing voice so it can be reused to generate new posts that sound indistinguishable from the original author.

POSTS:
%s

RETURN STRICT JSON WITH THESE FIELDS ONLY:
{
  "styleSummary": string,
  "tone": "PROFESSIONAL" | "CASUAL" | "INSPIRING" | "EDUCATIONAL",
  "storytellingStyle": "direct" | "narrative" | "conversational",
  "humorUsage": boolean,
  "vocabularyComplexity": "simple" | "moderate" | "advanced",
  "formalityScore": number (0 to 1),
  "emotionalTone": string,
  "commonPhrases": string[],
  "topicPreferences": string[],
  "avgSentenceLength": number
}

RULES:
- Infer tone from writing, not topic
- Be precise and conservative
- Do not hallucinate
- JSON only, no markdown`

type styleAnalysis domain.StyleProfile

func (s styleAnalysis) validate() error {
	if strings.TrimSpace(s.StyleSummary) == "" {
		return errors.New("styleSummary is required")
	}
	if !domain.Tone(strings.ToUpper(string(s.Tone))).Valid() {
		return fmt.Errorf("unknown tone %q", s.Tone)
	}
	if s.FormalityScore < 0 || s.FormalityScore > 1 {
		return fmt.Errorf("formalityScore %v out of range", s.FormalityScore)
	}
	return nil
}

// StyleAnalyzer строит профиль стиля по нескольким постам одним вызовом LLM.
type StyleAnalyzer struct {
	llm Completer
}

func NewStyleAnalyzer(llm Completer) *StyleAnalyzer {
	return &StyleAnalyzer{llm: llm}
}

// AnalyzeStyle возвращает *domain.AnalysisParseError, если ответ не соответствует схеме.
func (a *StyleAnalyzer) AnalyzeStyle(ctx context.Context, posts []string) (domain.StyleProfile, error) {
	raw, err := a.llm.Complete(ctx, styleSystem, fmt.Sprintf(stylePrompt, numberPosts(posts)), true)
	if err != nil {
		return domain.StyleProfile{}, fmt.Errorf("style analysis: %w", err)
	}
	parsed, err := DecodeJSON[styleAnalysis](raw)
	if err != nil {
		return domain.StyleProfile{}, err
	}
	profile := domain.StyleProfile(parsed)
	profile.Tone = domain.Tone(strings.ToUpper(string(profile.Tone)))
	profile.CommonPhrases = nonNil(profile.CommonPhrases)
	profile.TopicPreferences = nonNil(profile.TopicPreferences)
	return profile, nil
}

func numberPosts(posts []string) string {
	parts := make([]string, len(posts))
	for i, p := range posts {
		parts[i] = fmt.Sprintf("%d. %s", i+1, p)
	}
	return strings.Join(parts, "\n\n")
}
