package domain

import "strings"

// Platform описывает источник контента.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformYouTube   Platform = "youtube"
	PlatformBlog      Platform = "blog"
)

// SourceKind возвращает класс источника: лента изображений, микроблог и т.д.
func (p Platform) SourceKind() string {
	switch p {
	case PlatformInstagram, PlatformFacebook:
		return "image-feed"
	case PlatformTwitter:
		return "microblog"
	case PlatformLinkedIn:
		return "professional-network"
	case PlatformYouTube:
		return "video"
	default:
		return "generic-web"
	}
}

// ContentType описывает вид поста.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
)

// NormalizedContent описывает пост в платформенно-независимом виде.
type NormalizedContent struct {
	Platform    Platform       `json:"platform"`
	Content     string         `json:"content"`
	Author      string         `json:"author,omitempty"`
	MediaURL    string         `json:"mediaUrl,omitempty"`
	Type        ContentType    `json:"type"`
	OriginalURL string         `json:"originalUrl"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// AnalysisResult хранит результат анализа одного поста.
type AnalysisResult struct {
	Tone              string   `json:"tone"`
	Sentiment         string   `json:"sentiment"`
	KeyThemes         []string `json:"keyThemes"`
	WritingStyle      string   `json:"writingStyle"`
	TargetAudience    string   `json:"targetAudience"`
	CallToAction      *string  `json:"callToAction"`
	Hashtags          []string `json:"hashtags"`
	Mentions          []string `json:"mentions"`
	WordCount         int      `json:"wordCount"`
	ReadabilityScore  string   `json:"readabilityScore"`
	EmotionalAppeal   string   `json:"emotionalAppeal"`
	StructureAnalysis string   `json:"structureAnalysis"`
}

// WordCount считает слова, разделённые пробельными символами.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// DefaultAnalysis возвращает анализ-заглушку, когда ответ LLM не удалось разобрать.
func DefaultAnalysis(content string) AnalysisResult {
	return AnalysisResult{
		Tone:              "unknown",
		Sentiment:         "neutral",
		KeyThemes:         []string{},
		WritingStyle:      "unknown",
		TargetAudience:    "general",
		Hashtags:          []string{},
		Mentions:          []string{},
		WordCount:         WordCount(content),
		ReadabilityScore:  "moderate",
		EmotionalAppeal:   "not analyzed",
		StructureAnalysis: "not analyzed",
	}
}

// StyleProfile описывает агрегированный стиль автора, полученный от LLM.
type StyleProfile struct {
	StyleSummary         string   `json:"styleSummary"`
	Tone                 Tone     `json:"tone"`
	StorytellingStyle    string   `json:"storytellingStyle"`
	HumorUsage           bool     `json:"humorUsage"`
	VocabularyComplexity string   `json:"vocabularyComplexity"`
	FormalityScore       float64  `json:"formalityScore"`
	EmotionalTone        string   `json:"emotionalTone"`
	CommonPhrases        []string `json:"commonPhrases"`
	TopicPreferences     []string `json:"topicPreferences"`
	AvgSentenceLength    float64  `json:"avgSentenceLength"`
}

// Tone описывает тон бренда.
type Tone string

const (
	ToneProfessional Tone = "PROFESSIONAL"
	ToneCasual       Tone = "CASUAL"
	ToneInspiring    Tone = "INSPIRING"
	ToneEducational  Tone = "EDUCATIONAL"
)

// Valid проверяет, что тон входит в допустимый набор.
func (t Tone) Valid() bool {
	switch t {
	case ToneProfessional, ToneCasual, ToneInspiring, ToneEducational:
		return true
	}
	return false
}
