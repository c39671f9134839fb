package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

// MinPostsForAnalysis задаёт минимум постов для построения профиля бренда.
const MinPostsForAnalysis = 3

// Service ведёт онбординг: базовые данные бренда, добавление постов и анализ стиля.
type Service struct {
	brands    domain.BrandProfileRepo
	posts     domain.PastPostRepo
	extractor domain.ContentExtractor
	analyzer  domain.PostAnalyzer
	style     domain.StyleAnalyzer
	events    domain.EventPublisher
	log       zerolog.Logger
}

func NewService(
	brands domain.BrandProfileRepo,
	posts domain.PastPostRepo,
	extractor domain.ContentExtractor,
	analyzer domain.PostAnalyzer,
	style domain.StyleAnalyzer,
	events domain.EventPublisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		brands:    brands,
		posts:     posts,
		extractor: extractor,
		analyzer:  analyzer,
		style:     style,
		events:    events,
		log:       logger,
	}
}

// BasicDataInput содержит тон, нишу и аудиторию бренда.
type BasicDataInput struct {
	Tone     *string `json:"tone"`
	Niche    *string `json:"niche"`
	Audience *string `json:"audience"`
}

// AddBasicData сохраняет только переданные поля.
func (s *Service) AddBasicData(ctx context.Context, p domain.Principal, in BasicDataInput) (domain.BrandProfile, error) {
	var basics domain.BrandBasics
	if in.Tone != nil {
		tone := domain.Tone(strings.ToUpper(strings.TrimSpace(*in.Tone)))
		if !tone.Valid() {
			return domain.BrandProfile{}, domain.NewValidationError("tone must be one of the following values: PROFESSIONAL, CASUAL, INSPIRING, EDUCATIONAL")
		}
		basics.Tone = &tone
	}
	basics.Niche = in.Niche
	basics.Audience = in.Audience
	profile, err := s.brands.UpsertBrandBasics(ctx, p.UserID, basics)
	if err != nil {
		return domain.BrandProfile{}, fmt.Errorf("сохранение данных бренда: %w", err)
	}
	return profile, nil
}

// AnalyzeAndSavePost извлекает пост по URL, анализирует и сохраняет.
func (s *Service) AnalyzeAndSavePost(ctx context.Context, p domain.Principal, postURL string) (domain.PastPost, error) {
	postURL = strings.TrimSpace(postURL)
	if postURL == "" {
		return domain.PastPost{}, domain.NewValidationError("url should not be empty")
	}
	content, err := s.extractor.Extract(ctx, postURL)
	if err != nil {
		return domain.PastPost{}, err
	}
	analysis := s.analyzer.Analyze(ctx, content, postURL)
	post, err := s.posts.CreatePastPost(ctx, domain.PastPost{
		UserID:   p.UserID,
		Content:  content.Content,
		Platform: content.Platform,
		URL:      postURL,
		Author:   content.Author,
		MediaURL: content.MediaURL,
		Type:     content.Type,
		Metadata: content.Metadata,
		Analysis: &analysis,
	})
	if err != nil {
		return domain.PastPost{}, fmt.Errorf("сохранение поста: %w", err)
	}
	s.publish(ctx, domain.Event{
		Type:     domain.EventPostAnalyzed,
		UserID:   p.UserID,
		EntityID: post.ID,
		Payload:  map[string]any{"platform": post.Platform, "url": post.URL},
	})
	return post, nil
}

// ProfileAnalysis описывает результат построения профиля.
type ProfileAnalysis struct {
	PostsAnalyzed int                 `json:"postsAnalyzed"`
	Profile       domain.BrandProfile `json:"profile"`
}

// AnalyzeProfile строит профиль стиля по всем сохранённым постам одним вызовом LLM.
func (s *Service) AnalyzeProfile(ctx context.Context, p domain.Principal) (ProfileAnalysis, error) {
	posts, err := s.posts.ListPastPosts(ctx, p.UserID)
	if err != nil {
		return ProfileAnalysis{}, fmt.Errorf("получение постов: %w", err)
	}
	if len(posts) < MinPostsForAnalysis {
		return ProfileAnalysis{}, domain.NewValidationError("At least %d posts are required for analysis. Found: %d", MinPostsForAnalysis, len(posts))
	}
	texts := make([]string, 0, len(posts))
	for _, post := range posts {
		texts = append(texts, post.Content)
	}
	style, err := s.style.AnalyzeStyle(ctx, texts)
	if err != nil {
		return ProfileAnalysis{}, fmt.Errorf("анализ стиля: %w", err)
	}
	profile, err := s.brands.UpsertStyleProfile(ctx, p.UserID, style)
	if err != nil {
		return ProfileAnalysis{}, fmt.Errorf("сохранение профиля бренда: %w", err)
	}
	metrics.BrandProfilesAnalyzed.Inc()
	s.publish(ctx, domain.Event{
		Type:     domain.EventBrandProfileUpdated,
		UserID:   p.UserID,
		EntityID: profile.ID,
		Payload:  map[string]any{"postsAnalyzed": len(posts)},
	})
	return ProfileAnalysis{PostsAnalyzed: len(posts), Profile: profile}, nil
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("type", string(event.Type)).Msg("onboarding: событие не опубликовано")
	}
}
