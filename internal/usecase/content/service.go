package content

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const (
	generatedPlatform = "INSTAGRAM"
	defaultUsername   = "your_username"
	avatarBaseURL     = "https://ui-avatars.com/api/?name="
)

var (
	ErrBrandProfileMissing = errors.New("Brand profile not set up")
	ErrPostNotFound        = domain.NewPublicError(domain.ErrNotFound, "Post not found")
)

// Service генерирует посты, видеосценарии и расписания публикаций.
type Service struct {
	users     domain.UserRepo
	brands    domain.BrandProfileRepo
	pastPosts domain.PastPostRepo
	generated domain.GeneratedPostRepo
	generator domain.PostGenerator
	planner   domain.SchedulePlanner
	events    domain.EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// Deps собирает зависимости сервиса генерации.
type Deps struct {
	Users     domain.UserRepo
	Brands    domain.BrandProfileRepo
	PastPosts domain.PastPostRepo
	Generated domain.GeneratedPostRepo
	Generator domain.PostGenerator
	Planner   domain.SchedulePlanner
	Events    domain.EventPublisher
}

func NewService(deps Deps, logger zerolog.Logger) *Service {
	return &Service{
		users:     deps.Users,
		brands:    deps.Brands,
		pastPosts: deps.PastPosts,
		generated: deps.Generated,
		generator: deps.Generator,
		planner:   deps.Planner,
		events:    deps.Events,
		log:       logger,
		now:       time.Now,
	}
}

// Generate вызывает сервис генерации и списывает один кредит.
func (s *Service) Generate(ctx context.Context, p domain.Principal) (domain.GenerationResult, error) {
	user, err := s.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("получение пользователя: %w", err)
	}
	brand, err := s.brands.GetBrandProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GenerationResult{}, &domain.ValidationError{Message: ErrBrandProfileMissing.Error()}
		}
		return domain.GenerationResult{}, fmt.Errorf("профиль бренда: %w", err)
	}
	if user.CreditsUsed >= user.CreditsLimit {
		return domain.GenerationResult{}, domain.ErrInsufficientCredits
	}
	past, err := s.pastPosts.ListPastPosts(ctx, user.ID)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("прошлые посты: %w", err)
	}

	assets, raw, err := s.generator.Generate(ctx, BuildRequest(brand, past))
	if err != nil {
		return domain.GenerationResult{}, err
	}
	// Кредит списывается атомарно: параллельный запрос мог израсходовать последний.
	if err := s.users.IncrementCredits(ctx, user.ID); err != nil {
		return domain.GenerationResult{}, err
	}
	post, err := s.generated.CreateGeneratedPost(ctx, domain.GeneratedPost{
		UserID:   user.ID,
		Platform: generatedPlatform,
		Content:  raw,
	})
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("сохранение поста: %w", err)
	}
	metrics.ContentGenerated.Inc()
	if s.events != nil {
		event := domain.Event{Type: domain.EventContentGenerated, UserID: user.ID, EntityID: post.ID,
			Payload: map[string]any{"platform": post.Platform}}
		if err := s.events.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Msg("content: событие не опубликовано")
		}
	}
	s.log.Info().Str("user_id", user.ID).Str("post_id", post.ID).Msg("content: пост сгенерирован")

	return domain.GenerationResult{
		PostID:         post.ID,
		Preview:        instagramPreview(post.ID, assets, user, brand),
		HasVideoScript: true,
		GeneratedAt:    s.now().UTC().Format(time.RFC3339Nano),
		CreditsUsed:    1,
	}, nil
}

// BuildRequest собирает тело запроса к сервису генерации.
func BuildRequest(brand domain.BrandProfile, past []domain.PastPost) domain.GenerationRequest {
	tone := string(brand.StyleProfile.Tone)
	if tone == "" {
		tone = string(brand.Tone)
	}
	req := domain.GenerationRequest{
		BrandProfile: domain.GenerationBrand{
			Tone:                 tone,
			Niche:                brand.Niche,
			Audience:             brand.Audience,
			StyleSummary:         brand.StyleSummary,
			AvgSentenceLength:    brand.AvgSentenceLength,
			VocabularyComplexity: brand.VocabularyComplexity,
			CommonPhrases:        orEmpty(brand.CommonPhrases),
			TopicPreferences:     orEmpty(brand.TopicPreferences),
			EmotionalTone:        brand.EmotionalTone,
			StorytellingStyle:    brand.StorytellingStyle,
		},
		PastPosts: make([]domain.GenerationPost, 0, len(past)),
	}
	for _, post := range past {
		gp := domain.GenerationPost{
			Content:  post.Content,
			Platform: string(post.Platform),
			Tone:     "professional",
			Hashtags: []string{},
		}
		if gp.Platform == "" {
			gp.Platform = generatedPlatform
		}
		if a := post.Analysis; a != nil {
			if a.Tone != "" {
				gp.Tone = a.Tone
			}
			if len(a.Hashtags) > 0 {
				gp.Hashtags = a.Hashtags
			}
			if a.CallToAction != nil {
				gp.CallToAction = *a.CallToAction
			}
		}
		req.PastPosts = append(req.PastPosts, gp)
	}
	return req
}

func instagramPreview(postID string, assets domain.GenerationAssets, user domain.User, brand domain.BrandProfile) domain.InstagramPreview {
	username := user.Name
	if username == "" {
		username = defaultUsername
	}
	avatar := user.ProfileImageURL
	if avatar == "" {
		name := brand.Niche
		if name == "" {
			name = "Creatora"
		}
		avatar = avatarBaseURL + url.QueryEscape(name)
	}
	likes, comments := engagement(postID)
	return domain.InstagramPreview{
		PostID:             postID,
		Username:           username,
		UserProfilePicture: avatar,
		PostImage:          assets.Image.ImageURL,
		Caption:            assets.Image.Caption,
		Hashtags:           orEmpty(assets.Image.Hashtags),
		Likes:              likes,
		Comments:           comments,
		Timestamp:          "Just now",
	}
}

// engagement даёт стабильные правдоподобные числа для превью: лайки 100..599, комментарии 10..59.
func engagement(postID string) (int, int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(postID))
	sum := h.Sum32()
	return int(sum%500) + 100, int((sum/500)%50) + 10
}

// PostingSchedule строит расписание для сгенерированного поста пользователя.
func (s *Service) PostingSchedule(ctx context.Context, p domain.Principal, postID string) (domain.PostingSchedule, error) {
	if _, err := s.ownedPost(ctx, p, postID); err != nil {
		return domain.PostingSchedule{}, err
	}
	var brand *domain.BrandProfile
	bp, err := s.brands.GetBrandProfile(ctx, p.UserID)
	switch {
	case err == nil:
		brand = &bp
	case !errors.Is(err, domain.ErrNotFound):
		return domain.PostingSchedule{}, fmt.Errorf("профиль бренда: %w", err)
	}
	return s.planner.PlanSchedule(ctx, postID, brand, s.now()), nil
}

func (s *Service) ownedPost(ctx context.Context, p domain.Principal, postID string) (domain.GeneratedPost, error) {
	post, err := s.generated.GetGeneratedPost(ctx, p.UserID, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GeneratedPost{}, ErrPostNotFound
		}
		return domain.GeneratedPost{}, fmt.Errorf("получение поста: %w", err)
	}
	return post, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
