package onboarding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"creatora-api/internal/adapters/analyzer"
	"creatora-api/internal/domain"
	"creatora-api/internal/testutil/memstore"
)

type extractorStub struct {
	content domain.NormalizedContent
	err     error
}

func (e extractorStub) Extract(_ context.Context, url string) (domain.NormalizedContent, error) {
	c := e.content
	c.OriginalURL = url
	return c, e.err
}

type completerStub struct {
	reply string
	err   error
	calls int
}

func (c *completerStub) Complete(context.Context, string, string, bool) (string, error) {
	c.calls++
	return c.reply, c.err
}

const styleReply = `{"styleSummary":"Short punchy posts","tone":"casual","storytellingStyle":"direct","humorUsage":true,
"vocabularyComplexity":"simple","formalityScore":0.2,"emotionalTone":"upbeat","commonPhrases":["let's go"],
"topicPreferences":["fitness"],"avgSentenceLength":9}`

func newTestService(store *memstore.Store, extract extractorStub, llm *completerStub) *Service {
	return NewService(store, store, extract,
		analyzer.NewPostAnalyzer(llm, zerolog.Nop()),
		analyzer.NewStyleAnalyzer(llm),
		store, zerolog.Nop())
}

func addPosts(t *testing.T, store *memstore.Store, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := store.CreatePastPost(context.Background(), domain.PastPost{UserID: userID, Content: fmt.Sprintf("post %d", i)}); err != nil {
			t.Fatalf("не удалось добавить пост: %v", err)
		}
	}
}

func TestAnalyzeProfileRequiresThreePosts(t *testing.T) {
	for n := 0; n < MinPostsForAnalysis; n++ {
		store := memstore.New()
		llm := &completerStub{reply: styleReply}
		svc := newTestService(store, extractorStub{}, llm)
		addPosts(t, store, "u1", n)

		var verr *domain.ValidationError
		_, err := svc.AnalyzeProfile(context.Background(), domain.Principal{UserID: "u1"})
		if !errors.As(err, &verr) {
			t.Fatalf("%d постов: ожидали ошибку валидации, получили %v", n, err)
		}
		want := fmt.Sprintf("At least 3 posts are required for analysis. Found: %d", n)
		if verr.Message != want {
			t.Fatalf("ожидали %q, получили %q", want, verr.Message)
		}
		if llm.calls != 0 {
			t.Fatalf("LLM не должен вызываться при %d постах", n)
		}
	}
}

func TestAnalyzeProfileUpsertsSingleProfile(t *testing.T) {
	store := memstore.New()
	llm := &completerStub{reply: styleReply}
	svc := newTestService(store, extractorStub{}, llm)
	addPosts(t, store, "u1", 3)
	p := domain.Principal{UserID: "u1"}

	first, err := svc.AnalyzeProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if first.PostsAnalyzed != 3 {
		t.Fatalf("ожидали 3 поста, получили %d", first.PostsAnalyzed)
	}
	if first.Profile.StyleProfile.Tone != domain.ToneCasual || first.Profile.StyleSummary != "Short punchy posts" {
		t.Fatalf("ожидали результат LLM, получили %+v", first.Profile.StyleProfile)
	}
	second, err := svc.AnalyzeProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("повторный анализ не удался: %v", err)
	}
	if store.BrandCount() != 1 || second.Profile.ID != first.Profile.ID {
		t.Fatalf("ожидали один профиль, получили %d", store.BrandCount())
	}
	if len(store.Events) != 2 || store.Events[0].Type != domain.EventBrandProfileUpdated {
		t.Fatalf("ожидали два события brand_profile.updated, получили %+v", store.Events)
	}
}

func TestAnalyzeProfileParseError(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, extractorStub{}, &completerStub{reply: "not json"})
	addPosts(t, store, "u1", 3)

	var perr *domain.AnalysisParseError
	if _, err := svc.AnalyzeProfile(context.Background(), domain.Principal{UserID: "u1"}); !errors.As(err, &perr) {
		t.Fatalf("ожидали AnalysisParseError, получили %v", err)
	}
	if store.BrandCount() != 0 {
		t.Fatalf("профиль не должен сохраняться при ошибке разбора")
	}
}

func TestAnalyzeAndSavePostUsesDefaultOnLLMFailure(t *testing.T) {
	store := memstore.New()
	extract := extractorStub{content: domain.NormalizedContent{Platform: domain.PlatformTwitter, Content: "a b c", Type: domain.ContentText}}
	svc := newTestService(store, extract, &completerStub{err: errors.New("llm down")})

	post, err := svc.AnalyzeAndSavePost(context.Background(), domain.Principal{UserID: "u1"}, "https://x.com/a/status/1")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if post.Analysis == nil || post.Analysis.WordCount != 3 || post.Analysis.Tone != "unknown" {
		t.Fatalf("ожидали анализ по умолчанию, получили %+v", post.Analysis)
	}
	if len(post.Analysis.Hashtags) != 0 || post.Analysis.Hashtags == nil {
		t.Fatalf("hashtags должен быть пустым списком")
	}
	if len(store.Events) != 1 || store.Events[0].Type != domain.EventPostAnalyzed {
		t.Fatalf("ожидали событие post.analyzed")
	}
}

func TestAnalyzeAndSavePostExtractionError(t *testing.T) {
	store := memstore.New()
	extractErr := &domain.ExtractionError{Platform: domain.PlatformBlog, Err: errors.New("no items")}
	svc := newTestService(store, extractorStub{err: extractErr}, &completerStub{})

	var xerr *domain.ExtractionError
	if _, err := svc.AnalyzeAndSavePost(context.Background(), domain.Principal{UserID: "u1"}, "https://blog.example.com/p"); !errors.As(err, &xerr) {
		t.Fatalf("ожидали ExtractionError, получили %v", err)
	}
	posts, _ := store.ListPastPosts(context.Background(), "u1")
	if len(posts) != 0 {
		t.Fatalf("пост не должен сохраняться")
	}
}

func TestAddBasicData(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, extractorStub{}, &completerStub{})
	ctx := context.Background()
	p := domain.Principal{UserID: "u1"}

	bad := "angry"
	var verr *domain.ValidationError
	if _, err := svc.AddBasicData(ctx, p, BasicDataInput{Tone: &bad}); !errors.As(err, &verr) {
		t.Fatalf("ожидали ошибку тона, получили %v", err)
	}
	tone, niche := "inspiring", "travel"
	if _, err := svc.AddBasicData(ctx, p, BasicDataInput{Tone: &tone, Niche: &niche}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	audience := "students"
	profile, err := svc.AddBasicData(ctx, p, BasicDataInput{Audience: &audience})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if profile.Tone != domain.ToneInspiring || profile.Niche != "travel" || profile.Audience != "students" {
		t.Fatalf("непереданные поля должны сохраниться: %+v", profile)
	}
}
