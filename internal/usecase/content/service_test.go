package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/adapters/analyzer"
	"creatora-api/internal/domain"
	"creatora-api/internal/testutil/memstore"
)

type generatorStub struct {
	assets domain.GenerationAssets
	err    error
	calls  int
	last   domain.GenerationRequest
}

func (g *generatorStub) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationAssets, []byte, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return domain.GenerationAssets{}, nil, g.err
	}
	raw, _ := json.Marshal(g.assets)
	return g.assets, raw, nil
}

type completerStub struct{ err error }

func (c completerStub) Complete(context.Context, string, string, bool) (string, error) {
	return "", c.err
}

func sampleAssets() domain.GenerationAssets {
	var a domain.GenerationAssets
	a.Image.Caption = "Morning run"
	a.Image.ImageURL = "https://img.example.com/1.png"
	a.Image.Hashtags = []string{"#run"}
	a.Video = domain.VideoAssets{
		Hook:               "Wake up!",
		Script:             "Host: intro\nline one\n\nline two\nline three\nline four",
		AudienceEngagement: "Follow for more",
		Hashtags:           []string{"#fit"},
	}
	return a
}

func setup(t *testing.T, gen *generatorStub) (*Service, *memstore.Store, domain.Principal) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	user, _ := store.CreateUser(ctx, domain.User{Email: "c@example.com", CreditsLimit: 1})
	svc := NewService(Deps{
		Users:     store,
		Brands:    store,
		PastPosts: store,
		Generated: store,
		Generator: gen,
		Planner:   analyzer.NewSchedulePlanner(completerStub{err: errors.New("down")}, zerolog.Nop()),
		Events:    store,
	}, zerolog.Nop())
	return svc, store, domain.Principal{UserID: user.ID}
}

func TestGenerateRequiresBrandProfile(t *testing.T) {
	gen := &generatorStub{assets: sampleAssets()}
	svc, _, p := setup(t, gen)

	var verr *domain.ValidationError
	if _, err := svc.Generate(context.Background(), p); !errors.As(err, &verr) || verr.Message != "Brand profile not set up" {
		t.Fatalf("ожидали ошибку профиля бренда, получили %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("генератор не должен вызываться")
	}
}

func TestGenerateConsumesCredit(t *testing.T) {
	gen := &generatorStub{assets: sampleAssets()}
	svc, store, p := setup(t, gen)
	ctx := context.Background()
	niche := "fitness"
	_, _ = store.UpsertBrandBasics(ctx, p.UserID, domain.BrandBasics{Niche: &niche})
	cta := "Join now"
	_, _ = store.CreatePastPost(ctx, domain.PastPost{UserID: p.UserID, Content: "old", Analysis: &domain.AnalysisResult{Tone: "casual", CallToAction: &cta}})

	res, err := svc.Generate(ctx, p)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if res.Preview.Username != "your_username" || !strings.HasSuffix(res.Preview.UserProfilePicture, "name=fitness") {
		t.Fatalf("неожиданное превью: %+v", res.Preview)
	}
	if res.Preview.Likes < 100 || res.Preview.Likes > 599 || res.Preview.Comments < 10 || res.Preview.Comments > 59 {
		t.Fatalf("числа вовлечённости вне диапазона: %+v", res.Preview)
	}
	if !res.HasVideoScript || res.CreditsUsed != 1 {
		t.Fatalf("неожиданный результат: %+v", res)
	}
	pp := gen.last.PastPosts
	if len(pp) != 1 || pp[0].Platform != "INSTAGRAM" || pp[0].Tone != "casual" || pp[0].CallToAction != "Join now" || pp[0].Hashtags == nil {
		t.Fatalf("неожиданный запрос к генератору: %+v", pp)
	}
	user, _ := store.GetUserByID(ctx, p.UserID)
	if user.CreditsUsed != 1 {
		t.Fatalf("ожидали списание кредита, получили %d", user.CreditsUsed)
	}
	if _, err := svc.Generate(ctx, p); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("ожидали исчерпание кредитов, получили %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("генератор не должен вызываться без кредитов")
	}
}

func TestGenerateUpstreamErrorKeepsCredits(t *testing.T) {
	gen := &generatorStub{err: &domain.UpstreamError{Service: "post-generation", Err: errors.New("502")}}
	svc, store, p := setup(t, gen)
	ctx := context.Background()
	_, _ = store.UpsertBrandBasics(ctx, p.UserID, domain.BrandBasics{})

	var uerr *domain.UpstreamError
	if _, err := svc.Generate(ctx, p); !errors.As(err, &uerr) {
		t.Fatalf("ожидали UpstreamError, получили %v", err)
	}
	user, _ := store.GetUserByID(ctx, p.UserID)
	if user.CreditsUsed != 0 {
		t.Fatalf("кредит не должен списываться при ошибке генерации")
	}
}

func TestVideoScriptScenes(t *testing.T) {
	gen := &generatorStub{assets: sampleAssets()}
	svc, store, p := setup(t, gen)
	ctx := context.Background()
	_, _ = store.UpsertBrandBasics(ctx, p.UserID, domain.BrandBasics{})
	res, err := svc.Generate(ctx, p)
	if err != nil {
		t.Fatalf("генерация не удалась: %v", err)
	}

	script, err := svc.VideoScript(ctx, p, res.PostID)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	// 4 строки после фильтра -> чанки по 2 -> 2 сцены основного текста
	if len(script.Scenes) != 4 {
		t.Fatalf("ожидали 4 сцены, получили %d", len(script.Scenes))
	}
	if script.Scenes[1].VoiceoverScript != "line one line two" || script.Scenes[2].ShotType != domain.ShotBRoll {
		t.Fatalf("неожиданные сцены: %+v", script.Scenes)
	}
	last := script.Scenes[3]
	if last.Title != "Call to Action" || last.SceneNumber != 4 || last.VoiceoverScript != "Follow for more" {
		t.Fatalf("неожиданная финальная сцена: %+v", last)
	}
	if script.TotalDuration != "0:23" {
		t.Fatalf("ожидали 0:23, получили %s", script.TotalDuration)
	}

	if _, err := svc.VideoScript(ctx, domain.Principal{UserID: "other"}, res.PostID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("чужой пост должен давать 404, получили %v", err)
	}
}

func TestBuildScenesWithoutScript(t *testing.T) {
	scenes := BuildScenes(domain.VideoAssets{Hook: "h", AudienceEngagement: "cta"})
	if len(scenes) != 2 || scenes[1].SceneNumber != 2 {
		t.Fatalf("ожидали только вступление и призыв, получили %+v", scenes)
	}
	if totalDuration(scenes) != "0:07" {
		t.Fatalf("ожидали 0:07, получили %s", totalDuration(scenes))
	}
}

func TestPostingScheduleFallsBackToDefault(t *testing.T) {
	gen := &generatorStub{assets: sampleAssets()}
	svc, store, p := setup(t, gen)
	ctx := context.Background()
	_, _ = store.UpsertBrandBasics(ctx, p.UserID, domain.BrandBasics{})
	res, _ := svc.Generate(ctx, p)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	schedule, err := svc.PostingSchedule(ctx, p, res.PostID)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if schedule.PostID != res.PostID || schedule.ImagePost.RecommendedDate != "2025-03-11" {
		t.Fatalf("ожидали расписание по умолчанию, получили %+v", schedule)
	}
	if _, err := svc.PostingSchedule(ctx, p, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ожидали 404, получили %v", err)
	}
}
