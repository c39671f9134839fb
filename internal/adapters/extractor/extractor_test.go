package extractor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
)

type runnerStub struct {
	items map[string][]map[string]any
	errs  map[string]error
	hang  map[string]bool
	calls []string
}

func (r *runnerStub) RunActor(ctx context.Context, actor string, _ any) ([]map[string]any, error) {
	r.calls = append(r.calls, actor)
	if r.hang[actor] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := r.errs[actor]; err != nil {
		return nil, err
	}
	return r.items[actor], nil
}

func (r *runnerStub) count(actor string) int {
	n := 0
	for _, c := range r.calls {
		if c == actor {
			n++
		}
	}
	return n
}

func TestDetectPlatform(t *testing.T) {
	cases := map[string]domain.Platform{
		"https://www.instagram.com/p/abc":    domain.PlatformInstagram,
		"https://facebook.com/page/posts/1":  domain.PlatformFacebook,
		"https://fb.com/1":                   domain.PlatformFacebook,
		"https://twitter.com/u/status/1":     domain.PlatformTwitter,
		"https://x.com/u/status/1":           domain.PlatformTwitter,
		"https://www.linkedin.com/posts/abc": domain.PlatformLinkedIn,
		"https://youtu.be/xyz":               domain.PlatformYouTube,
		"https://www.youtube.com/watch?v=1":  domain.PlatformYouTube,
		"https://blog.example.org/post":      domain.PlatformBlog,
		"not a url":                          domain.PlatformBlog,
	}
	for url, want := range cases {
		if got := DetectPlatform(url); got != want {
			t.Fatalf("%s: ожидали %s, получили %s", url, want, got)
		}
	}
}

func newTestPipeline(r *runnerStub) *Pipeline {
	return NewPipeline(NewPlatformExtractors(r), NewFallback(r), time.Second, zerolog.Nop())
}

func TestPipelineInstagramMapping(t *testing.T) {
	r := &runnerStub{items: map[string][]map[string]any{
		"apify/instagram-scraper": {{
			"caption": "Sunset #travel", "ownerUsername": "ann", "type": "Video",
			"videoUrl": "https://cdn/v.mp4", "likesCount": float64(12),
		}},
	}}
	got, err := newTestPipeline(r).Extract(context.Background(), "https://instagram.com/p/1")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Platform != domain.PlatformInstagram || got.Type != domain.ContentVideo || got.Author != "ann" {
		t.Fatalf("неверное отображение: %+v", got)
	}
	if got.MediaURL != "https://cdn/v.mp4" || got.Metadata["likes"] != float64(12) {
		t.Fatalf("неверные медиа или метаданные: %+v", got)
	}
	if r.count(fallbackActor) != 0 {
		t.Fatalf("fallback не должен вызываться при успехе")
	}
}

func TestPipelineNoItemsRunsFallbackOnce(t *testing.T) {
	r := &runnerStub{items: map[string][]map[string]any{
		fallbackActor: {{"text": "  Plain   page\n\ntext ", "author": "Bob"}},
	}}
	got, err := newTestPipeline(r).Extract(context.Background(), "https://instagram.com/p/1")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if r.count(fallbackActor) != 1 {
		t.Fatalf("fallback должен вызываться ровно один раз, вызовов: %d", r.count(fallbackActor))
	}
	if got.Platform != domain.PlatformInstagram || got.Type != domain.ContentText || got.Content != "Plain page text" {
		t.Fatalf("неверный результат fallback: %+v", got)
	}
}

func TestPipelineBothFailReturnsExtractionError(t *testing.T) {
	r := &runnerStub{errs: map[string]error{
		"apify/website-content-crawler": errors.New("boom"),
		fallbackActor:                   errors.New("down"),
	}}
	_, err := newTestPipeline(r).Extract(context.Background(), "https://example.com/post")
	var extractionErr *domain.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("ожидали ExtractionError, получили %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("ошибка должна называть причину основного экстрактора: %v", err)
	}
	if r.count(fallbackActor) != 1 {
		t.Fatalf("fallback должен вызываться ровно один раз")
	}
}

func TestPipelineEmptyContentFallsBack(t *testing.T) {
	r := &runnerStub{items: map[string][]map[string]any{
		"apify/website-content-crawler": {{"markdown": "   "}},
		fallbackActor:                   {{"text": ""}},
	}}
	_, err := newTestPipeline(r).Extract(context.Background(), "https://example.com/post")
	var extractionErr *domain.ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("пустой контент должен давать ExtractionError, получили %v", err)
	}
}

func TestPipelineRejectsInvalidURL(t *testing.T) {
	r := &runnerStub{}
	for _, raw := range []string{"", "ftp://example.com/x", "example.com/x", "/relative"} {
		_, err := newTestPipeline(r).Extract(context.Background(), raw)
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("%q: ожидали ValidationError, получили %v", raw, err)
		}
	}
	if len(r.calls) != 0 {
		t.Fatalf("при невалидном URL скрейпер не вызывается")
	}
}

func TestTwitterChainUsesAlternate(t *testing.T) {
	r := &runnerStub{
		errs: map[string]error{"apify/twitter-scraper": errors.New("blocked")},
		items: map[string][]map[string]any{
			"quacker/twitter-scraper": {{
				"text": "Ship it https://t.co/abc", "user": map[string]any{"screen_name": "dev"},
				"favorite_count": float64(3),
			}},
		},
	}
	got, err := newTestPipeline(r).Extract(context.Background(), "https://x.com/dev/status/1")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Content != "Ship it" || got.Author != "dev" || got.Metadata["likes"] != float64(3) {
		t.Fatalf("неверное отображение твита: %+v", got)
	}
	if r.count("apify/twitter-scraper") != 1 || r.count("quacker/twitter-scraper") != 1 {
		t.Fatalf("каждая стратегия вызывается ровно один раз: %v", r.calls)
	}
}

func TestLinkedInAndFacebookMapping(t *testing.T) {
	r := &runnerStub{items: map[string][]map[string]any{
		"curious_coder/linkedin-post-scraper": {{"commentary": "Big news.....…see more", "author": map[string]any{"name": "Kim"}}},
		"apify/facebook-posts-scraper": {{
			"text": "one", "description": "two", "pageTitle": "Shop",
			"images": []any{map[string]any{"url": "https://img/1.jpg"}},
		}},
	}}
	p := newTestPipeline(r)

	li, err := p.Extract(context.Background(), "https://linkedin.com/posts/1")
	if err != nil {
		t.Fatalf("linkedin: %v", err)
	}
	if li.Content != "Big news..." || li.Author != "Kim" {
		t.Fatalf("неверный linkedin: %+v", li)
	}

	fb, err := p.Extract(context.Background(), "https://facebook.com/shop/posts/1")
	if err != nil {
		t.Fatalf("facebook: %v", err)
	}
	if fb.Content != "one\n\ntwo" || fb.Type != domain.ContentImage || fb.MediaURL != "https://img/1.jpg" || fb.Author != "Shop" {
		t.Fatalf("неверный facebook: %+v", fb)
	}
}

func TestYouTubeTranscript(t *testing.T) {
	r := &runnerStub{items: map[string][]map[string]any{
		"streamers/youtube-scraper": {{
			"title": "Intro", "description": "About", "channelName": "Chan",
			"subtitles": []any{map[string]any{"plaintext": "hello there"}},
		}},
	}}
	got, err := newTestPipeline(r).Extract(context.Background(), "https://youtu.be/1")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Content != "Intro\n\nAbout\n\nTranscript:\nhello there" || got.Type != domain.ContentVideo {
		t.Fatalf("неверный youtube: %+v", got)
	}
}

func TestCleanExtractedText(t *testing.T) {
	if got := cleanExtractedText("<p>Hello <b>world</b></p><script>x()</script>"); got != "Hello world" {
		t.Fatalf("разметка должна удаляться, получили %q", got)
	}
	long := strings.Repeat("я", maxExtractedRunes+50)
	if got := cleanExtractedText(long); len([]rune(got)) != maxExtractedRunes {
		t.Fatalf("ожидали обрезку до %d рун, получили %d", maxExtractedRunes, len([]rune(got)))
	}
}

func TestPipelineKeepsTimeForFallbackAfterHungPrimary(t *testing.T) {
	r := &runnerStub{
		hang:  map[string]bool{"apify/instagram-scraper": true},
		items: map[string][]map[string]any{fallbackActor: {{"text": "from page"}}},
	}
	p := NewPipeline(NewPlatformExtractors(r), NewFallback(r), 300*time.Millisecond, zerolog.Nop())
	got, err := p.Extract(context.Background(), "https://instagram.com/p/1")
	if err != nil {
		t.Fatalf("зависший основной экстрактор не должен съедать время fallback: %v", err)
	}
	if got.Content != "from page" || r.count(fallbackActor) != 1 {
		t.Fatalf("ожидали результат fallback: %+v, вызовы %v", got, r.calls)
	}
}

func TestChainGivesAlternateItsOwnDeadline(t *testing.T) {
	r := &runnerStub{
		hang: map[string]bool{"apify/twitter-scraper": true},
		items: map[string][]map[string]any{
			"quacker/twitter-scraper": {{"text": "still here", "user": map[string]any{"screen_name": "dev"}}},
		},
	}
	p := NewPipeline(NewPlatformExtractors(r), NewFallback(r), 600*time.Millisecond, zerolog.Nop())
	got, err := p.Extract(context.Background(), "https://x.com/dev/status/1")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got.Content != "still here" || r.count(fallbackActor) != 0 {
		t.Fatalf("ожидали результат второй стратегии без fallback: %+v, вызовы %v", got, r.calls)
	}
}
