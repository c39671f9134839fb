package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

var (
	ErrNoItems      = errors.New("actor returned no items")
	ErrEmptyContent = errors.New("extracted content is empty")
)

// Runner запускает актор скрейпинга и возвращает элементы датасета.
type Runner interface {
	RunActor(ctx context.Context, actor string, input any) ([]map[string]any, error)
}

// ActorExtractor извлекает контент одним запуском одного актора.
type ActorExtractor struct {
	platform domain.Platform
	actor    string
	input    func(url string) any
	mapItem  func(item map[string]any, url string) domain.NormalizedContent
	runner   Runner
}

func (e *ActorExtractor) Name() string { return e.actor }

// Extract запускает актор и отображает первый элемент датасета.
func (e *ActorExtractor) Extract(ctx context.Context, url string) (domain.NormalizedContent, error) {
	items, err := e.runner.RunActor(ctx, e.actor, e.input(url))
	if err == nil && len(items) == 0 {
		err = ErrNoItems
	}
	var content domain.NormalizedContent
	if err == nil {
		content = e.mapItem(items[0], url)
		if strings.TrimSpace(content.Content) == "" {
			err = ErrEmptyContent
		}
	}
	metrics.ObserveExtraction(string(e.platform), e.actor, err)
	if err != nil {
		return domain.NormalizedContent{}, &domain.ExtractionError{Platform: e.platform, Source: e.actor, Err: err}
	}
	return content, nil
}

// Chain пробует стратегии по порядку, каждую ровно один раз.
type Chain struct {
	Platform   domain.Platform
	Strategies []domain.Extractor
}

func (c Chain) Name() string {
	names := make([]string, 0, len(c.Strategies))
	for _, s := range c.Strategies {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

func (c Chain) Extract(ctx context.Context, url string) (domain.NormalizedContent, error) {
	var causes []error
	for i, s := range c.Strategies {
		sctx, cancel := strategyContext(ctx, len(c.Strategies)-i)
		content, err := s.Extract(sctx, url)
		cancel()
		if err == nil {
			return content, nil
		}
		causes = append(causes, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(causes) == 0 {
		causes = append(causes, fmt.Errorf("no strategies configured"))
	}
	return domain.NormalizedContent{}, &domain.ExtractionError{Platform: c.Platform, Source: c.Name(), Err: errors.Join(causes...)}
}

// strategyContext делит остаток дедлайна поровну между оставшимися стратегиями.
func strategyContext(ctx context.Context, left int) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok || left <= 1 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Until(deadline)/time.Duration(left))
}

// NewPlatformExtractors собирает экстракторы для всех платформ.
func NewPlatformExtractors(r Runner) map[domain.Platform]domain.Extractor {
	return map[domain.Platform]domain.Extractor{
		domain.PlatformInstagram: NewInstagram(r),
		domain.PlatformTwitter: Chain{Platform: domain.PlatformTwitter, Strategies: []domain.Extractor{
			NewTwitter(r), NewTwitterAlternate(r),
		}},
		domain.PlatformLinkedIn: Chain{Platform: domain.PlatformLinkedIn, Strategies: []domain.Extractor{
			NewLinkedIn(r), NewLinkedInAlternate(r),
		}},
		domain.PlatformFacebook: NewFacebook(r),
		domain.PlatformYouTube:  NewYouTube(r),
		domain.PlatformBlog:     NewWebsite(r),
	}
}

func NewInstagram(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformInstagram,
		actor:    "apify/instagram-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"directUrls": []string{url}, "resultsLimit": 1, "addParentData": true}
		},
		mapItem: func(item map[string]any, url string) domain.NormalizedContent {
			kind := domain.ContentImage
			if firstString(item, "type") == "Video" {
				kind = domain.ContentVideo
			}
			return domain.NormalizedContent{
				Platform:    domain.PlatformInstagram,
				Content:     firstString(item, "caption", "alt"),
				Author:      firstString(item, "ownerUsername", "username"),
				Type:        kind,
				MediaURL:    firstString(item, "displayUrl", "videoUrl", "thumbnailSrc"),
				OriginalURL: url,
				Metadata: metadata(item, map[string][]string{
					"likes":     {"likesCount"},
					"comments":  {"commentsCount"},
					"timestamp": {"timestamp"},
				}),
			}
		},
	}
}

func mapTweet(item map[string]any, url string) domain.NormalizedContent {
	return domain.NormalizedContent{
		Platform:    domain.PlatformTwitter,
		Content:     cleanTwitter(firstString(item, "full_text", "text", "content")),
		Author:      firstString(item, "author.username", "user.screen_name", "username"),
		Type:        domain.ContentText,
		OriginalURL: url,
		Metadata: metadata(item, map[string][]string{
			"likes":     {"likes", "favorite_count"},
			"retweets":  {"retweets", "retweet_count"},
			"replies":   {"replies", "reply_count"},
			"timestamp": {"created_at", "createdAt"},
		}),
	}
}

func NewTwitter(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformTwitter,
		actor:    "apify/twitter-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"startUrls": []string{url}, "tweetsDesired": 1, "searchMode": "live"}
		},
		mapItem: mapTweet,
	}
}

func NewTwitterAlternate(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformTwitter,
		actor:    "quacker/twitter-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"startUrls": []string{url}, "maxItems": 1}
		},
		mapItem: mapTweet,
	}
}

func mapLinkedInPost(item map[string]any, url string) domain.NormalizedContent {
	return domain.NormalizedContent{
		Platform:    domain.PlatformLinkedIn,
		Content:     cleanLinkedIn(firstString(item, "text", "commentary", "content", "description", "postContent")),
		Author:      firstString(item, "authorName", "author.name", "profile.name"),
		Type:        domain.ContentText,
		OriginalURL: url,
		Metadata: metadata(item, map[string][]string{
			"likes":     {"numLikes", "reactions"},
			"comments":  {"numComments", "commentsCount"},
			"shares":    {"numShares"},
			"timestamp": {"postedAt", "publishedAt"},
		}),
	}
}

func NewLinkedIn(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformLinkedIn,
		actor:    "curious_coder/linkedin-post-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"postUrl": url}
		},
		mapItem: mapLinkedInPost,
	}
}

func NewLinkedInAlternate(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformLinkedIn,
		actor:    "anchor/linkedin-post-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"startUrls": []map[string]string{{"url": url}}, "maxItems": 1}
		},
		mapItem: mapLinkedInPost,
	}
}

func NewFacebook(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformFacebook,
		actor:    "apify/facebook-posts-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"startUrls": []string{url}, "maxPosts": 1}
		},
		mapItem: func(item map[string]any, url string) domain.NormalizedContent {
			kind := domain.ContentText
			media := firstString(item, "video")
			if images, ok := item["images"].([]any); ok && len(images) > 0 {
				kind = domain.ContentImage
				if first, ok := images[0].(map[string]any); ok {
					if u := firstString(first, "url"); u != "" {
						media = u
					}
				}
			}
			return domain.NormalizedContent{
				Platform: domain.PlatformFacebook,
				Content: joinFacebook(
					firstString(item, "text"),
					firstString(item, "postText"),
					firstString(item, "description"),
				),
				Author:      firstString(item, "username", "authorName", "pageTitle"),
				Type:        kind,
				MediaURL:    media,
				OriginalURL: url,
				Metadata: metadata(item, map[string][]string{
					"likes":     {"likes"},
					"comments":  {"comments"},
					"shares":    {"shares"},
					"timestamp": {"time"},
				}),
			}
		},
	}
}

func NewYouTube(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformYouTube,
		actor:    "streamers/youtube-scraper",
		runner:   r,
		input: func(url string) any {
			return map[string]any{"startUrls": []map[string]string{{"url": url}}, "downloadSubtitles": true, "maxResults": 1}
		},
		mapItem: func(item map[string]any, url string) domain.NormalizedContent {
			title := firstString(item, "title")
			description := firstString(item, "description")
			content := strings.TrimSpace(title + "\n\n" + description)
			if transcript := stringify(item["subtitles"]); transcript != "" {
				content += "\n\nTranscript:\n" + transcript
			}
			return domain.NormalizedContent{
				Platform:    domain.PlatformYouTube,
				Content:     content,
				Author:      firstString(item, "channelName", "author"),
				Type:        domain.ContentVideo,
				OriginalURL: url,
				Metadata: metadata(item, map[string][]string{
					"views":    {"viewCount"},
					"likes":    {"likeCount"},
					"comments": {"commentCount"},
					"duration": {"duration"},
				}),
			}
		},
	}
}

func NewWebsite(r Runner) *ActorExtractor {
	return &ActorExtractor{
		platform: domain.PlatformBlog,
		actor:    "apify/website-content-crawler",
		runner:   r,
		input: func(url string) any {
			return map[string]any{
				"startUrls":     []map[string]string{{"url": url}},
				"maxCrawlPages": 1,
				"saveHtml":      false,
				"saveMarkdown":  true,
			}
		},
		mapItem: func(item map[string]any, url string) domain.NormalizedContent {
			return domain.NormalizedContent{
				Platform:    domain.PlatformBlog,
				Content:     stripMarkup(firstString(item, "markdown", "text")),
				Author:      firstString(item, "metadata.author", "author"),
				Type:        domain.ContentText,
				OriginalURL: url,
				Metadata: metadata(item, map[string][]string{
					"title":       {"metadata.title", "title"},
					"publishDate": {"metadata.publishDate"},
				}),
			}
		},
	}
}
