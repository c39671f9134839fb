package extractor

import (
	"context"
	"strings"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const fallbackActor = "apify/web-scraper"

const fallbackPageFunction = `
async function pageFunction(context) {
  const { $, request } = context;
  const textContent = $('article, main, .post, .content, [role="main"]').text().trim() || $('body').text().trim();
  const author = $('[rel="author"]').text() || $('meta[name="author"]').attr('content') || $('.author').text();
  return { text: textContent, author: author, url: request.url };
}
`

// Fallback скрейпит страницу универсальным актором, когда платформенный экстрактор не справился.
type Fallback struct {
	runner Runner
}

func NewFallback(r Runner) *Fallback {
	return &Fallback{runner: r}
}

// Extract сохраняет определённую ранее платформу; тип всегда text.
func (f *Fallback) Extract(ctx context.Context, url string, platform domain.Platform) (domain.NormalizedContent, error) {
	items, err := f.runner.RunActor(ctx, fallbackActor, map[string]any{
		"startUrls":           []map[string]string{{"url": url}},
		"maxRequestsPerCrawl": 1,
		"pseudoUrls":          []string{},
		"pageFunction":        fallbackPageFunction,
	})
	if err == nil && len(items) == 0 {
		err = ErrNoItems
	}
	var text string
	if err == nil {
		text = cleanExtractedText(firstString(items[0], "text"))
		if text == "" {
			err = ErrEmptyContent
		}
	}
	metrics.ObserveExtraction(string(platform), "fallback", err)
	if err != nil {
		return domain.NormalizedContent{}, &domain.ExtractionError{Platform: platform, Source: fallbackActor, Err: err}
	}
	return domain.NormalizedContent{
		Platform:    platform,
		Content:     text,
		Author:      strings.TrimSpace(firstString(items[0], "author")),
		Type:        domain.ContentText,
		OriginalURL: url,
		Metadata:    map[string]any{},
	}, nil
}
