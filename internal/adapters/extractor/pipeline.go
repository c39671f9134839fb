package extractor

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
)

// fallbackShare задаёт долю общего таймаута, которая остаётся за fallback.
const fallbackShare = 3

// Pipeline выбирает экстрактор по платформе и один раз откатывается на Fallback.
type Pipeline struct {
	extractors map[domain.Platform]domain.Extractor
	fallback   *Fallback
	timeout    time.Duration
	log        zerolog.Logger
}

func NewPipeline(extractors map[domain.Platform]domain.Extractor, fallback *Fallback, timeout time.Duration, logger zerolog.Logger) *Pipeline {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Pipeline{extractors: extractors, fallback: fallback, timeout: timeout, log: logger}
}

// Extract извлекает контент по URL.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (domain.NormalizedContent, error) {
	if err := validateURL(rawURL); err != nil {
		return domain.NormalizedContent{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	platform := DetectPlatform(rawURL)
	p.log.Info().Str("platform", string(platform)).Str("url", rawURL).Msg("extractor: старт извлечения")

	primary, ok := p.extractors[platform]
	var primaryErr error
	if ok {
		primaryCtx, cancelPrimary := context.WithTimeout(ctx, p.timeout-p.timeout/fallbackShare)
		content, err := primary.Extract(primaryCtx, rawURL)
		cancelPrimary()
		if err == nil {
			return content, nil
		}
		var extractionErr *domain.ExtractionError
		if !errors.As(err, &extractionErr) {
			return domain.NormalizedContent{}, err
		}
		primaryErr = err
	} else {
		primaryErr = &domain.ExtractionError{Platform: platform, Err: fmt.Errorf("no extractor registered")}
	}
	p.log.Warn().Err(primaryErr).Str("platform", string(platform)).Msg("extractor: основной экстрактор не справился, пробуем fallback")

	if ctx.Err() != nil {
		return domain.NormalizedContent{}, primaryErr
	}
	content, err := p.fallback.Extract(ctx, rawURL, platform)
	if err != nil {
		p.log.Error().Err(err).Str("platform", string(platform)).Msg("extractor: fallback тоже не справился")
		return domain.NormalizedContent{}, primaryErr
	}
	return content, nil
}

func validateURL(raw string) error {
	u, err := neturl.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.NewValidationError("url must be an absolute http(s) URL")
	}
	return nil
}
