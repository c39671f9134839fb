package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const brandColumns = `id, user_id, tone, niche, audience, style_summary, style_tone, storytelling_style, humor_usage,
vocabulary_complexity, formality_score, emotional_tone, common_phrases, topic_preferences, avg_sentence_length, created_at, updated_at`

func scanBrand(row pgx.Row) (domain.BrandProfile, error) {
	var bp domain.BrandProfile
	err := row.Scan(&bp.ID, &bp.UserID, &bp.Tone, &bp.Niche, &bp.Audience, &bp.StyleSummary, &bp.StyleProfile.Tone,
		&bp.StorytellingStyle, &bp.HumorUsage, &bp.VocabularyComplexity, &bp.FormalityScore, &bp.EmotionalTone,
		&bp.CommonPhrases, &bp.TopicPreferences, &bp.AvgSentenceLength, &bp.CreatedAt, &bp.UpdatedAt)
	return bp, err
}

// UpsertBrandBasics создаёт профиль или обновляет только переданные поля.
func (p *Postgres) UpsertBrandBasics(ctx context.Context, userID string, basics domain.BrandBasics) (domain.BrandProfile, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var tone *string
	if basics.Tone != nil {
		t := string(*basics.Tone)
		tone = &t
	}
	start := time.Now()
	bp, err := scanBrand(p.pool.QueryRow(ctx, `
INSERT INTO brand_profiles (user_id, tone, niche, audience)
VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''))
ON CONFLICT (user_id) DO UPDATE SET
	tone = COALESCE($2, brand_profiles.tone),
	niche = COALESCE($3, brand_profiles.niche),
	audience = COALESCE($4, brand_profiles.audience),
	updated_at = now()
RETURNING `+brandColumns,
		userID, tone, basics.Niche, basics.Audience))
	metrics.ObserveNetworkRequest("postgres", "brand_profiles_upsert_basics", "brand_profiles", start, err)
	return bp, mapErr(err)
}

// UpsertStyleProfile перезаписывает стилевые поля; одна строка на пользователя.
func (p *Postgres) UpsertStyleProfile(ctx context.Context, userID string, style domain.StyleProfile) (domain.BrandProfile, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	phrases := style.CommonPhrases
	if phrases == nil {
		phrases = []string{}
	}
	topics := style.TopicPreferences
	if topics == nil {
		topics = []string{}
	}
	start := time.Now()
	bp, err := scanBrand(p.pool.QueryRow(ctx, `
INSERT INTO brand_profiles (user_id, style_summary, style_tone, storytelling_style, humor_usage, vocabulary_complexity,
	formality_score, emotional_tone, common_phrases, topic_preferences, avg_sentence_length)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (user_id) DO UPDATE SET
	style_summary = EXCLUDED.style_summary,
	style_tone = EXCLUDED.style_tone,
	storytelling_style = EXCLUDED.storytelling_style,
	humor_usage = EXCLUDED.humor_usage,
	vocabulary_complexity = EXCLUDED.vocabulary_complexity,
	formality_score = EXCLUDED.formality_score,
	emotional_tone = EXCLUDED.emotional_tone,
	common_phrases = EXCLUDED.common_phrases,
	topic_preferences = EXCLUDED.topic_preferences,
	avg_sentence_length = EXCLUDED.avg_sentence_length,
	updated_at = now()
RETURNING `+brandColumns,
		userID, style.StyleSummary, string(style.Tone), style.StorytellingStyle, style.HumorUsage, style.VocabularyComplexity,
		style.FormalityScore, style.EmotionalTone, phrases, topics, style.AvgSentenceLength))
	metrics.ObserveNetworkRequest("postgres", "brand_profiles_upsert_style", "brand_profiles", start, err)
	return bp, mapErr(err)
}

func (p *Postgres) GetBrandProfile(ctx context.Context, userID string) (domain.BrandProfile, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	bp, err := scanBrand(p.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brand_profiles WHERE user_id=$1`, userID))
	metrics.ObserveNetworkRequest("postgres", "brand_profiles_get", "brand_profiles", start, err)
	return bp, mapErr(err)
}
