package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const dateLayout = "2006-01-02"

const scheduleSystem = "You are a social media scheduling expert specializing in Instagram content strategy. Reply with JSON only."

const schedulePrompt = `Brand Profile:
- Niche: %s
- Audience: %s
- Tone: %s

Today is %s.

Create an optimal posting schedule for:
1. Image Post (product/brand photo with caption)
2. Video/Reel (short-form video content)

Consider best engagement times for the niche, the optimal gap between posts, when the target audience is most active and content variety.

Return ONLY valid JSON (no markdown) in this exact schema:
{
  "imagePost": {"recommendedDate": "YYYY-MM-DD", "dayOfWeek": "Monday", "timeSlot": "6:00 PM - 8:00 PM", "reason": "..."},
  "videoPost": {"recommendedDate": "YYYY-MM-DD", "dayOfWeek": "Wednesday", "timeSlot": "12:00 PM - 2:00 PM", "reason": "..."},
  "gapBetweenPosts": {"days": 2, "hours": 48, "reason": "..."},
  "nextPostSuggestion": {"contentType": "text", "recommendedDate": "YYYY-MM-DD", "dayOfWeek": "Friday", "reason": "..."},
  "bestPostingTimes": [{"dayOfWeek": "Monday", "timeSlots": ["6:00 PM - 8:00 PM"], "engagement": "High"}]
}`

type scheduleAnalysis domain.PostingSchedule

func (s scheduleAnalysis) validate() error {
	for name, date := range map[string]string{
		"imagePost":          s.ImagePost.RecommendedDate,
		"videoPost":          s.VideoPost.RecommendedDate,
		"nextPostSuggestion": s.NextPostSuggestion.RecommendedDate,
	} {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return fmt.Errorf("%s.recommendedDate: %w", name, err)
		}
	}
	if s.GapBetweenPosts.Days < 0 || s.GapBetweenPosts.Hours < 0 {
		return errors.New("gapBetweenPosts must be non-negative")
	}
	return nil
}

// SchedulePlanner строит расписание публикаций через LLM с детерминированным запасным вариантом.
type SchedulePlanner struct {
	llm Completer
	log zerolog.Logger
}

func NewSchedulePlanner(llm Completer, logger zerolog.Logger) *SchedulePlanner {
	return &SchedulePlanner{llm: llm, log: logger}
}

func (p *SchedulePlanner) PlanSchedule(ctx context.Context, postID string, brand *domain.BrandProfile, now time.Time) domain.PostingSchedule {
	var niche, audience, tone string
	if brand != nil {
		niche, audience, tone = brand.Niche, brand.Audience, string(brand.Tone)
	}
	prompt := fmt.Sprintf(schedulePrompt, niche, audience, tone, now.Format("Monday, January 2, 2006"))
	raw, err := p.llm.Complete(ctx, scheduleSystem, prompt, true)
	if err == nil {
		var parsed scheduleAnalysis
		parsed, err = DecodeJSON[scheduleAnalysis](raw)
		if err == nil {
			schedule := domain.PostingSchedule(parsed)
			schedule.PostID = postID
			return schedule
		}
	}
	p.log.Warn().Err(err).Str("post_id", postID).Msg("analyzer: расписание по умолчанию")
	metrics.IncAnalysisFallback("schedule")
	return DefaultSchedule(postID, now)
}

// DefaultSchedule строит расписание на завтра, +3 и +5 дней.
func DefaultSchedule(postID string, now time.Time) domain.PostingSchedule {
	now = now.UTC()
	image := now.AddDate(0, 0, 1)
	video := now.AddDate(0, 0, 3)
	next := now.AddDate(0, 0, 5)
	return domain.PostingSchedule{
		PostID: postID,
		ImagePost: domain.SlotRecommendation{
			RecommendedDate: image.Format(dateLayout),
			DayOfWeek:       image.Weekday().String(),
			TimeSlot:        "6:00 PM - 8:00 PM",
			Reason:          "Evening hours typically see higher engagement for visual content",
		},
		VideoPost: domain.SlotRecommendation{
			RecommendedDate: video.Format(dateLayout),
			DayOfWeek:       video.Weekday().String(),
			TimeSlot:        "12:00 PM - 2:00 PM",
			Reason:          "Lunch hours are optimal for short-form video content consumption",
		},
		GapBetweenPosts: domain.PostingGap{
			Days:   2,
			Hours:  48,
			Reason: "Maintains audience interest without overwhelming them",
		},
		NextPostSuggestion: domain.NextPostSuggestion{
			ContentType:     domain.ContentText,
			RecommendedDate: next.Format(dateLayout),
			DayOfWeek:       next.Weekday().String(),
			Reason:          "Text posts work well for engagement and community building",
		},
		BestPostingTimes: []domain.PostingTime{
			{DayOfWeek: "Monday", TimeSlots: []string{"8:00 AM - 10:00 AM", "6:00 PM - 8:00 PM"}, Engagement: "High"},
			{DayOfWeek: "Wednesday", TimeSlots: []string{"12:00 PM - 2:00 PM", "7:00 PM - 9:00 PM"}, Engagement: "Very High"},
			{DayOfWeek: "Friday", TimeSlots: []string{"5:00 PM - 7:00 PM"}, Engagement: "Medium"},
		},
	}
}
