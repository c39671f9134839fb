package domain

import (
	"context"
	"io"
	"time"
)

// Extractor превращает URL в нормализованный контент.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, url string) (NormalizedContent, error)
}

// ContentExtractor извлекает контент с выбором стратегии и фолбэком.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (NormalizedContent, error)
}

// PostAnalyzer анализирует один пост. Никогда не возвращает ошибку: при сбое LLM отдаёт DefaultAnalysis.
type PostAnalyzer interface {
	Analyze(ctx context.Context, content NormalizedContent, url string) AnalysisResult
}

// StyleAnalyzer строит профиль стиля по текстам постов.
type StyleAnalyzer interface {
	AnalyzeStyle(ctx context.Context, posts []string) (StyleProfile, error)
}

// SchedulePlanner строит расписание публикаций.
type SchedulePlanner interface {
	PlanSchedule(ctx context.Context, postID string, brand *BrandProfile, now time.Time) PostingSchedule
}

// PostGenerator вызывает внешний сервис генерации постов.
type PostGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationAssets, []byte, error)
}

// UserRepo управляет пользователями.
type UserRepo interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, userID, hash string) error
	SetResetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error
	ResetPasswordWithOTP(ctx context.Context, userID, hash string) error
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (User, error)
	DeleteUser(ctx context.Context, userID string) error
	IncrementCredits(ctx context.Context, userID string) error
}

// PastPostRepo хранит извлечённые посты.
type PastPostRepo interface {
	CreatePastPost(ctx context.Context, post PastPost) (PastPost, error)
	ListPastPosts(ctx context.Context, userID string) ([]PastPost, error)
}

// BrandProfileRepo хранит профиль бренда (один на пользователя).
type BrandProfileRepo interface {
	UpsertBrandBasics(ctx context.Context, userID string, basics BrandBasics) (BrandProfile, error)
	UpsertStyleProfile(ctx context.Context, userID string, style StyleProfile) (BrandProfile, error)
	GetBrandProfile(ctx context.Context, userID string) (BrandProfile, error)
}

// GeneratedPostRepo хранит сгенерированные посты.
type GeneratedPostRepo interface {
	CreateGeneratedPost(ctx context.Context, post GeneratedPost) (GeneratedPost, error)
	GetGeneratedPost(ctx context.Context, userID, postID string) (GeneratedPost, error)
	ListGeneratedPosts(ctx context.Context, q GeneratedPostQuery) ([]GeneratedPost, int, error)
}

// Mailer отправляет транзакционные письма.
type Mailer interface {
	SendOTP(ctx context.Context, email, otp string) error
	SendAccountDeletion(ctx context.Context, email, name string) error
}

// ImageStore загружает изображения в хостинг.
type ImageStore interface {
	Upload(ctx context.Context, body io.Reader, size int64, contentType, folder string) (UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}

// UploadedImage описывает результат загрузки изображения.
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// TokenStore хранит отозванные токены, кулдауны и счётчики попыток.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Cooldown(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// CountAttempt увеличивает счётчик попыток и возвращает новое значение. Счётчик живёт ttl с первой попытки.
	CountAttempt(ctx context.Context, key string, ttl time.Duration) (int64, error)
	ClearAttempts(ctx context.Context, key string) error
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
