package domain

import (
	"encoding/json"
	"time"
)

// Plan описывает тарифный план пользователя.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// User описывает пользователя сервиса.
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Name              string     `json:"name,omitempty"`
	Bio               string     `json:"bio,omitempty"`
	ProfileImageURL   string     `json:"profileImageUrl,omitempty"`
	Plan              Plan       `json:"plan"`
	CreditsUsed       int        `json:"creditsUsed"`
	CreditsLimit      int        `json:"creditsLimit"`
	IsActive          bool       `json:"isActive"`
	ResetOTP          string     `json:"-"`
	ResetOTPExpiresAt *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Principal хранит проверенные утверждения аутентифицированного пользователя.
type Principal struct {
	UserID string
	Email  string
	Plan   Plan
}

// PastPost описывает ранее опубликованный пост пользователя с анализом.
type PastPost struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Content   string          `json:"content"`
	Platform  Platform        `json:"platform"`
	URL       string          `json:"url"`
	Author    string          `json:"author,omitempty"`
	MediaURL  string          `json:"mediaUrl,omitempty"`
	Type      ContentType     `json:"type"`
	Metadata  map[string]any  `json:"metadata"`
	Analysis  *AnalysisResult `json:"analysis,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// BrandBasics хранит базовые сведения о бренде, заданные пользователем.
type BrandBasics struct {
	Tone     *Tone   `json:"tone,omitempty"`
	Niche    *string `json:"niche,omitempty"`
	Audience *string `json:"audience,omitempty"`
}

// BrandProfile описывает профиль голоса бренда. Один на пользователя.
type BrandProfile struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Tone     Tone   `json:"tone,omitempty"`
	Niche    string `json:"niche,omitempty"`
	Audience string `json:"audience,omitempty"`
	StyleProfile
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MarshalJSON отдаёт тон стиля полем styleTone: ключ tone занят базовыми данными.
func (b BrandProfile) MarshalJSON() ([]byte, error) {
	type plain BrandProfile
	return json.Marshal(struct {
		plain
		StyleTone Tone `json:"styleTone,omitempty"`
	}{plain(b), b.StyleProfile.Tone})
}

// GeneratedPost хранит результат генерации контента.
type GeneratedPost struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Platform  string          `json:"platform"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SortOrder задаёт направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// GeneratedPostQuery задаёт параметры выборки сгенерированных постов.
type GeneratedPostQuery struct {
	UserID  string
	Page    int
	Limit   int
	Search  string
	Sort    SortOrder
	OrderBy string
}

// PageMeta описывает пагинацию.
type PageMeta struct {
	Total     int `json:"total"`
	NoOfPages int `json:"noofpages"`
	Page      int `json:"page"`
	Limit     int `json:"limit"`
}

// UserProfile описывает ответ /me со связанными данными.
type UserProfile struct {
	User
	BrandProfile   *BrandProfile   `json:"brandProfile"`
	PastPosts      []PastPost      `json:"pastPosts"`
	GeneratedPosts []GeneratedPost `json:"generatedPosts"`
}

// ProfileUpdate описывает частичное обновление профиля.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	Bio             *string
	ProfileImageURL *string
}
