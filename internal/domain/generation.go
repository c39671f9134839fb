package domain

// GenerationRequest описывает тело запроса к сервису генерации постов.
type GenerationRequest struct {
	BrandProfile GenerationBrand  `json:"brandProfile"`
	PastPosts    []GenerationPost `json:"pastPosts"`
}

// GenerationBrand описывает профиль бренда в формате сервиса генерации.
type GenerationBrand struct {
	Tone                 string   `json:"tone"`
	Niche                string   `json:"niche"`
	Audience             string   `json:"audience"`
	StyleSummary         string   `json:"styleSummary"`
	AvgSentenceLength    float64  `json:"avgSentenceLength"`
	VocabularyComplexity string   `json:"vocabularyComplexity"`
	CommonPhrases        []string `json:"commonPhrases"`
	TopicPreferences     []string `json:"topicPreferences"`
	EmotionalTone        string   `json:"emotionalTone"`
	StorytellingStyle    string   `json:"storytellingStyle"`
}

// GenerationPost описывает прошлый пост в формате сервиса генерации.
type GenerationPost struct {
	Content      string   `json:"content"`
	Platform     string   `json:"platform"`
	Tone         string   `json:"tone"`
	Hashtags     []string `json:"hashtags"`
	CallToAction string   `json:"callToAction"`
}

// GenerationAssets описывает ответ сервиса генерации.
type GenerationAssets struct {
	Text struct {
		Caption  string   `json:"caption"`
		Hashtags []string `json:"hashtags"`
	} `json:"text"`
	Image struct {
		Caption     string   `json:"caption"`
		Hashtags    []string `json:"hashtags"`
		ImagePrompt string   `json:"imagePrompt"`
		ImageURL    string   `json:"imageUrl"`
	} `json:"image"`
	Video VideoAssets `json:"video"`
}

// VideoAssets описывает видео-часть ответа генерации.
type VideoAssets struct {
	Hook                 string   `json:"hook"`
	Caption              string   `json:"caption"`
	Script               string   `json:"script"`
	ShootingInstructions string   `json:"shootingInstructions"`
	AudienceEngagement   string   `json:"audienceEngagement"`
	Hashtags             []string `json:"hashtags"`
}

// InstagramPreview описывает превью поста для интерфейса.
type InstagramPreview struct {
	PostID             string   `json:"postId"`
	Username           string   `json:"username"`
	UserProfilePicture string   `json:"userProfilePicture"`
	PostImage          string   `json:"postImage"`
	Caption            string   `json:"caption"`
	Hashtags           []string `json:"hashtags"`
	Likes              int      `json:"likes"`
	Comments           int      `json:"comments"`
	Timestamp          string   `json:"timestamp"`
}

// GenerationResult описывает итог генерации.
type GenerationResult struct {
	PostID         string           `json:"postId"`
	Preview        InstagramPreview `json:"preview"`
	HasVideoScript bool             `json:"hasVideoScript"`
	GeneratedAt    string           `json:"generatedAt"`
	CreditsUsed    int              `json:"creditsUsed"`
}

// ShotType описывает тип плана в сцене.
type ShotType string

const (
	ShotCloseup     ShotType = "closeup"
	ShotWide        ShotType = "wide"
	ShotMedium      ShotType = "medium"
	ShotBRoll       ShotType = "b-roll"
	ShotTalkingHead ShotType = "talking-head"
)

// VideoScene описывает сцену видеосценария.
type VideoScene struct {
	SceneNumber     int      `json:"sceneNumber"`
	Title           string   `json:"title"`
	Duration        string   `json:"duration"`
	ShotType        ShotType `json:"shotType"`
	VoiceoverScript string   `json:"voiceoverScript"`
	VisualNotes     string   `json:"visualNotes"`
	ShootingTips    string   `json:"shootingTips"`
}

// VideoScript содержит сценарий, разбитый на сцены.
type VideoScript struct {
	PostID               string       `json:"postId"`
	Hook                 string       `json:"hook"`
	Caption              string       `json:"caption"`
	TotalDuration        string       `json:"totalDuration"`
	Scenes               []VideoScene `json:"scenes"`
	AudienceEngagement   string       `json:"audienceEngagement"`
	Hashtags             []string     `json:"hashtags"`
	ShootingInstructions string       `json:"shootingInstructions"`
}

// SlotRecommendation рекомендует время публикации.
type SlotRecommendation struct {
	RecommendedDate string `json:"recommendedDate"`
	DayOfWeek       string `json:"dayOfWeek"`
	TimeSlot        string `json:"timeSlot"`
	Reason          string `json:"reason"`
}

// PostingGap задаёт рекомендуемый интервал между публикациями.
type PostingGap struct {
	Days   int    `json:"days"`
	Hours  int    `json:"hours"`
	Reason string `json:"reason"`
}

// NextPostSuggestion описывает следующий рекомендуемый пост.
type NextPostSuggestion struct {
	ContentType     ContentType `json:"contentType"`
	RecommendedDate string      `json:"recommendedDate"`
	DayOfWeek       string      `json:"dayOfWeek"`
	Reason          string      `json:"reason"`
}

// PostingTime перечисляет лучшие слоты для дня недели.
type PostingTime struct {
	DayOfWeek  string   `json:"dayOfWeek"`
	TimeSlots  []string `json:"timeSlots"`
	Engagement string   `json:"engagement"`
}

// PostingSchedule описывает расписание публикаций.
type PostingSchedule struct {
	PostID             string             `json:"postId"`
	ImagePost          SlotRecommendation `json:"imagePost"`
	VideoPost          SlotRecommendation `json:"videoPost"`
	GapBetweenPosts    PostingGap         `json:"gapBetweenPosts"`
	NextPostSuggestion NextPostSuggestion `json:"nextPostSuggestion"`
	BestPostingTimes   []PostingTime      `json:"bestPostingTimes"`
}
