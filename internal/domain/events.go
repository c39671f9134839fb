package domain

import "time"

// EventType описывает тип доменного события.
type EventType string

const (
	// EventPostAnalyzed — пост извлечён, проанализирован и сохранён.
	EventPostAnalyzed EventType = "post.analyzed"
	// EventBrandProfileUpdated — профиль бренда создан или перезаписан.
	EventBrandProfileUpdated EventType = "brand_profile.updated"
	// EventContentGenerated — сгенерирован новый пост.
	EventContentGenerated EventType = "content.generated"
)

// Event уведомляет внешних потребителей. Публикуется без ожидания обработки.
type Event struct {
	ID         string         `json:"event_id"`
	Type       EventType      `json:"type"`
	UserID     string         `json:"user_id"`
	EntityID   string         `json:"entity_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
