package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

// RabbitPublisher публикует доменные события в topic-exchange RabbitMQ.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

var _ domain.EventPublisher = (*RabbitPublisher)(nil)

// NewRabbitPublisher подключается к брокеру и объявляет exchange.
func NewRabbitPublisher(amqpURL, exchange string) (*RabbitPublisher, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if exchange == "" {
		return nil, errors.New("exchange name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish отправляет событие с ключом маршрутизации, равным типу события.
func (p *RabbitPublisher) Publish(ctx context.Context, event domain.Event) error {
	event = stamp(event)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	start := time.Now()
	err = p.ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", string(event.Type), start, err)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	chErr := p.ch.Close()
	connErr := p.conn.Close()
	return errors.Join(chErr, connErr)
}

// LogPublisher пишет события в лог, когда брокер не настроен.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher создаёт публикатор-заглушку.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: logger}
}

// Publish логирует событие.
func (p *LogPublisher) Publish(_ context.Context, event domain.Event) error {
	event = stamp(event)
	p.log.Debug().Str("event_id", event.ID).Str("type", string(event.Type)).Str("user_id", event.UserID).Msg("events: событие без брокера")
	return nil
}

func stamp(event domain.Event) domain.Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}
