package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"creatora-api/internal/infra/metrics"
)

// ErrUnavailable возвращается, когда автомат разомкнут после серии сбоев провайдера.
var ErrUnavailable = errors.New("apify: provider temporarily unavailable")

// Item описывает один элемент датасета актора.
type Item = map[string]any

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client запускает акторы Apify синхронно и возвращает элементы датасета.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker[[]Item]
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.apify.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	breaker := circuitbreaker.NewBuilder[[]Item]().
		WithFailureThresholdRatio(5, 10).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		HandleIf(func(_ []Item, err error) bool {
			if err == nil {
				return false
			}
			// отмена клиентом не говорит о здоровье провайдера
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}).
		Build()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
	}
}

func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// RunActor выполняет один запуск актора и возвращает элементы датасета.
func (c *Client) RunActor(ctx context.Context, actor string, input any) ([]Item, error) {
	if c.cfg.Token == "" {
		return nil, fmt.Errorf("apify: token is not configured")
	}
	items, err := failsafe.With[[]Item](c.breaker).Get(func() ([]Item, error) {
		return c.run(ctx, actor, input)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, ErrUnavailable
	}
	return items, err
}

func (c *Client) run(ctx context.Context, actor string, input any) ([]Item, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(strings.ReplaceAll(actor, "/", "~")),
		url.QueryEscape(c.cfg.Token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err == nil && resp.StatusCode >= http.StatusBadRequest {
		err = fmt.Errorf("status %d", resp.StatusCode)
	}
	metrics.ObserveNetworkRequest("apify", "run_actor", actor, start, err)
	if err != nil {
		if resp != nil {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, fmt.Errorf("run actor %s: %w: %s", actor, err, strings.TrimSpace(string(snippet)))
		}
		return nil, fmt.Errorf("run actor %s: %w", actor, err)
	}
	defer resp.Body.Close()

	var items []Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode dataset of %s: %w", actor, err)
	}
	return items, nil
}
