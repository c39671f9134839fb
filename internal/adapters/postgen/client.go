package postgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const serviceName = "post-generation"

// Client обращается к внешнему сервису генерации постов.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Generate отправляет профиль бренда и прошлые посты. Возвращает разобранные ассеты и сырой JSON ответа.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationAssets, []byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.GenerationAssets{}, nil, fmt.Errorf("marshal request: %w", err)
	}
	resolved := *c.baseURL
	resolved.Path = path.Clean(strings.TrimSuffix(c.baseURL.Path, "/") + "/generate-post")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, resolved.String(), bytes.NewReader(body))
	if err != nil {
		return domain.GenerationAssets{}, nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	raw, err := c.do(httpReq)
	metrics.ObserveNetworkRequest("postgen", "generate_post", resolved.Host, start, err)
	if err != nil {
		return domain.GenerationAssets{}, nil, &domain.UpstreamError{Service: serviceName, Err: err}
	}
	var assets domain.GenerationAssets
	if err := json.Unmarshal(raw, &assets); err != nil {
		return domain.GenerationAssets{}, nil, &domain.UpstreamError{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
	}
	return assets, raw, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status=%d message=%s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

var _ domain.PostGenerator = (*Client)(nil)
