package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"creatora-api/internal/infra/metrics"
)

// ErrEmptyResponse означает, что модель не вернула ни одного варианта.
var ErrEmptyResponse = errors.New("llm: пустой ответ")

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client выполняет Chat Completions запросы к OpenAI-совместимому API (по умолчанию Gemini).
type Client struct {
	inner   chatClient
	model   string
	timeout time.Duration
}

// Config описывает параметры LLM.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient создаёт клиента на базе go-openai.
func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return newClient(openai.NewClientWithConfig(oc), cfg.Model, cfg.Timeout)
}

func newClient(inner chatClient, model string, timeout time.Duration) *Client {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{inner: inner, model: model, timeout: timeout}
}

// Model возвращает имя модели.
func (c *Client) Model() string { return c.model }

// Complete отправляет системную и пользовательскую инструкции и возвращает текст ответа.
// Если jsonMode включён, модель просят вернуть JSON-объект.
func (c *Client) Complete(ctx context.Context, system, prompt string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		Messages:    make([]openai.ChatCompletionMessage, 0, 2),
	}
	if system != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := c.inner.CreateChatCompletion(ctx, req)
	metrics.ObserveNetworkRequest("llm", "chat_completions", c.model, start, err)
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	metrics.ObserveLLMGeneration(c.model, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
