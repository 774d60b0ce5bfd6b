package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"copywriter/internal/config"
)

// MoonshotClient обращается к OpenAI-совместимому endpoint Moonshot напрямую через net/http.
// Один вызов Dispatch — ровно одна попытка.
type MoonshotClient struct {
	baseURL      string
	defaultModel string
	timeout      time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewMoonshotClient(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) *MoonshotClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MoonshotClient{
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout,
		httpClient:   httpClient,
		logger:       logger,
	}
}

func (c *MoonshotClient) Dispatch(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	if model == "" {
		return "", ErrInvalidModel
	}

	buf, err := json.Marshal(completionRequest{
		Model:       model,
		Messages:    messagesFor(req.Bundle),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		derr := classifyTransport(err, c.timeout)
		c.logDispatch(model, 0, start, derr)
		return "", derr
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		derr := classifyTransport(err, c.timeout)
		c.logDispatch(model, resp.StatusCode, start, derr)
		return "", derr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		derr := newHTTPError(resp.StatusCode, bodyBytes)
		c.logDispatch(model, resp.StatusCode, start, derr)
		return "", derr
	}

	content, derr := parseCompletion(bodyBytes)
	c.logDispatch(model, resp.StatusCode, start, derr)
	if derr != nil {
		return "", derr
	}
	return content, nil
}

func parseCompletion(body []byte) (string, *Error) {
	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", newMalformedError("decode response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", newMalformedError("response has no choices", nil)
	}
	content := parsed.Choices[0].Message.Content
	if content == nil || *content == "" {
		return "", newMalformedError("empty response from model", nil)
	}
	return *content, nil
}

func (c *MoonshotClient) logDispatch(model string, status int, start time.Time, derr *Error) {
	if c.logger == nil {
		return
	}
	attrs := []any{
		slog.String("model", model),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	}
	if derr != nil {
		attrs = append(attrs, slog.String("kind", string(derr.Kind)), slog.String("error", derr.Error()))
		c.logger.Warn("moonshot dispatch failed", attrs...)
		return
	}
	c.logger.Debug("moonshot dispatch", attrs...)
}
