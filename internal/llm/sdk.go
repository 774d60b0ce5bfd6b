package llm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"copywriter/internal/config"
)

// SDKClient выполняет тот же запрос через openai-go. Контракт и классификация
// ошибок совпадают с MoonshotClient; встроенные ретраи SDK отключены.
type SDKClient struct {
	baseURL      string
	defaultModel string
	timeout      time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewSDKClient(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) *SDKClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SDKClient{
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		timeout:      cfg.Timeout,
		httpClient:   httpClient,
		logger:       logger,
	}
}

func (c *SDKClient) Dispatch(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	if model == "" {
		return "", ErrInvalidModel
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	capture := &responseCapture{}
	// Клиент создается на каждый вызов: ключ пользователя не должен переживать запрос.
	client := openai.NewClient(
		option.WithAPIKey(req.APIKey),
		option.WithBaseURL(strings.TrimSuffix(c.baseURL, "/")+"/"),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
		option.WithMiddleware(capture.middleware),
	)

	start := time.Now()
	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Bundle.System),
			openai.UserMessage(req.Bundle.User),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		derr := c.classify(err, capture)
		c.logDispatch(model, capture.status, start, derr)
		return "", derr
	}

	if len(completion.Choices) == 0 {
		derr := newMalformedError("response has no choices", nil)
		c.logDispatch(model, capture.status, start, derr)
		return "", derr
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		derr := newMalformedError("empty response from model", nil)
		c.logDispatch(model, capture.status, start, derr)
		return "", derr
	}
	c.logDispatch(model, capture.status, start, nil)
	return content, nil
}

func (c *SDKClient) classify(err error, capture *responseCapture) *Error {
	var apiErr *openai.Error
	switch {
	case capture.status != 0 && !isSuccess(capture.status):
		return newHTTPError(capture.status, capture.body)
	case errors.As(err, &apiErr):
		return &Error{Kind: KindHTTP, Status: apiErr.StatusCode, Message: apiErr.Message, Err: err}
	case isSuccess(capture.status) && !isTimeout(err):
		// Ответ пришел, но SDK не смог его разобрать.
		return newMalformedError("decode response", err)
	default:
		return classifyTransport(err, c.timeout)
	}
}

func (c *SDKClient) logDispatch(model string, status int, start time.Time, derr *Error) {
	if c.logger == nil {
		return
	}
	attrs := []any{
		slog.String("model", model),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("dispatcher", config.DispatcherSDK),
	}
	if derr != nil {
		attrs = append(attrs, slog.String("kind", string(derr.Kind)), slog.String("error", derr.Error()))
		c.logger.Warn("moonshot dispatch failed", attrs...)
		return
	}
	c.logger.Debug("moonshot dispatch", attrs...)
}

// responseCapture запоминает статус и тело последнего ответа, чтобы
// классифицировать ошибки SDK так же, как в MoonshotClient.
type responseCapture struct {
	status int
	body   []byte
}

func (rc *responseCapture) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil || resp == nil {
		return resp, err
	}
	rc.status = resp.StatusCode
	if isSuccess(resp.StatusCode) {
		return resp, nil
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	rc.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
