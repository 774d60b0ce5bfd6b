package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"copywriter/internal/config"
	"copywriter/internal/llm"
	"copywriter/internal/metrics"
	"copywriter/internal/prompt"
)

// State — этап одного цикла генерации: Idle → Generating → Success | Failed.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrMissingTopic      = errors.New("missing topic")
	ErrInvalidInput      = errors.New("invalid input")
)

// ValidationError — отказ до отправки запроса. Reason один из ErrMissing*/ErrInvalidInput.
type ValidationError struct {
	Reason error
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Field, e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// Input — сырые значения формы. APIKey нигде не сохраняется и не логируется.
type Input struct {
	APIKey   string
	Topic    string
	Style    string
	Platform string
	Model    string
}

// Submission — проверенный и нормализованный запрос.
type Submission struct {
	APIKey   string
	Topic    string
	Style    prompt.Style
	Platform string
	Model    string
}

// Result — итог одного цикла. Передается в рендерер и затем выбрасывается.
type Result struct {
	State    State
	Platform string
	Style    prompt.Style
	Model    string
	Content  string
	Err      error
	Duration time.Duration
}

func (r Result) Succeeded() bool {
	return r.State == StateSuccess
}

type Deps struct {
	Dispatcher llm.Dispatcher
	LLM        config.LLMConfig
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

type Service struct {
	dispatcher   llm.Dispatcher
	defaultModel string
	temperature  float64
	maxTokens    int
	metrics      *metrics.Recorder
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		dispatcher:   deps.Dispatcher,
		defaultModel: deps.LLM.DefaultModel,
		temperature:  deps.LLM.Temperature,
		maxTokens:    deps.LLM.MaxTokens,
		metrics:      deps.Metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Validate проверяет ввод в том же порядке, что и форма: сначала ключ, затем тема.
func (s *Service) Validate(in Input) (Submission, error) {
	sub := Submission{
		APIKey:   strings.TrimSpace(in.APIKey),
		Topic:    strings.TrimSpace(in.Topic),
		Platform: strings.TrimSpace(in.Platform),
		Model:    strings.TrimSpace(in.Model),
	}
	if sub.APIKey == "" {
		return Submission{}, &ValidationError{Reason: ErrMissingCredential, Field: "api_key"}
	}
	if sub.Topic == "" {
		return Submission{}, &ValidationError{Reason: ErrMissingTopic, Field: "topic"}
	}

	style, err := prompt.ParseStyle(strings.TrimSpace(in.Style))
	if err != nil {
		return Submission{}, &ValidationError{Reason: ErrInvalidInput, Field: "style", Detail: err.Error()}
	}
	sub.Style = style

	if sub.Platform == "" {
		sub.Platform = prompt.DefaultPlatform()
	}
	if !prompt.HasPlatform(sub.Platform) {
		return Submission{}, &ValidationError{Reason: ErrInvalidInput, Field: "platform", Detail: "unknown platform: " + sub.Platform}
	}

	if sub.Model == "" {
		sub.Model = s.defaultModel
	}
	if sub.Model != s.defaultModel && !llm.IsValidModel(sub.Model) {
		return Submission{}, &ValidationError{Reason: ErrInvalidInput, Field: "model", Detail: "unknown model: " + sub.Model}
	}
	return sub, nil
}

// Generate выполняет один независимый цикл. Ошибки не повторяются и не
// прерывают процесс: они возвращаются внутри Result.
func (s *Service) Generate(ctx context.Context, in Input) Result {
	sub, err := s.Validate(in)
	if err != nil {
		reason := RejectReason(err)
		s.metrics.ObserveRejected(reason)
		s.logger.Info("generation rejected", slog.String("reason", reason))
		return Result{State: StateFailed, Err: err}
	}

	bundle, err := prompt.ComposeFor(sub.Platform, sub.Topic, sub.Style)
	if err != nil {
		return Result{State: StateFailed, Err: err}
	}

	res := Result{
		State:    StateGenerating,
		Platform: sub.Platform,
		Style:    sub.Style,
		Model:    sub.Model,
	}
	s.logger.Debug("generation started",
		slog.String("platform", sub.Platform),
		slog.String("style", sub.Style.String()),
		slog.String("model", sub.Model),
		slog.Int("topic_len", len([]rune(sub.Topic))),
	)

	start := s.now()
	content, err := s.dispatcher.Dispatch(ctx, llm.Request{
		APIKey:      sub.APIKey,
		Bundle:      bundle,
		Model:       sub.Model,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	res.Duration = s.now().Sub(start)

	if err != nil {
		res.State = StateFailed
		res.Err = err
		s.metrics.ObserveGeneration(sub.Platform, sub.Model, Outcome(err), res.Duration)
		s.logger.Warn("generation failed",
			slog.String("platform", sub.Platform),
			slog.String("model", sub.Model),
			slog.String("outcome", Outcome(err)),
			slog.Duration("duration", res.Duration),
		)
		return res
	}

	res.State = StateSuccess
	res.Content = content
	s.metrics.ObserveGeneration(sub.Platform, sub.Model, "success", res.Duration)
	s.logger.Info("generation succeeded",
		slog.String("platform", sub.Platform),
		slog.String("model", sub.Model),
		slog.Duration("duration", res.Duration),
		slog.Int("content_len", len([]rune(content))),
	)
	return res
}

// RejectReason возвращает метку отказа валидации для метрик и ответов API.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrMissingTopic):
		return "missing_topic"
	default:
		return "invalid_input"
	}
}

// Outcome возвращает метку результата вызова.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if derr, ok := llm.AsError(err); ok {
		return string(derr.Kind)
	}
	return "internal_error"
}
