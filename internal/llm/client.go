package llm

import (
	"context"

	"copywriter/internal/prompt"
)

// Dispatcher отправляет один запрос в completion endpoint и возвращает текст ответа.
// Ошибки всегда имеют тип *Error (см. errors.go), кроме ErrInvalidModel.
type Dispatcher interface {
	Dispatch(ctx context.Context, req Request) (string, error)
}

// Request — всё, что нужно для одного вызова. Живёт ровно один запрос.
type Request struct {
	APIKey      string
	Bundle      prompt.Bundle
	Model       string
	Temperature float64
	MaxTokens   int
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func messagesFor(bundle prompt.Bundle) []message {
	return []message{
		{Role: "system", Content: bundle.System},
		{Role: "user", Content: bundle.User},
	}
}
