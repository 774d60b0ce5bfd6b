package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"copywriter/internal/config"
	"copywriter/internal/generation"
	"copywriter/internal/generation/mocks"
	"copywriter/internal/llm"
	"copywriter/internal/render"
)

func newTestHandler(t *testing.T) (*Handler, *mocks.Dispatcher) {
	t.Helper()
	dispatcher := mocks.NewDispatcher(t)
	svc := generation.NewService(generation.Deps{
		Dispatcher: dispatcher,
		LLM: config.LLMConfig{
			DefaultModel: "moonshot-v1-8k",
			Temperature:  0.9,
			MaxTokens:    1000,
			Timeout:      30 * time.Second,
		},
	})
	h := NewHandler(Deps{
		Generator:    svc,
		Renderer:     render.NewRenderer(30 * time.Second),
		DefaultModel: "moonshot-v1-8k",
	})
	return h, dispatcher
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestFormRendersIdlePage(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.Form(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, `id="submit" disabled`)
	assert.Contains(t, body, "轻松搞笑")
	assert.Contains(t, body, "沉浸式体验")
	assert.Contains(t, body, "moonshot-v1-128k")
	assert.NotContains(t, body, render.SuccessHeading)
}

func TestSubmitMissingKeyShowsInlineError(t *testing.T) {
	h, dispatcher := newTestHandler(t)

	rr := postForm(h.Submit, url.Values{"topic": {"原神"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "请先在侧边栏输入API密钥！")
	assert.Contains(t, rr.Body.String(), `value="原神"`)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSubmitMissingTopicShowsInlineError(t *testing.T) {
	h, dispatcher := newTestHandler(t)

	rr := postForm(h.Submit, url.Values{"api_key": {"sk-secret"}, "topic": {"  "}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "请输入创作主题！")
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSubmitSuccessRendersContentAndCopyButton(t *testing.T) {
	h, dispatcher := newTestHandler(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return("**标题**\n正文 `code` $1", nil).Once()

	rr := postForm(h.Submit, url.Values{
		"api_key": {"sk-secret"},
		"topic":   {"新手学Python避坑指南"},
		"style":   {"干货教学"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, render.SuccessHeading)
	assert.Contains(t, body, "<strong>标题</strong>")
	assert.Contains(t, body, "📋 复制全部内容")
	assert.Contains(t, body, "function copyResult()")
	assert.Contains(t, body, "\\`code\\` \\$1")
	assert.NotContains(t, body, "sk-secret")
}

func TestSubmitUpstreamErrorRendersMessage(t *testing.T) {
	h, dispatcher := newTestHandler(t)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).
		Return("", &llm.Error{Kind: llm.KindHTTP, Status: 401, Body: "Invalid Authentication"}).Once()

	rr := postForm(h.Submit, url.Values{"api_key": {"bad"}, "topic": {"t"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "❌ API调用失败：401 - Invalid Authentication")
	assert.NotContains(t, rr.Body.String(), "copyResult")
}

func TestAPIGenerateSuccess(t *testing.T) {
	h, dispatcher := newTestHandler(t)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.APIKey == "sk-header" && req.Model == "moonshot-v1-32k"
	})).Return("X", nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate",
		strings.NewReader(`{"topic":"2025年度游戏盘点","model":"moonshot-v1-32k"}`))
	req.Header.Set("Authorization", "Bearer sk-header")
	rr := httptest.NewRecorder()
	h.Generate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp generateResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, generation.StateSuccess, resp.State)
	assert.Equal(t, "X", resp.Content)
	assert.Equal(t, "<p>X</p>\n", resp.HTML)
	assert.Equal(t, "bilibili", resp.Platform)
	assert.Equal(t, "轻松搞笑", resp.Style)
}

func TestAPIGenerateErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "missing key", body: `{"topic":"t"}`, status: http.StatusBadRequest, code: "missing_credential"},
		{name: "missing topic", body: `{"api_key":"k"}`, status: http.StatusBadRequest, code: "missing_topic"},
		{name: "bad style", body: `{"api_key":"k","topic":"t","style":"x"}`, status: http.StatusBadRequest, code: "invalid_input"},
		{name: "bad json", body: `{`, status: http.StatusBadRequest, code: "bad_request"},
		{
			name:   "upstream",
			body:   `{"api_key":"k","topic":"t"}`,
			err:    &llm.Error{Kind: llm.KindHTTP, Status: 500, Body: "boom"},
			status: http.StatusBadGateway,
			code:   "http_error",
		},
		{
			name:   "timeout",
			body:   `{"api_key":"k","topic":"t"}`,
			err:    &llm.Error{Kind: llm.KindTimeout, Message: "request timed out after 30s"},
			status: http.StatusGatewayTimeout,
			code:   "timeout",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, dispatcher := newTestHandler(t)
			if tc.err != nil {
				dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return("", tc.err).Once()
			}

			rr := httptest.NewRecorder()
			h.Generate(rr, httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(tc.body)))

			assert.Equal(t, tc.status, rr.Code)
			var env struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
			assert.Equal(t, tc.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestAPIOptions(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.Options(rr, httptest.NewRequest(http.MethodGet, "/api/v1/options", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp optionsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Styles, 5)
	assert.Equal(t, "轻松搞笑", resp.DefaultStyle)
	assert.Equal(t, "moonshot-v1-8k", resp.DefaultModel)
	require.Len(t, resp.Platforms, 2)
	assert.Equal(t, "bilibili", resp.Platforms[0].Name)
	assert.Len(t, resp.Models, 3)
}
