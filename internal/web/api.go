package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"copywriter/internal/generation"
	"copywriter/internal/httpserver"
	"copywriter/internal/llm"
	"copywriter/internal/prompt"
)

type generateRequest struct {
	APIKey   string `json:"api_key"`
	Topic    string `json:"topic"`
	Style    string `json:"style"`
	Platform string `json:"platform"`
	Model    string `json:"model"`
}

type generateResponse struct {
	State      generation.State `json:"state"`
	Platform   string           `json:"platform"`
	Style      string           `json:"style"`
	Model      string           `json:"model"`
	Content    string           `json:"content"`
	HTML       string           `json:"html"`
	DurationMS int64            `json:"duration_ms"`
}

type optionsResponse struct {
	Styles       []string         `json:"styles"`
	DefaultStyle string           `json:"default_style"`
	Platforms    []platformOption `json:"platforms"`
	Models       []llm.ModelInfo  `json:"models"`
	DefaultModel string           `json:"default_model"`
}

type platformOption struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Generate — JSON-вариант формы. Ключ можно передать в теле или в Authorization: Bearer.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteJSONError(w, http.StatusBadRequest, "bad_request", "cannot parse request body")
		return
	}
	if req.APIKey == "" {
		req.APIKey = bearerToken(r)
	}

	res := h.generator.Generate(r.Context(), generation.Input{
		APIKey:   req.APIKey,
		Topic:    req.Topic,
		Style:    req.Style,
		Platform: req.Platform,
		Model:    req.Model,
	})

	view := h.renderer.Render(res)
	if !res.Succeeded() {
		httpserver.WriteJSONError(w, statusFor(res.Err), view.Code, view.Text)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(generateResponse{
		State:      res.State,
		Platform:   res.Platform,
		Style:      res.Style.String(),
		Model:      res.Model,
		Content:    view.Text,
		HTML:       string(view.HTML),
		DurationMS: res.Duration.Milliseconds(),
	})
}

// Options возвращает доступные стили, платформы и модели.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	resp := optionsResponse{
		DefaultStyle: prompt.DefaultStyle.String(),
		Models:       llm.AvailableModels,
		DefaultModel: h.defaultModel,
	}
	for _, s := range prompt.Styles() {
		resp.Styles = append(resp.Styles, s.String())
	}
	for _, name := range prompt.Platforms() {
		p, err := prompt.Template(name)
		if err != nil {
			continue
		}
		resp.Platforms = append(resp.Platforms, platformOption{Name: p.Name, Title: p.Title})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func statusFor(err error) int {
	var verr *generation.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	derr, ok := llm.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if derr.Kind == llm.KindTimeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
