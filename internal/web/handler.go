package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"copywriter/internal/generation"
	"copywriter/internal/llm"
	"copywriter/internal/prompt"
	"copywriter/internal/render"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// maxFormBytes ограничивает размер тела формы и JSON-запроса.
const maxFormBytes = 64 << 10

// Generator — один цикл генерации. Реализуется generation.Service.
type Generator interface {
	Generate(ctx context.Context, in generation.Input) generation.Result
}

type Deps struct {
	Generator    Generator
	Renderer     *render.Renderer
	Logger       *slog.Logger
	DefaultModel string
}

type Handler struct {
	generator    Generator
	renderer     *render.Renderer
	logger       *slog.Logger
	defaultModel string
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		generator:    deps.Generator,
		renderer:     deps.Renderer,
		logger:       logger,
		defaultModel: deps.DefaultModel,
	}
}

// page — данные шаблона формы. API-ключ сюда не попадает: он живет только в браузере.
type page struct {
	Models    []llm.ModelInfo
	Platforms []prompt.Platform
	Styles    []prompt.Style
	Model     string
	Platform  string
	Style     string
	Topic     string
	Errors    map[string]string
	View      *render.View
}

func (h *Handler) newPage() page {
	platforms := make([]prompt.Platform, 0)
	for _, name := range prompt.Platforms() {
		p, err := prompt.Template(name)
		if err != nil {
			continue
		}
		platforms = append(platforms, p)
	}
	return page{
		Models:    llm.AvailableModels,
		Platforms: platforms,
		Styles:    prompt.Styles(),
		Model:     h.defaultModel,
		Platform:  prompt.DefaultPlatform(),
		Style:     prompt.DefaultStyle.String(),
		Errors:    map[string]string{},
	}
}

// Form отдает пустую форму (состояние Idle).
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, http.StatusOK, h.newPage())
}

// Submit обрабатывает отправку формы: проверка, генерация и отрисовка результата.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		p := h.newPage()
		p.Errors["form"] = render.ErrorPrefix + "参数错误：无法解析表单"
		h.writePage(w, http.StatusBadRequest, p)
		return
	}

	in := generation.Input{
		APIKey:   r.PostFormValue("api_key"),
		Topic:    r.PostFormValue("topic"),
		Style:    r.PostFormValue("style"),
		Platform: r.PostFormValue("platform"),
		Model:    r.PostFormValue("model"),
	}

	p := h.newPage()
	p.Topic = in.Topic
	if in.Platform != "" {
		p.Platform = in.Platform
	}
	if in.Style != "" {
		p.Style = in.Style
	}
	if in.Model != "" {
		p.Model = in.Model
	}

	res := h.generator.Generate(r.Context(), in)

	var verr *generation.ValidationError
	if errors.As(res.Err, &verr) {
		field := verr.Field
		if field != "api_key" && field != "topic" {
			field = "form"
		}
		p.Errors[field] = h.renderer.Message(res.Err)
		h.writePage(w, http.StatusBadRequest, p)
		return
	}

	view := h.renderer.Render(res)
	p.View = &view
	h.writePage(w, http.StatusOK, p)
}

func (h *Handler) writePage(w http.ResponseWriter, status int, p page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		h.logger.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
