package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"copywriter/internal/generation"
	"copywriter/internal/llm"
)

const (
	SuccessHeading = "✅ 生成结果："
	ErrorPrefix    = "❌ "
)

// View — то, что показывается пользователю после одного цикла генерации.
type View struct {
	OK      bool
	Heading string
	// Text — сгенерированный текст или сообщение об ошибке.
	Text       string
	HTML       template.HTML
	CopyScript template.JS
	// Code — машинная метка ошибки для JSON API.
	Code string
}

type Renderer struct {
	markdown goldmark.Markdown
	timeout  time.Duration
}

// NewRenderer создает рендерер. timeout подставляется в сообщение о таймауте.
// Сырой HTML из ответа модели goldmark не пропускает.
func NewRenderer(timeout time.Duration) *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		timeout: timeout,
	}
}

func (r *Renderer) Render(res generation.Result) View {
	if res.Succeeded() {
		return View{
			OK:         true,
			Heading:    SuccessHeading,
			Text:       res.Content,
			HTML:       r.markdownHTML(res.Content),
			CopyScript: template.JS(ClipboardScript(res.Content)),
		}
	}
	return View{
		OK:   false,
		Text: r.Message(res.Err),
		Code: Code(res.Err),
	}
}

// Message формирует текст ошибки для пользователя по виду ошибки.
func (r *Renderer) Message(err error) string {
	if err == nil {
		return ErrorPrefix + "生成失败：未知错误"
	}
	switch {
	case errors.Is(err, generation.ErrMissingCredential):
		return "请先在侧边栏输入API密钥！"
	case errors.Is(err, generation.ErrMissingTopic):
		return "请输入创作主题！"
	}

	var verr *generation.ValidationError
	if errors.As(err, &verr) {
		return ErrorPrefix + "参数错误：" + verr.Detail
	}

	derr, ok := llm.AsError(err)
	if !ok {
		return ErrorPrefix + "生成失败：" + err.Error()
	}
	switch derr.Kind {
	case llm.KindHTTP:
		return fmt.Sprintf("%sAPI调用失败：%d - %s", ErrorPrefix, derr.Status, derr.Detail())
	case llm.KindTimeout:
		return fmt.Sprintf("%s生成失败：请求超时（%s）", ErrorPrefix, r.timeout)
	case llm.KindMalformedResponse:
		return fmt.Sprintf("%s生成失败：接口返回格式异常（%s）", ErrorPrefix, derr.Message)
	default:
		return fmt.Sprintf("%s生成失败：%s", ErrorPrefix, derr.Message)
	}
}

// Code возвращает машинную метку ошибки: причину отказа валидации или вид ошибки вызова.
func Code(err error) string {
	var verr *generation.ValidationError
	if errors.As(err, &verr) {
		return generation.RejectReason(err)
	}
	return generation.Outcome(err)
}

func (r *Renderer) markdownHTML(content string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}
