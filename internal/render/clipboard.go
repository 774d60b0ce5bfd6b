package render

import (
	"fmt"
	"strings"
)

// scriptEscaper экранирует текст для вставки в JS template literal (`...`).
// Один проход, поэтому уже вставленные обратные слэши повторно не экранируются.
var scriptEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"\n", `\n`,
	"\r", `\r`,
	`"`, `\"`,
	`'`, `\'`,
	`$`, `\$`,
)

// EscapeScriptString экранирует обратный слэш, обратную кавычку, перевод строки,
// возврат каретки, двойную и одинарную кавычки и знак доллара.
func EscapeScriptString(s string) string {
	return scriptEscaper.Replace(s)
}

// UnescapeScriptString повторяет то, как браузер декодирует escape-последовательности
// внутри template literal, для подмножества, которое выдает ClipboardScript.
func UnescapeScriptString(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling backslash at %d", i)
		}
		i++
		switch s[i] {
		case '\\', '`', '"', '\'', '$', '/':
			b.WriteByte(s[i])
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("unsupported escape \\%c at %d", s[i], i-1)
		}
	}
	return b.String(), nil
}

// ClipboardScript возвращает тело JS-функции, копирующей text в буфер обмена.
// Если Clipboard API недоступен, используется textarea + execCommand('copy').
func ClipboardScript(text string) string {
	literal := EscapeScriptString(text)
	// "</script>" внутри литерала закрыл бы тег раньше времени.
	literal = strings.ReplaceAll(literal, "</", `<\/`)
	return fmt.Sprintf(clipboardTemplate, literal)
}

const clipboardTemplate = `(async function() {
  const text = ` + "`%s`" + `;
  try {
    await navigator.clipboard.writeText(text);
    alert('✅ 内容已成功复制到剪贴板！');
  } catch (err) {
    const textarea = document.createElement('textarea');
    textarea.value = text;
    document.body.appendChild(textarea);
    textarea.select();
    document.execCommand('copy');
    document.body.removeChild(textarea);
    alert('✅ 兼容模式：内容已复制到剪贴板！');
  }
})();`
