package prompt

import "fmt"

// Style — пресет тона, который подставляется в системный промпт.
type Style string

const (
	StyleFunny     Style = "轻松搞笑"
	StyleTutorial  Style = "干货教学"
	StyleEmotional Style = "情绪共鸣"
	StyleCritique  Style = "吐槽点评"
	StyleImmersive Style = "沉浸式体验"
)

const DefaultStyle = StyleFunny

var styles = []Style{StyleFunny, StyleTutorial, StyleEmotional, StyleCritique, StyleImmersive}

// Styles возвращает пресеты в порядке отображения в форме.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// ParseStyle проверяет значение из формы. Пустая строка даёт DefaultStyle.
func ParseStyle(value string) (Style, error) {
	if value == "" {
		return DefaultStyle, nil
	}
	for _, s := range styles {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown style: %s", value)
}

func (s Style) String() string {
	return string(s)
}
