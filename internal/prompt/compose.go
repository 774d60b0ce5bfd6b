package prompt

// Bundle — пара сообщений, которая уходит в completion endpoint.
type Bundle struct {
	System string
	User   string
}

// Compose собирает промпт для платформы по умолчанию.
// Пустые значения допустимы: их отсекает валидация до вызова.
func Compose(topic string, style Style) Bundle {
	b, _ := ComposeFor(DefaultPlatform(), topic, style)
	return b
}

// ComposeFor собирает промпт для указанной платформы.
func ComposeFor(platform string, topic string, style Style) (Bundle, error) {
	p, err := Template(platform)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		System: fill(p.System, style, topic),
		User:   fill(p.User, style, topic),
	}, nil
}
