package llm

// AvailableModels содержит варианты моделей Moonshot (Kimi), доступные в форме.
var AvailableModels = []ModelInfo{
	{
		ID:          "moonshot-v1-8k",
		Name:        "Moonshot 8K",
		Description: "Короткий контекст, самый быстрый вариант",
	},
	{
		ID:          "moonshot-v1-32k",
		Name:        "Moonshot 32K",
		Description: "Средний контекст",
	},
	{
		ID:          "moonshot-v1-128k",
		Name:        "Moonshot 128K",
		Description: "Длинный контекст",
	},
}

// ModelInfo описывает информацию о модели.
type ModelInfo struct {
	ID          string // Идентификатор модели для API
	Name        string // Короткое название для отображения
	Description string
}

// GetModelByID возвращает информацию о модели по её ID или nil.
func GetModelByID(modelID string) *ModelInfo {
	for _, m := range AvailableModels {
		if m.ID == modelID {
			return &m
		}
	}
	return nil
}

func IsValidModel(modelID string) bool {
	return GetModelByID(modelID) != nil
}

// GetModelName возвращает короткое название модели по её ID.
// Если модель не найдена, возвращает сам ID.
func GetModelName(modelID string) string {
	if info := GetModelByID(modelID); info != nil {
		return info.Name
	}
	return modelID
}
