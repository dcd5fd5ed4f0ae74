package dto

import (
	"github.com/google/uuid"
	"github.com/photo-watermark/internal/domain"
)

// LinesResult - строки водяного знака и метаданные, из которых они построены
type LinesResult struct {
	Lines    []string              `json:"lines"`
	Metadata *domain.PhotoMetadata `json:"metadata"`
}

// FontsResponse - список шрифтов системы
type FontsResponse struct {
	Fonts []domain.FontEntry `json:"fonts"`
	Total int                `json:"total"`
}

// ReverseGeocodeResponse - ответ на обратное геокодирование
type ReverseGeocodeResponse struct {
	Address  string            `json:"address"`
	Provider domain.ProviderID `json:"provider,omitempty"`
	Cached   bool              `json:"cached,omitempty"`
}

// TestAPIKeyResponse - результат проверки ключа
type TestAPIKeyResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PreviewResponse - предпросмотр в виде data URL
type PreviewResponse struct {
	DataURL string   `json:"data_url"`
	Lines   []string `json:"lines"`
}

// ProcessResponse - результаты пакетной обработки
type ProcessResponse struct {
	Results []domain.ProcessResult `json:"results,omitempty"`
	JobID   *uuid.UUID             `json:"job_id,omitempty"`
	Meta    ProcessMeta            `json:"meta"`
}

// ProcessMeta - сводка по пакету
type ProcessMeta struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// NewProcessMeta counts outcomes; skipped files are also counted as successful.
func NewProcessMeta(results []domain.ProcessResult) ProcessMeta {
	meta := ProcessMeta{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped:
			meta.Skipped++
			meta.Success++
		case r.Success:
			meta.Success++
		default:
			meta.Failed++
		}
	}
	return meta
}

// CheckExistingResponse - имена уже существующих выходных файлов
type CheckExistingResponse struct {
	Existing []string `json:"existing"`
}

// ProgressEvent - прогресс пакетной обработки
type ProgressEvent struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	File      string `json:"file"`
}
