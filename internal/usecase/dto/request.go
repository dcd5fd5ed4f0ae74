package dto

import "github.com/photo-watermark/internal/domain"

// MetadataRequest - запрос на чтение метаданных снимка
type MetadataRequest struct {
	FilePath string `query:"path" validate:"required"`
}

// ReverseGeocodeRequest - запрос на обратное геокодирование
type ReverseGeocodeRequest struct {
	Lat              float64  `json:"lat" validate:"min=-90,max=90"`
	Lng              float64  `json:"lng" validate:"min=-180,max=180"`
	Provider         string   `json:"provider,omitempty" validate:"omitempty,oneof=auto amap tencent tianditu qweather mapbox maptiler google"`
	Level            string   `json:"level,omitempty" validate:"omitempty,oneof=city district street"`
	HideProvince     bool     `json:"hide_province,omitempty"`
	HomeCountries    []string `json:"home_countries,omitempty" validate:"omitempty,dive,len=2"`
	DomesticProvider string   `json:"domestic_provider,omitempty"`
	ForeignProvider  string   `json:"foreign_provider,omitempty"`
}

// TestAPIKeyRequest - проверка ключа сервиса геокодирования
type TestAPIKeyRequest struct {
	Provider string `json:"provider" validate:"required,oneof=amap tencent tianditu qweather mapbox maptiler google"`
	APIKey   string `json:"api_key,omitempty" validate:"omitempty,max=256"`
}

// LinesRequest - строки водяного знака без отрисовки
type LinesRequest struct {
	FilePath string             `json:"file_path" validate:"required"`
	Options  domain.LineOptions `json:"options"`
}

// PreviewRequest - запрос на предпросмотр водяного знака
type PreviewRequest struct {
	FilePath string                  `json:"file_path" validate:"required"`
	Options  domain.WatermarkOptions `json:"options"`
}

// ProcessRequest - пакетная обработка снимков
type ProcessRequest struct {
	FilePaths    []string                `json:"file_paths" validate:"required,min=1,max=500"`
	OutputDir    string                  `json:"output_dir" validate:"required"`
	Options      domain.WatermarkOptions `json:"options"`
	SkipExisting bool                    `json:"skip_existing,omitempty"`
	// Async ставит задание в очередь воркера вместо синхронной обработки
	Async bool `json:"async,omitempty"`
}

// CheckExistingRequest - какие выходные файлы уже существуют
type CheckExistingRequest struct {
	FilePaths    []string            `json:"file_paths" validate:"required,min=1"`
	OutputDir    string              `json:"output_dir" validate:"required"`
	OutputFormat domain.OutputFormat `json:"output_format,omitempty" validate:"omitempty,oneof=jpeg png webp"`
}
