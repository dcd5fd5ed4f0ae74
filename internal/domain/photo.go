package domain

// GPS - координаты снимка в десятичных градусах
type GPS struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PhotoMetadata holds what the extractor could read from a photo.
// Zero values mean the field was absent in the source.
type PhotoMetadata struct {
	CaptureTime string `json:"capture_time,omitempty"`
	GPS         *GPS   `json:"gps,omitempty"`
	CameraMake  string `json:"camera_make,omitempty"`
	CameraModel string `json:"camera_model,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

func (m *PhotoMetadata) HasCaptureTime() bool {
	return m != nil && m.CaptureTime != ""
}

func (m *PhotoMetadata) HasGPS() bool {
	return m != nil && m.GPS != nil
}

func (m *PhotoMetadata) HasDimensions() bool {
	return m != nil && m.Width > 0 && m.Height > 0
}

// ProcessResult - результат обработки одного файла в пакете
type ProcessResult struct {
	File       string `json:"file"`
	Success    bool   `json:"success"`
	OutputPath string `json:"output_path,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
}
