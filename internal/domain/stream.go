package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamWatermarkJobs = "stream:watermark:jobs"
	StreamWatermarkDone = "stream:watermark:done"
)

// WatermarkJobEvent - входящее задание на пакетную обработку
type WatermarkJobEvent struct {
	JobID        uuid.UUID        `json:"job_id"`
	FilePaths    []string         `json:"file_paths"`
	OutputDir    string           `json:"output_dir"`
	Options      WatermarkOptions `json:"options"`
	SkipExisting bool             `json:"skip_existing,omitempty"`
	Attempt      int              `json:"attempt,omitempty"`
}

// WatermarkDoneEvent - результат пакетной обработки
type WatermarkDoneEvent struct {
	JobID   uuid.UUID       `json:"job_id"`
	Results []ProcessResult `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
