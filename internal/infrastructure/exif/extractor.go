package exif

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"regexp"
	"strings"

	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var exifDatePrefix = regexp.MustCompile(`^(\d{4}):(\d{2}):(\d{2})`)

// Extractor reads capture metadata from image files.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns whatever metadata the file carries. Missing tags are not an error;
// the call fails only when the file cannot be read or is not an image container.
func (e *Extractor) Extract(path string) (*domain.PhotoMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrInvalidFilePath.Wrap(err)
	}
	return e.ExtractBytes(data)
}

// ExtractBytes is Extract for an in-memory file.
func (e *Extractor) ExtractBytes(data []byte) (*domain.PhotoMetadata, error) {
	meta := &domain.PhotoMetadata{}

	// Размеры из заголовка кодека надёжнее, чем теги EXIF
	cfg, _, cfgErr := image.DecodeConfig(bytes.NewReader(data))
	if cfgErr == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	x, exifErr := goexif.Decode(bytes.NewReader(data))
	if exifErr != nil && (x == nil || goexif.IsCriticalError(exifErr)) {
		if cfgErr != nil {
			return nil, apperrors.ErrUnsupportedFormat.Wrap(fmt.Errorf("decode header: %v; exif: %w", cfgErr, exifErr))
		}
		e.logger.Debug("No EXIF data", zap.Error(exifErr))
		return meta, nil
	}
	if exifErr != nil {
		e.logger.Debug("Partial EXIF data", zap.Error(exifErr))
	}

	meta.CaptureTime = captureTime(x)
	meta.CameraMake = stringTag(x, goexif.Make)
	meta.CameraModel = stringTag(x, goexif.Model)

	if lat, lng, err := x.LatLong(); err == nil {
		meta.GPS = &domain.GPS{Lat: lat, Lng: lng}
	}

	if meta.Width == 0 {
		meta.Width = intTag(x, goexif.PixelXDimension)
		meta.Height = intTag(x, goexif.PixelYDimension)
	}

	return meta, nil
}

func captureTime(x *goexif.Exif) string {
	raw := stringTag(x, goexif.DateTimeOriginal)
	if raw == "" {
		raw = stringTag(x, goexif.DateTime)
	}
	if raw == "" {
		return ""
	}
	// "2024:01:15 14:30:00" -> "2024-01-15 14:30:00"
	return exifDatePrefix.ReplaceAllString(raw, "$1-$2-$3")
}

func stringTag(x *goexif.Exif, name goexif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.StringVal {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func intTag(x *goexif.Exif, name goexif.FieldName) int {
	tag, err := x.Get(name)
	if err != nil || tag.Format() != tiff.IntVal {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}
