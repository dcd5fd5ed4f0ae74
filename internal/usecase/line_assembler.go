package usecase

import (
	"context"
	"fmt"

	"github.com/photo-watermark/internal/domain"
	"github.com/photo-watermark/internal/usecase/dto"
	"go.uber.org/zap"
)

// MetadataReader reads what a photo carries about itself.
type MetadataReader interface {
	Extract(path string) (*domain.PhotoMetadata, error)
}

// AddressResolver turns coordinates into a display address.
type AddressResolver interface {
	ReverseGeocode(ctx context.Context, req domain.GeocodeRequest) (string, error)
}

// LineAssembler собирает строки водяного знака: время, место, возраст, свой текст
type LineAssembler struct {
	metadata MetadataReader
	resolver AddressResolver
	logger   *zap.Logger
}

func NewLineAssembler(metadata MetadataReader, resolver AddressResolver, logger *zap.Logger) *LineAssembler {
	return &LineAssembler{
		metadata: metadata,
		resolver: resolver,
		logger:   logger,
	}
}

// BuildLines reads the photo metadata and returns the display lines in fixed order.
// Only an unreadable file is an error; missing metadata just drops lines.
func (a *LineAssembler) BuildLines(ctx context.Context, path string, opts domain.LineOptions) (*dto.LinesResult, error) {
	meta, err := a.metadata.Extract(path)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, 4)

	if opts.ShowDateTime && meta.HasCaptureTime() {
		format := opts.DateTimeFormat
		if format == "" {
			format = domain.DefaultDateTimeFormat
		}
		lines = append(lines, FormatDateTime(meta.CaptureTime, format))
	}

	if opts.ShowLocation {
		if loc := a.locationLine(ctx, meta, opts); loc != "" {
			lines = append(lines, loc)
		}
	}

	if opts.ShowChildAge && opts.ChildBirthday != "" && meta.HasCaptureTime() {
		lang := opts.Lang
		if lang == "" {
			lang = domain.DefaultLang
		}
		format := opts.ChildAgeFormat
		if format == "" {
			format = domain.AgeYearsMonths
		}
		if age := CalcChildAge(opts.ChildBirthday, meta.CaptureTime, format, lang); age != "" {
			lines = append(lines, joinPrefix(opts.ChildAgePrefix, age))
		}
	}

	if opts.CustomText != "" {
		lines = append(lines, opts.CustomText)
	}

	return &dto.LinesResult{Lines: lines, Metadata: meta}, nil
}

func (a *LineAssembler) locationLine(ctx context.Context, meta *domain.PhotoMetadata, opts domain.LineOptions) string {
	var text string

	switch {
	case meta.HasGPS():
		coords := fmt.Sprintf("%.6f, %.6f", meta.GPS.Lat, meta.GPS.Lng)
		switch opts.LocationMode {
		case domain.LocationCoords:
			text = coords
		case domain.LocationCustom:
			text = opts.CustomLocation
			if text == "" {
				text = coords
			}
		default:
			text = a.geocode(ctx, meta.GPS, opts)
		}
	case opts.LocationMode == domain.LocationCustom && opts.CustomLocation != "":
		text = opts.CustomLocation
	}

	if text == "" {
		return ""
	}

	prefix := domain.DefaultLocationPrefix
	if opts.LocationPrefix != nil {
		prefix = *opts.LocationPrefix
	}
	return joinPrefix(prefix, text)
}

func (a *LineAssembler) geocode(ctx context.Context, gps *domain.GPS, opts domain.LineOptions) string {
	if a.resolver == nil {
		return ""
	}
	address, err := a.resolver.ReverseGeocode(ctx, opts.GeocodeRequest(gps.Lat, gps.Lng))
	if err != nil {
		a.logger.Warn("Reverse geocoding failed, location line dropped",
			zap.Float64("lat", gps.Lat),
			zap.Float64("lng", gps.Lng),
			zap.Error(err))
		return ""
	}
	return address
}

func joinPrefix(prefix, text string) string {
	if prefix == "" {
		return text
	}
	return prefix + " " + text
}
