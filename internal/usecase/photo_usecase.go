package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	"github.com/photo-watermark/internal/usecase/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	previewMaxSide = 800
	previewQuality = 85
)

// SupportedExtensions - расширения, которые принимаются на вход
var SupportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".tiff": true,
	".webp": true,
}

// LineBuilder produces the watermark lines of a photo.
type LineBuilder interface {
	BuildLines(ctx context.Context, path string, opts domain.LineOptions) (*dto.LinesResult, error)
}

// OverlayRenderer turns lines into composite layers for an image of the given size.
type OverlayRenderer interface {
	Render(ctx context.Context, lines []string, width, height int, cfg domain.WatermarkConfig) ([]domain.CompositeInstruction, error)
}

// ProgressFunc is called once per finished file of a batch.
type ProgressFunc func(dto.ProgressEvent)

type PhotoUseCase struct {
	metadata    MetadataReader
	lines       LineBuilder
	overlay     OverlayRenderer
	concurrency int
	logger      *zap.Logger
}

func NewPhotoUseCase(
	metadata MetadataReader,
	lines LineBuilder,
	overlay OverlayRenderer,
	concurrency int,
	logger *zap.Logger,
) *PhotoUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PhotoUseCase{
		metadata:    metadata,
		lines:       lines,
		overlay:     overlay,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ValidateImagePath accepts only files with a supported extension.
func ValidateImagePath(path string) error {
	if path == "" {
		return apperrors.ErrInvalidFilePath
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !SupportedExtensions[ext] {
		return apperrors.ErrInvalidFilePath.WithDetails(map[string]interface{}{
			"file":      filepath.Base(path),
			"extension": ext,
		})
	}
	return nil
}

// ValidateOutputDir requires an existing directory.
func ValidateOutputDir(dir string) error {
	if dir == "" || !isDir(dir) {
		return apperrors.ErrInvalidOutputDir.WithDetails(map[string]interface{}{
			"output_dir": dir,
		})
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// OutputPath returns {outDir}/{basename}_wm{ext}.
func OutputPath(input, outDir string, format domain.OutputFormat) string {
	name := filepath.Base(input)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(outDir, base+"_wm"+format.Extension())
}

// Metadata - метаданные одного снимка
func (uc *PhotoUseCase) Metadata(path string) (*domain.PhotoMetadata, error) {
	if err := ValidateImagePath(path); err != nil {
		return nil, err
	}
	return uc.metadata.Extract(path)
}

// Process watermarks one photo and writes it to outDir. Returns the output path.
func (uc *PhotoUseCase) Process(ctx context.Context, path, outDir string, opts domain.WatermarkOptions) (string, error) {
	if err := ValidateImagePath(path); err != nil {
		return "", err
	}
	if err := ValidateOutputDir(outDir); err != nil {
		return "", err
	}

	cfg := opts.WatermarkConfig.WithDefaults()
	out, _, err := uc.compose(ctx, path, opts.LineOptions, cfg, 1)
	if err != nil {
		return "", err
	}

	outPath := OutputPath(path, outDir, cfg.OutputFormat)
	if err := writeImage(outPath, out, cfg.OutputFormat, cfg.Quality); err != nil {
		uc.logger.Error("Failed to write output image",
			zap.String("output", outPath),
			zap.Error(err))
		return "", err
	}

	uc.logger.Info("Photo processed",
		zap.String("file", filepath.Base(path)),
		zap.String("output", outPath))
	return outPath, nil
}

// Preview renders the watermark on a copy scaled to fit 800px and returns it
// as a JPEG data URL.
func (uc *PhotoUseCase) Preview(ctx context.Context, path string, opts domain.WatermarkOptions) (*dto.PreviewResponse, error) {
	if err := ValidateImagePath(path); err != nil {
		return nil, err
	}

	out, lines, err := uc.compose(ctx, path, opts.LineOptions, opts.WatermarkConfig, previewMaxSide)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(previewQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &dto.PreviewResponse{
		DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Lines:   lines,
	}, nil
}

// compose builds lines, decodes the photo and applies the overlay. A maxSide
// above 1 scales the image down to fit, together with explicit size options.
func (uc *PhotoUseCase) compose(
	ctx context.Context,
	path string,
	lineOpts domain.LineOptions,
	cfg domain.WatermarkConfig,
	maxSide int,
) (*image.NRGBA, []string, error) {
	res, err := uc.lines.BuildLines(ctx, path, lineOpts)
	if err != nil {
		return nil, nil, err
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, apperrors.ErrInvalidFilePath.Wrap(err)
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	if maxSide > 1 {
		scale := math.Min(math.Min(float64(maxSide)/float64(width), float64(maxSide)/float64(height)), 1)
		if scale < 1 {
			width = max(utils.RoundHalfUp(float64(width)*scale), 1)
			height = max(utils.RoundHalfUp(float64(height)*scale), 1)
			img = imaging.Resize(img, width, height, imaging.Lanczos)
		}
		cfg = scaleConfig(cfg, scale)
	}

	composites, err := uc.overlay.Render(ctx, res.Lines, width, height, cfg)
	if err != nil {
		uc.logger.Error("Failed to render watermark",
			zap.String("file", filepath.Base(path)),
			zap.Error(err))
		return nil, nil, err
	}

	return ApplyComposites(img, composites), res.Lines, nil
}

// scaleConfig shrinks explicit font size and stroke width for a preview.
// A zero stroke stays zero.
func scaleConfig(cfg domain.WatermarkConfig, scale float64) domain.WatermarkConfig {
	if cfg.FontSize > 0 {
		cfg.FontSize = utils.RoundHalfUp(float64(cfg.FontSize) * scale)
	}
	if cfg.StrokeWidth != nil && *cfg.StrokeWidth != 0 {
		sw := max(utils.RoundHalfUp(float64(*cfg.StrokeWidth)*scale), 1)
		cfg.StrokeWidth = &sw
	}
	return cfg
}

// CheckExisting returns the file names of outputs that already exist.
// An invalid directory yields an empty list.
func (uc *PhotoUseCase) CheckExisting(paths []string, outDir string, format domain.OutputFormat) []string {
	existing := make([]string, 0)
	if !isDir(outDir) {
		return existing
	}
	if format == "" {
		format = domain.FormatJPEG
	}
	for _, p := range paths {
		out := OutputPath(p, outDir, format)
		if _, err := os.Stat(out); err == nil {
			existing = append(existing, filepath.Base(out))
		}
	}
	return existing
}

// ProcessBatch processes every path, at most concurrency at a time. Inputs are
// validated up front; per-file failures are reported in the results. Once ctx
// is done no new file is started, files already running finish.
func (uc *PhotoUseCase) ProcessBatch(
	ctx context.Context,
	paths []string,
	outDir string,
	opts domain.WatermarkOptions,
	skipExisting bool,
	progress ProgressFunc,
) ([]domain.ProcessResult, error) {
	if err := ValidateOutputDir(outDir); err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := ValidateImagePath(p); err != nil {
			return nil, err
		}
	}

	format := opts.WatermarkConfig.WithDefaults().OutputFormat
	results := make([]domain.ProcessResult, len(paths))
	total := len(paths)

	var (
		mu        sync.Mutex
		processed int
	)
	report := func(file string) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		processed++
		progress(dto.ProgressEvent{Processed: processed, Total: total, File: filepath.Base(file)})
	}

	g := new(errgroup.Group)
	g.SetLimit(uc.concurrency)

	for i, fp := range paths {
		if skipExisting {
			out := OutputPath(fp, outDir, format)
			if _, err := os.Stat(out); err == nil {
				results[i] = domain.ProcessResult{File: fp, Success: true, OutputPath: out, Skipped: true}
				report(fp)
				continue
			}
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = domain.ProcessResult{File: fp, Error: err.Error()}
				return nil
			}
			out, err := uc.Process(ctx, fp, outDir, opts)
			if err != nil {
				results[i] = domain.ProcessResult{File: fp, Error: err.Error()}
			} else {
				results[i] = domain.ProcessResult{File: fp, Success: true, OutputPath: out}
			}
			report(fp)
			return nil
		})
	}
	_ = g.Wait()

	uc.logger.Info("Batch processed",
		zap.Int("total", total),
		zap.Int("concurrency", uc.concurrency))
	return results, nil
}

func writeImage(path string, img image.Image, format domain.OutputFormat, quality int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return EncodeImage(f, img, format, quality)
}

// EncodeImage writes img in the requested format; unknown formats fall back to JPEG.
func EncodeImage(w io.Writer, img image.Image, format domain.OutputFormat, quality int) error {
	if quality <= 0 {
		quality = domain.DefaultOutputQuality
	}

	var err error
	switch format {
	case domain.FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case domain.FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}
