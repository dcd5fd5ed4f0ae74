package usecase_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/photo-watermark/internal/domain"
	"github.com/photo-watermark/internal/infrastructure/render"
	"github.com/photo-watermark/internal/usecase/dto"
)

type MockMetadataReader struct {
	mock.Mock
}

func (m *MockMetadataReader) Extract(path string) (*domain.PhotoMetadata, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PhotoMetadata), args.Error(1)
}

type MockAddressResolver struct {
	mock.Mock
}

func (m *MockAddressResolver) ReverseGeocode(ctx context.Context, req domain.GeocodeRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockGeocodeResolver struct {
	mock.Mock
}

func (m *MockGeocodeResolver) SelectProvider(req domain.GeocodeRequest) domain.ProviderID {
	args := m.Called(req)
	return args.Get(0).(domain.ProviderID)
}

func (m *MockGeocodeResolver) Lookup(ctx context.Context, id domain.ProviderID, req domain.GeocodeRequest) (string, error) {
	args := m.Called(ctx, id, req)
	return args.String(0), args.Error(1)
}

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) Purge(ctx context.Context, pattern string) (int64, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).(int64), args.Error(1)
}

type MockLineBuilder struct {
	mock.Mock
}

func (m *MockLineBuilder) BuildLines(ctx context.Context, path string, opts domain.LineOptions) (*dto.LinesResult, error) {
	args := m.Called(ctx, path, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LinesResult), args.Error(1)
}

type MockOverlayRenderer struct {
	mock.Mock
}

func (m *MockOverlayRenderer) Render(ctx context.Context, lines []string, width, height int, cfg domain.WatermarkConfig) ([]domain.CompositeInstruction, error) {
	args := m.Called(ctx, lines, width, height, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompositeInstruction), args.Error(1)
}

// staticKeys implements KeyStore with a fixed key table.
type staticKeys map[domain.ProviderID]string

func (k staticKeys) InjectKeys(opts *domain.LineOptions) {
	keys := make(map[domain.ProviderID]string, len(k))
	for id, v := range k {
		keys[id] = v
	}
	opts.APIKeys = keys
}

// stubFonts resolves every family to itself and never finds a file.
type stubFonts struct {
	families map[string]string
}

func (s stubFonts) ResolveFamily(_ context.Context, name string) string {
	if r, ok := s.families[name]; ok {
		return r
	}
	return name
}

func (stubFonts) ResolveFile(context.Context, string, bool, bool) string {
	return ""
}

// stubRasterizer returns a fixed glyph block: opaque in a centred rectangle,
// half transparent on its border, in the foreground colour of the markup.
type stubRasterizer struct {
	mu      sync.Mutex
	width   int
	height  int
	markups []string
	opts    []render.Options
	err     error
}

func newStubRasterizer(w, h int) *stubRasterizer {
	return &stubRasterizer{width: w, height: h}
}

func (s *stubRasterizer) Rasterize(markup string, opts render.Options) (*image.NRGBA, error) {
	s.mu.Lock()
	s.markups = append(s.markups, markup)
	s.opts = append(s.opts, opts)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	m, err := render.ParseMarkup(markup)
	if err != nil {
		return nil, err
	}
	fg := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if m.Foreground != "" {
		var r, g, b uint8
		if _, err := fmt.Sscanf(m.Foreground, "#%2x%2x%2x", &r, &g, &b); err == nil {
			fg = color.NRGBA{R: r, G: g, B: b, A: 255}
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 2; y < s.height-2; y++ {
		for x := 2; x < s.width-2; x++ {
			c := fg
			if y == 2 || x == 2 || y == s.height-3 || x == s.width-3 {
				c.A = 128
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}
