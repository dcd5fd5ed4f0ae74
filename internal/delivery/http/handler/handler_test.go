package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/photo-watermark/internal/delivery/http/handler"
	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/usecase"
	"github.com/photo-watermark/internal/usecase/dto"
)

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) Metadata(path string) (*domain.PhotoMetadata, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PhotoMetadata), args.Error(1)
}

func (m *MockPhotoService) Preview(ctx context.Context, path string, opts domain.WatermarkOptions) (*dto.PreviewResponse, error) {
	args := m.Called(ctx, path, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PreviewResponse), args.Error(1)
}

func (m *MockPhotoService) ProcessBatch(
	ctx context.Context,
	paths []string,
	outDir string,
	opts domain.WatermarkOptions,
	skipExisting bool,
	_ usecase.ProgressFunc,
) ([]domain.ProcessResult, error) {
	args := m.Called(ctx, paths, outDir, opts, skipExisting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProcessResult), args.Error(1)
}

func (m *MockPhotoService) CheckExisting(paths []string, outDir string, format domain.OutputFormat) []string {
	args := m.Called(paths, outDir, format)
	return args.Get(0).([]string)
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

type MockJobPublisher struct {
	mock.Mock
}

func (m *MockJobPublisher) PublishToStream(ctx context.Context, stream string, data interface{}) (string, error) {
	args := m.Called(ctx, stream, data)
	return args.String(0), args.Error(1)
}

type MockGeocodeService struct {
	mock.Mock
}

func (m *MockGeocodeService) Resolve(ctx context.Context, req dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReverseGeocodeResponse), args.Error(1)
}

func (m *MockGeocodeService) TestAPIKey(ctx context.Context, provider domain.ProviderID, apiKey string) *dto.TestAPIKeyResponse {
	args := m.Called(ctx, provider, apiKey)
	return args.Get(0).(*dto.TestAPIKeyResponse)
}

func (m *MockGeocodeService) PurgeCache(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type staticFonts struct {
	fonts   []domain.FontEntry
	cleared int
}

func (s *staticFonts) ListFonts(context.Context) []domain.FontEntry { return s.fonts }
func (s *staticFonts) ClearCache()                                  { s.cleared++ }

type staticKeys map[domain.ProviderID]string

func (k staticKeys) InjectKeys(opts *domain.LineOptions) {
	opts.APIKeys = map[domain.ProviderID]string(k)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

type photoFixture struct {
	app     *fiber.App
	photos  *MockPhotoService
	lines   *MockLineBuilder
	jobs    *MockJobPublisher
	geocode *MockGeocodeService
	fonts   *staticFonts
}

func newPhotoFixture(withQueue bool) *photoFixture {
	f := &photoFixture{
		photos:  &MockPhotoService{},
		lines:   &MockLineBuilder{},
		jobs:    &MockJobPublisher{},
		geocode: &MockGeocodeService{},
		fonts: &staticFonts{fonts: []domain.FontEntry{
			{Family: "Noto Sans CJK SC", DisplayName: "思源黑体"},
			{Family: "Arial", DisplayName: "Arial"},
		}},
	}

	var jobs handler.JobPublisher
	if withQueue {
		jobs = f.jobs
	}
	logger := zap.NewNop()
	ph := handler.NewPhotoHandler(f.photos, f.lines, staticKeys{domain.ProviderAmap: "k"}, jobs, logger)
	gh := handler.NewGeocodeHandler(f.geocode, logger)
	fh := handler.NewFontHandler(f.fonts, logger)

	app := fiber.New()
	app.Get("/metadata", ph.Metadata)
	app.Post("/lines", ph.Lines)
	app.Post("/preview", ph.Preview)
	app.Post("/process", ph.Process)
	app.Post("/process/check-existing", ph.CheckExisting)
	app.Post("/reverse-geocode", gh.ReverseGeocode)
	app.Post("/geocode/test-key", gh.TestAPIKey)
	app.Delete("/geocode/cache", gh.PurgeCache)
	app.Get("/fonts", fh.ListFonts)
	app.Post("/fonts/refresh", fh.RefreshFonts)
	f.app = app
	return f
}

func TestFontHandler(t *testing.T) {
	f := newPhotoFixture(false)

	status, env := doRequest(t, f.app, http.MethodGet, "/fonts", nil)
	require.Equal(t, http.StatusOK, status)

	var fonts dto.FontsResponse
	require.NoError(t, json.Unmarshal(env.Data, &fonts))
	assert.Equal(t, 2, fonts.Total)
	assert.Equal(t, "思源黑体", fonts.Fonts[0].DisplayName)
	assert.Zero(t, f.fonts.cleared)

	status, _ = doRequest(t, f.app, http.MethodPost, "/fonts/refresh", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, f.fonts.cleared)
}

func TestPhotoHandler_Metadata(t *testing.T) {
	f := newPhotoFixture(false)
	f.photos.On("Metadata", "/p/a.jpg").Return(&domain.PhotoMetadata{CaptureTime: "2024-01-15 14:30:00"}, nil)
	f.photos.On("Metadata", "/p/a.gif").Return(nil, apperrors.ErrInvalidFilePath)

	status, env := doRequest(t, f.app, http.MethodGet, "/metadata?path=/p/a.jpg", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"capture_time":"2024-01-15 14:30:00"}`, string(env.Data))

	status, env = doRequest(t, f.app, http.MethodGet, "/metadata?path=/p/a.gif", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_FILE_PATH", env.Error.Code)

	status, env = doRequest(t, f.app, http.MethodGet, "/metadata", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestPhotoHandler_Lines(t *testing.T) {
	f := newPhotoFixture(false)
	f.lines.On("BuildLines", mock.Anything, "/p/a.jpg", mock.MatchedBy(func(o domain.LineOptions) bool {
		return o.ShowDateTime && o.APIKeys[domain.ProviderAmap] == "k"
	})).Return(&dto.LinesResult{Lines: []string{"2024-01-15 14:30"}}, nil)

	status, env := doRequest(t, f.app, http.MethodPost, "/lines", map[string]any{
		"file_path": "/p/a.jpg",
		"options":   map[string]any{"show_date_time": true},
	})
	require.Equal(t, http.StatusOK, status)

	var res dto.LinesResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, []string{"2024-01-15 14:30"}, res.Lines)

	status, env = doRequest(t, f.app, http.MethodPost, "/lines", map[string]any{"file_path": "/p/a.bmp"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_FILE_PATH", env.Error.Code)
}

func TestPhotoHandler_Preview(t *testing.T) {
	f := newPhotoFixture(false)
	f.photos.On("Preview", mock.Anything, "/p/a.jpg", mock.MatchedBy(func(o domain.WatermarkOptions) bool {
		return o.FontSize == 40 && o.APIKeys[domain.ProviderAmap] == "k"
	})).Return(&dto.PreviewResponse{DataURL: "data:image/jpeg;base64,AAAA", Lines: []string{"x"}}, nil)

	status, env := doRequest(t, f.app, http.MethodPost, "/preview", map[string]any{
		"file_path": "/p/a.jpg",
		"options":   map[string]any{"font_size": 40},
	})
	require.Equal(t, http.StatusOK, status)

	var res dto.PreviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "data:image/jpeg;base64,AAAA", res.DataURL)
}

func TestPhotoHandler_Preview_Validation(t *testing.T) {
	f := newPhotoFixture(false)

	status, env := doRequest(t, f.app, http.MethodPost, "/preview", map[string]any{
		"file_path": "/p/a.jpg",
		"options":   map[string]any{"watermark_position": "middle", "watermark_opacity": 1.5},
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	assert.Contains(t, env.Error.Details, "options.watermark_position")
	assert.Contains(t, env.Error.Details, "options.watermark_opacity")

	status, env = doRequest(t, f.app, http.MethodPost, "/preview", "{broken")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	f.photos.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything, mock.Anything)
}

func TestPhotoHandler_Process_Sync(t *testing.T) {
	f := newPhotoFixture(false)
	results := []domain.ProcessResult{
		{File: "/p/a.jpg", Success: true, OutputPath: "/out/a_wm.jpg"},
		{File: "/p/b.jpg", Success: true, OutputPath: "/out/b_wm.jpg", Skipped: true},
		{File: "/p/c.jpg", Error: "boom"},
	}
	f.photos.On("ProcessBatch", mock.Anything, []string{"/p/a.jpg", "/p/b.jpg", "/p/c.jpg"}, "/out", mock.Anything, true).
		Return(results, nil)

	status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
		"file_paths":    []string{"/p/a.jpg", "/p/b.jpg", "/p/c.jpg"},
		"output_dir":    "/out",
		"skip_existing": true,
	})
	require.Equal(t, http.StatusOK, status)

	var res dto.ProcessResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Nil(t, res.JobID)
	assert.Len(t, res.Results, 3)
	assert.Equal(t, dto.ProcessMeta{Total: 3, Success: 2, Failed: 1, Skipped: 1}, res.Meta)
}

func TestPhotoHandler_Process_SyncError(t *testing.T) {
	f := newPhotoFixture(false)
	f.photos.On("ProcessBatch", mock.Anything, mock.Anything, "/missing", mock.Anything, false).
		Return(nil, apperrors.ErrInvalidOutputDir)

	status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
		"file_paths": []string{"/p/a.jpg"},
		"output_dir": "/missing",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_OUTPUT_DIR", env.Error.Code)
}

func TestPhotoHandler_Process_Async(t *testing.T) {
	out := t.TempDir()
	f := newPhotoFixture(true)
	f.jobs.On("PublishToStream", mock.Anything, domain.StreamWatermarkJobs, mock.MatchedBy(func(e domain.WatermarkJobEvent) bool {
		return e.JobID != uuid.Nil &&
			e.OutputDir == out &&
			len(e.FilePaths) == 2 &&
			e.Options.APIKeys == nil
	})).Return("1-0", nil)

	status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
		"file_paths": []string{"/p/a.jpg", "/p/b.png"},
		"output_dir": out,
		"async":      true,
	})
	require.Equal(t, http.StatusAccepted, status)

	var res dto.ProcessResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotNil(t, res.JobID)
	assert.Equal(t, 2, res.Meta.Total)
	f.jobs.AssertExpectations(t)
	f.photos.AssertNotCalled(t, "ProcessBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPhotoHandler_Process_AsyncRejections(t *testing.T) {
	out := t.TempDir()

	t.Run("no queue", func(t *testing.T) {
		f := newPhotoFixture(false)
		status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
			"file_paths": []string{"/p/a.jpg"},
			"output_dir": out,
			"async":      true,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})

	t.Run("bad extension", func(t *testing.T) {
		f := newPhotoFixture(true)
		status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
			"file_paths": []string{"/p/a.jpg", "/p/notes.txt"},
			"output_dir": out,
			"async":      true,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_FILE_PATH", env.Error.Code)
		f.jobs.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publish failure", func(t *testing.T) {
		f := newPhotoFixture(true)
		f.jobs.On("PublishToStream", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("redis down"))
		status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
			"file_paths": []string{"/p/a.jpg"},
			"output_dir": out,
			"async":      true,
		})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", env.Error.Code)
	})

	t.Run("empty file list", func(t *testing.T) {
		f := newPhotoFixture(true)
		status, env := doRequest(t, f.app, http.MethodPost, "/process", map[string]any{
			"file_paths": []string{},
			"output_dir": out,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	})
}

func TestPhotoHandler_CheckExisting(t *testing.T) {
	f := newPhotoFixture(false)
	f.photos.On("CheckExisting", []string{"/p/a.jpg"}, "/out", domain.FormatPNG).Return([]string{"a_wm.png"})

	status, env := doRequest(t, f.app, http.MethodPost, "/process/check-existing", map[string]any{
		"file_paths":    []string{"/p/a.jpg"},
		"output_dir":    "/out",
		"output_format": "png",
	})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"existing":["a_wm.png"]}`, string(env.Data))

	status, _ = doRequest(t, f.app, http.MethodPost, "/process/check-existing", map[string]any{
		"file_paths":    []string{"/p/a.jpg"},
		"output_dir":    "/out",
		"output_format": "gif",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGeocodeHandler_ReverseGeocode(t *testing.T) {
	f := newPhotoFixture(false)
	f.geocode.On("Resolve", mock.Anything, mock.MatchedBy(func(r dto.ReverseGeocodeRequest) bool {
		return r.Lat == 39.9042 && r.Level == "district"
	})).Return(&dto.ReverseGeocodeResponse{Address: "北京市东城区", Provider: domain.ProviderAmap}, nil)

	status, env := doRequest(t, f.app, http.MethodPost, "/reverse-geocode", map[string]any{
		"lat":   39.9042,
		"lng":   116.4074,
		"level": "district",
	})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"address":"北京市东城区","provider":"amap"}`, string(env.Data))

	status, env = doRequest(t, f.app, http.MethodPost, "/reverse-geocode", map[string]any{
		"lat":      10,
		"lng":      10,
		"provider": "baidu",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error.Details, "provider")
}

func TestGeocodeHandler_ReverseGeocode_ProviderFailure(t *testing.T) {
	f := newPhotoFixture(false)
	f.geocode.On("Resolve", mock.Anything, mock.Anything).Return(nil, errors.New("高德地图: INVALID_USER_KEY"))

	status, env := doRequest(t, f.app, http.MethodPost, "/reverse-geocode", map[string]any{"lat": 1, "lng": 1})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", env.Error.Code)
	assert.Equal(t, "高德地图: INVALID_USER_KEY", env.Error.Details["reason"])
}

func TestGeocodeHandler_TestAPIKey(t *testing.T) {
	f := newPhotoFixture(false)
	f.geocode.On("TestAPIKey", mock.Anything, domain.ProviderMapbox, "pk.1").
		Return(&dto.TestAPIKeyResponse{Success: true, Result: "New York"})

	status, env := doRequest(t, f.app, http.MethodPost, "/geocode/test-key", map[string]any{
		"provider": "mapbox",
		"api_key":  "pk.1",
	})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"result":"New York"}`, string(env.Data))

	status, _ = doRequest(t, f.app, http.MethodPost, "/geocode/test-key", map[string]any{"provider": "auto"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGeocodeHandler_PurgeCache(t *testing.T) {
	f := newPhotoFixture(false)
	f.geocode.On("PurgeCache", mock.Anything).Return(int64(3), nil)

	status, env := doRequest(t, f.app, http.MethodDelete, "/geocode/cache", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"deleted":3}`, string(env.Data))
}

func TestHealthHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", handler.NewHealthHandler(nil).Health)
	app.Get("/down", handler.NewHealthHandler(map[string]handler.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}).Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/down", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "error: connection refused", body["checks"].(map[string]any)["redis"])
}
