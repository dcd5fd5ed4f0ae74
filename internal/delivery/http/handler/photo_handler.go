package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	"github.com/photo-watermark/internal/pkg/validator"
	"github.com/photo-watermark/internal/usecase"
	"github.com/photo-watermark/internal/usecase/dto"
	"go.uber.org/zap"
)

// PhotoService - обработка снимков
type PhotoService interface {
	Metadata(path string) (*domain.PhotoMetadata, error)
	Preview(ctx context.Context, path string, opts domain.WatermarkOptions) (*dto.PreviewResponse, error)
	ProcessBatch(
		ctx context.Context,
		paths []string,
		outDir string,
		opts domain.WatermarkOptions,
		skipExisting bool,
		progress usecase.ProgressFunc,
	) ([]domain.ProcessResult, error)
	CheckExisting(paths []string, outDir string, format domain.OutputFormat) []string
}

// JobPublisher ставит задания в очередь воркера
type JobPublisher interface {
	PublishToStream(ctx context.Context, stream string, data interface{}) (string, error)
}

// PhotoHandler - обработчик запросов к снимкам
type PhotoHandler struct {
	photoUC PhotoService
	lines   usecase.LineBuilder
	keys    usecase.KeyStore
	jobs    JobPublisher
	logger  *zap.Logger
}

// NewPhotoHandler: jobs может быть nil, тогда асинхронная обработка недоступна
func NewPhotoHandler(
	photoUC PhotoService,
	lines usecase.LineBuilder,
	keys usecase.KeyStore,
	jobs JobPublisher,
	logger *zap.Logger,
) *PhotoHandler {
	return &PhotoHandler{
		photoUC: photoUC,
		lines:   lines,
		keys:    keys,
		jobs:    jobs,
		logger:  logger,
	}
}

func (h *PhotoHandler) injectKeys(opts *domain.LineOptions) {
	if h.keys != nil {
		h.keys.InjectKeys(opts)
	}
}

// Metadata godoc
// @Summary Метаданные снимка
// @Description Время съёмки, GPS, камера и размеры. Отсутствующие поля опускаются.
// @Tags Photos
// @Produce json
// @Param path query string true "Путь к файлу"
// @Success 200 {object} utils.SuccessResponse{data=domain.PhotoMetadata}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/metadata [get]
func (h *PhotoHandler) Metadata(c *fiber.Ctx) error {
	var req dto.MetadataRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	meta, err := h.photoUC.Metadata(req.FilePath)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, meta, nil)
}

// Lines godoc
// @Summary Строки водяного знака
// @Description Строит строки (время, место, возраст, свой текст) без отрисовки
// @Tags Photos
// @Accept json
// @Produce json
// @Param request body dto.LinesRequest true "Файл и параметры строк"
// @Success 200 {object} utils.SuccessResponse{data=dto.LinesResult}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/lines [post]
func (h *PhotoHandler) Lines(c *fiber.Ctx) error {
	var req dto.LinesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}
	if err := usecase.ValidateImagePath(req.FilePath); err != nil {
		return utils.SendError(c, err)
	}

	h.injectKeys(&req.Options)
	result, err := h.lines.BuildLines(c.UserContext(), req.FilePath, req.Options)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result.Lines)})
}

// Preview godoc
// @Summary Предпросмотр
// @Description Водяной знак на уменьшенной до 800px копии, JPEG в виде data URL
// @Tags Photos
// @Accept json
// @Produce json
// @Param request body dto.PreviewRequest true "Файл и параметры"
// @Success 200 {object} utils.SuccessResponse{data=dto.PreviewResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/preview [post]
func (h *PhotoHandler) Preview(c *fiber.Ctx) error {
	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	h.injectKeys(&req.Options.LineOptions)
	result, err := h.photoUC.Preview(c.UserContext(), req.FilePath, req.Options)
	if err != nil {
		h.logger.Error("Preview failed", zap.String("file", req.FilePath), zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, result, nil)
}

// Process godoc
// @Summary Пакетная обработка
// @Description Синхронно обрабатывает снимки и возвращает результат по каждому файлу. С async=true задание ставится в очередь воркера, ответ 202 с job_id.
// @Tags Photos
// @Accept json
// @Produce json
// @Param request body dto.ProcessRequest true "Файлы, каталог и параметры"
// @Success 200 {object} utils.SuccessResponse{data=dto.ProcessResponse}
// @Success 202 {object} utils.SuccessResponse{data=dto.ProcessResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/process [post]
func (h *PhotoHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	if req.Async {
		return h.enqueue(c, req)
	}

	h.injectKeys(&req.Options.LineOptions)
	results, err := h.photoUC.ProcessBatch(c.UserContext(), req.FilePaths, req.OutputDir, req.Options, req.SkipExisting, nil)
	if err != nil {
		return utils.SendError(c, err)
	}

	meta := dto.NewProcessMeta(results)
	return utils.SendSuccess(c, dto.ProcessResponse{
		Results: results,
		Meta:    meta,
	}, &utils.Meta{Total: meta.Total})
}

// enqueue проверяет входные данные и публикует задание. Ключи в событие не
// попадают: воркер подставляет свои.
func (h *PhotoHandler) enqueue(c *fiber.Ctx, req dto.ProcessRequest) error {
	if h.jobs == nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"async": "job queue is not configured",
		}))
	}
	if err := usecase.ValidateOutputDir(req.OutputDir); err != nil {
		return utils.SendError(c, err)
	}
	for _, p := range req.FilePaths {
		if err := usecase.ValidateImagePath(p); err != nil {
			return utils.SendError(c, err)
		}
	}

	jobID := uuid.New()
	msgID, err := h.jobs.PublishToStream(c.UserContext(), domain.StreamWatermarkJobs, domain.WatermarkJobEvent{
		JobID:        jobID,
		FilePaths:    req.FilePaths,
		OutputDir:    req.OutputDir,
		Options:      req.Options,
		SkipExisting: req.SkipExisting,
	})
	if err != nil {
		h.logger.Error("Failed to enqueue job", zap.Error(err))
		return utils.SendError(c, err)
	}

	h.logger.Info("Job enqueued",
		zap.String("job_id", jobID.String()),
		zap.String("message_id", msgID),
		zap.Int("files", len(req.FilePaths)))

	c.Status(fiber.StatusAccepted)
	return utils.SendSuccess(c, dto.ProcessResponse{
		JobID: &jobID,
		Meta:  dto.ProcessMeta{Total: len(req.FilePaths)},
	}, nil)
}

// CheckExisting godoc
// @Summary Существующие результаты
// @Description Имена выходных файлов, которые уже есть в каталоге. Для несуществующего каталога - пустой список.
// @Tags Photos
// @Accept json
// @Produce json
// @Param request body dto.CheckExistingRequest true "Файлы, каталог и формат"
// @Success 200 {object} utils.SuccessResponse{data=dto.CheckExistingResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/process/check-existing [post]
func (h *PhotoHandler) CheckExisting(c *fiber.Ctx) error {
	var req dto.CheckExistingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	existing := h.photoUC.CheckExisting(req.FilePaths, req.OutputDir, req.OutputFormat)
	return utils.SendSuccess(c, dto.CheckExistingResponse{Existing: existing}, &utils.Meta{Total: len(existing)})
}
