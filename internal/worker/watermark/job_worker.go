package watermark

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/photo-watermark/internal/domain"
	"github.com/photo-watermark/internal/domain/repository"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/usecase"
	"github.com/photo-watermark/internal/usecase/dto"
	"github.com/photo-watermark/internal/worker"
	"go.uber.org/zap"
)

// BatchProcessor - то, что воркер вызывает для каждого задания
type BatchProcessor interface {
	ProcessBatch(
		ctx context.Context,
		paths []string,
		outDir string,
		opts domain.WatermarkOptions,
		skipExisting bool,
		progress usecase.ProgressFunc,
	) ([]domain.ProcessResult, error)
}

// JobWorker обрабатывает задания из stream:watermark:jobs и публикует
// результаты в stream:watermark:done
type JobWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	processor    BatchProcessor
	keys         usecase.KeyStore
	defaults     domain.WatermarkOptions
	outputDir    string
	consumerName string
	maxRetries   int
}

// NewJobWorker создает новый JobWorker. defaults заменяют опции задания, в
// котором не выбрана ни одна строка; outputDir - каталог по умолчанию.
func NewJobWorker(
	streamRepo repository.StreamRepository,
	processor BatchProcessor,
	keys usecase.KeyStore,
	defaults domain.WatermarkOptions,
	outputDir string,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *JobWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &JobWorker{
		BaseWorker:   worker.NewBaseWorker("watermark-jobs", consumerGroup, logger),
		streamRepo:   streamRepo,
		processor:    processor,
		keys:         keys,
		defaults:     defaults,
		outputDir:    outputDir,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start читает задания, пока не закроется стрим, не отменится ctx или не будет вызван Stop
func (w *JobWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting JobWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_retries", w.maxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamWatermarkJobs, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamWatermarkJobs, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Job stream closed")
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

// handle обрабатывает одно задание. Сообщение не подтверждается, если ctx
// отменён во время обработки: после перезапуска оно придёт снова.
func (w *JobWorker) handle(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var job domain.WatermarkJobEvent
	if err := json.Unmarshal([]byte(msg.Data), &job); err != nil {
		logger.Warn("Failed to parse job, skipping", zap.Error(err))
		// ACK битое сообщение чтобы не застревало
		_ = w.streamRepo.AckMessage(ctx, domain.StreamWatermarkJobs, w.ConsumerGroup(), msg.ID)
		return
	}
	logger = logger.With(zap.String("job_id", job.JobID.String()), zap.Int("attempt", job.Attempt))

	opts, outDir := w.jobOptions(job)
	logger.Info("Processing job", zap.Int("files", len(job.FilePaths)), zap.String("output_dir", outDir))

	results, err := w.processor.ProcessBatch(ctx, job.FilePaths, outDir, opts, job.SkipExisting,
		func(e dto.ProgressEvent) {
			logger.Debug("Job progress",
				zap.Int("processed", e.Processed),
				zap.Int("total", e.Total),
				zap.String("file", e.File))
		})
	if ctx.Err() != nil {
		logger.Warn("Job interrupted, left pending")
		return
	}

	switch {
	case err == nil:
		w.publishDone(ctx, logger, domain.WatermarkDoneEvent{JobID: job.JobID, Results: results})
		meta := dto.NewProcessMeta(results)
		logger.Info("Job processed",
			zap.Int("success", meta.Success),
			zap.Int("failed", meta.Failed),
			zap.Int("skipped", meta.Skipped))

	case retryable(err) && job.Attempt < w.maxRetries:
		job.Attempt++
		if _, perr := w.streamRepo.PublishToStream(ctx, domain.StreamWatermarkJobs, job); perr != nil {
			// сообщение остаётся в pending и будет выдано повторно
			logger.Error("Failed to requeue job", zap.Error(perr))
			return
		}
		logger.Warn("Job failed, requeued", zap.Error(err))

	default:
		logger.Error("Job failed", zap.Error(err))
		w.publishDone(ctx, logger, domain.WatermarkDoneEvent{JobID: job.JobID, Error: err.Error()})
	}

	if err := w.streamRepo.AckMessage(ctx, domain.StreamWatermarkJobs, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Error("Failed to ack job", zap.Error(err))
	}
}

func (w *JobWorker) publishDone(ctx context.Context, logger *zap.Logger, event domain.WatermarkDoneEvent) {
	if _, err := w.streamRepo.PublishToStream(ctx, domain.StreamWatermarkDone, event); err != nil {
		logger.Error("Failed to publish done event", zap.Error(err))
	}
}

// jobOptions подставляет значения по умолчанию и ключи сервисов
func (w *JobWorker) jobOptions(job domain.WatermarkJobEvent) (domain.WatermarkOptions, string) {
	opts := job.Options
	if !hasLines(opts.LineOptions) {
		opts = w.defaults
	}
	if w.keys != nil {
		w.keys.InjectKeys(&opts.LineOptions)
	}

	outDir := job.OutputDir
	if outDir == "" {
		outDir = w.outputDir
	}
	return opts, outDir
}

func hasLines(o domain.LineOptions) bool {
	return o.ShowDateTime || o.ShowLocation || o.ShowChildAge || o.CustomText != ""
}

// retryable - ошибки клиента (4xx) повторять бессмысленно
func retryable(err error) bool {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
