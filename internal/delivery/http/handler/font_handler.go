package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/photo-watermark/internal/domain"
	"github.com/photo-watermark/internal/pkg/utils"
	"github.com/photo-watermark/internal/usecase/dto"
	"go.uber.org/zap"
)

// FontLister - каталог шрифтов системы
type FontLister interface {
	ListFonts(ctx context.Context) []domain.FontEntry
	ClearCache()
}

// FontHandler обрабатывает запросы каталога шрифтов
type FontHandler struct {
	catalog FontLister
	logger  *zap.Logger
}

func NewFontHandler(catalog FontLister, logger *zap.Logger) *FontHandler {
	return &FontHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListFonts godoc
// @Summary Список шрифтов
// @Description Возвращает установленные семейства шрифтов: сначала с китайскими названиями, затем по алфавиту
// @Tags Fonts
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.FontsResponse}
// @Router /api/v1/fonts [get]
func (h *FontHandler) ListFonts(c *fiber.Ctx) error {
	fonts := h.catalog.ListFonts(c.UserContext())
	return utils.SendSuccess(c, dto.FontsResponse{
		Fonts: fonts,
		Total: len(fonts),
	}, &utils.Meta{Total: len(fonts)})
}

// RefreshFonts godoc
// @Summary Пересканировать шрифты
// @Description Сбрасывает кеш каталога и заново ищет шрифты, например после установки новых
// @Tags Fonts
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.FontsResponse}
// @Router /api/v1/fonts/refresh [post]
func (h *FontHandler) RefreshFonts(c *fiber.Ctx) error {
	h.catalog.ClearCache()
	fonts := h.catalog.ListFonts(c.UserContext())

	h.logger.Info("Font catalog refreshed", zap.Int("total", len(fonts)))
	return utils.SendSuccess(c, dto.FontsResponse{
		Fonts: fonts,
		Total: len(fonts),
	}, &utils.Meta{Total: len(fonts)})
}
