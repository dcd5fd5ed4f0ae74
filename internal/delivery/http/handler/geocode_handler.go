package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	"github.com/photo-watermark/internal/pkg/validator"
	"github.com/photo-watermark/internal/usecase/dto"
	"go.uber.org/zap"
)

// GeocodeService - обратное геокодирование с кешем
type GeocodeService interface {
	Resolve(ctx context.Context, req dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error)
	TestAPIKey(ctx context.Context, provider domain.ProviderID, apiKey string) *dto.TestAPIKeyResponse
	PurgeCache(ctx context.Context) (int64, error)
}

// GeocodeHandler - обработчик запросов геокодирования
type GeocodeHandler struct {
	geocodeUC GeocodeService
	logger    *zap.Logger
}

func NewGeocodeHandler(geocodeUC GeocodeService, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeUC: geocodeUC,
		logger:    logger,
	}
}

// ReverseGeocode godoc
// @Summary Обратное геокодирование
// @Description Адрес точки через выбранный или автоматически определённый сервис. Пустой address - сервис недоступен или не знает точку.
// @Tags Geocode
// @Accept json
// @Produce json
// @Param request body dto.ReverseGeocodeRequest true "Координаты и параметры"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReverseGeocodeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/reverse-geocode [post]
func (h *GeocodeHandler) ReverseGeocode(c *fiber.Ctx) error {
	var req dto.ReverseGeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Resolve(c.UserContext(), req)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return utils.SendError(c, err)
		}
		h.logger.Warn("Reverse geocoding failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(utils.ErrorResponse{
			Error: apperrors.ErrProviderUnavailable.WithDetails(map[string]interface{}{
				"reason": err.Error(),
			}),
		})
	}

	return utils.SendSuccess(c, result, nil)
}

// TestAPIKey godoc
// @Summary Проверка ключа
// @Description Запрашивает адрес контрольной точки (Пекин для китайских сервисов, Нью-Йорк для остальных). Пустой api_key - проверяется ключ из конфигурации.
// @Tags Geocode
// @Accept json
// @Produce json
// @Param request body dto.TestAPIKeyRequest true "Сервис и ключ"
// @Success 200 {object} utils.SuccessResponse{data=dto.TestAPIKeyResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geocode/test-key [post]
func (h *GeocodeHandler) TestAPIKey(c *fiber.Ctx) error {
	var req dto.TestAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.Wrap(err))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result := h.geocodeUC.TestAPIKey(c.UserContext(), domain.ParseProviderID(req.Provider), req.APIKey)
	return utils.SendSuccess(c, result, nil)
}

// PurgeCache godoc
// @Summary Очистка кеша адресов
// @Tags Geocode
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/geocode/cache [delete]
func (h *GeocodeHandler) PurgeCache(c *fiber.Ctx) error {
	deleted, err := h.geocodeUC.PurgeCache(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to purge geocode cache", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"deleted": deleted}, nil)
}
