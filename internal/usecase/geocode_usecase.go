package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/photo-watermark/internal/domain"
	"github.com/photo-watermark/internal/domain/repository"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	"github.com/photo-watermark/internal/usecase/dto"
	"go.uber.org/zap"
)

const geocodeCachePrefix = "geocode:"

// Точки для проверки ключей: Пекин для китайских сервисов, Нью-Йорк для остальных
var (
	probeBeijing = domain.GPS{Lat: 39.9042, Lng: 116.4074}
	probeNewYork = domain.GPS{Lat: 40.7128, Lng: -74.0060}

	probePoints = map[domain.ProviderID]domain.GPS{
		domain.ProviderAmap:     probeBeijing,
		domain.ProviderTencent:  probeBeijing,
		domain.ProviderTianditu: probeBeijing,
		domain.ProviderQWeather: probeBeijing,
		domain.ProviderMapbox:   probeNewYork,
		domain.ProviderMapTiler: probeNewYork,
		domain.ProviderGoogle:   probeNewYork,
	}
)

// GeocodeResolver picks a provider and queries it.
type GeocodeResolver interface {
	SelectProvider(req domain.GeocodeRequest) domain.ProviderID
	Lookup(ctx context.Context, id domain.ProviderID, req domain.GeocodeRequest) (string, error)
}

// KeyStore injects provider keys and regional preferences into line options.
type KeyStore interface {
	InjectKeys(opts *domain.LineOptions)
}

// GeocodeUseCase кеширует адреса поверх резолвера
type GeocodeUseCase struct {
	resolver GeocodeResolver
	cache    repository.CacheRepository
	keys     KeyStore
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewGeocodeUseCase accepts a nil cache; lookups then always hit the provider.
func NewGeocodeUseCase(
	resolver GeocodeResolver,
	cache repository.CacheRepository,
	keys KeyStore,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *GeocodeUseCase {
	return &GeocodeUseCase{
		resolver: resolver,
		cache:    cache,
		keys:     keys,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ReverseGeocode resolves through the cache. Only non-empty addresses are cached.
func (uc *GeocodeUseCase) ReverseGeocode(ctx context.Context, req domain.GeocodeRequest) (string, error) {
	address, _, _, err := uc.resolve(ctx, req)
	return address, err
}

// Resolve serves the public reverse-geocode endpoint with server-side keys.
func (uc *GeocodeUseCase) Resolve(ctx context.Context, in dto.ReverseGeocodeRequest) (*dto.ReverseGeocodeResponse, error) {
	opts := domain.LineOptions{
		GeoProvider:      domain.ParseProviderID(in.Provider),
		LocationLevel:    domain.ParseGranularity(in.Level),
		HideProvince:     in.HideProvince,
		HomeCountries:    in.HomeCountries,
		DomesticProvider: domain.ProviderID(strings.ToLower(in.DomesticProvider)),
		ForeignProvider:  domain.ProviderID(strings.ToLower(in.ForeignProvider)),
	}
	if uc.keys != nil {
		uc.keys.InjectKeys(&opts)
	}

	address, provider, cached, err := uc.resolve(ctx, opts.GeocodeRequest(in.Lat, in.Lng))
	if err != nil {
		return nil, err
	}
	return &dto.ReverseGeocodeResponse{
		Address:  address,
		Provider: provider,
		Cached:   cached,
	}, nil
}

func (uc *GeocodeUseCase) resolve(ctx context.Context, req domain.GeocodeRequest) (string, domain.ProviderID, bool, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lng) {
		return "", "", false, apperrors.ErrInvalidCoordinates
	}

	provider := uc.resolver.SelectProvider(req)
	if provider == "" {
		return "", "", false, nil
	}

	key := GeocodeCacheKey(provider, req)
	if uc.cache != nil {
		data, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("Geocode cache read failed", zap.String("key", key), zap.Error(err))
		} else if data != nil {
			return string(data), provider, true, nil
		}
	}

	address, err := uc.resolver.Lookup(ctx, provider, req)
	if err != nil {
		return "", provider, false, err
	}

	if uc.cache != nil && address != "" {
		if err := uc.cache.Set(ctx, key, []byte(address), uc.cacheTTL); err != nil {
			uc.logger.Warn("Geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return address, provider, false, nil
}

// GeocodeCacheKey - geocode:{provider}:{level}:{hide}:{lat}:{lng}, coordinates
// rounded to 5 decimals (about a metre).
func GeocodeCacheKey(provider domain.ProviderID, req domain.GeocodeRequest) string {
	hide := 0
	if req.HideProvince {
		hide = 1
	}
	return fmt.Sprintf("%s%s:%s:%d:%.5f:%.5f",
		geocodeCachePrefix, provider, domain.ParseGranularity(string(req.Granularity)), hide, req.Lat, req.Lng)
}

// TestAPIKey queries the provider at a fixed probe point at city level.
// An empty key falls back to the configured one.
func (uc *GeocodeUseCase) TestAPIKey(ctx context.Context, provider domain.ProviderID, apiKey string) *dto.TestAPIKeyResponse {
	if !provider.IsValid() {
		return &dto.TestAPIKeyResponse{Error: apperrors.ErrInvalidProvider.Message}
	}
	key := strings.TrimSpace(apiKey)
	if key == "" && uc.keys != nil {
		var opts domain.LineOptions
		uc.keys.InjectKeys(&opts)
		key = strings.TrimSpace(opts.APIKeys[provider])
	}
	if key == "" {
		return &dto.TestAPIKeyResponse{Error: "No API key provided"}
	}

	point, ok := probePoints[provider]
	if !ok {
		point = probeBeijing
	}

	result, err := uc.resolver.Lookup(ctx, provider, domain.GeocodeRequest{
		Lat:         point.Lat,
		Lng:         point.Lng,
		Granularity: domain.GranularityCity,
		Provider:    provider,
		APIKeys:     map[domain.ProviderID]string{provider: key},
	})
	if err != nil {
		uc.logger.Info("API key test failed", zap.String("provider", string(provider)), zap.Error(err))
		return &dto.TestAPIKeyResponse{Error: err.Error()}
	}
	if result == "" {
		return &dto.TestAPIKeyResponse{Error: "No API key or invalid response"}
	}
	return &dto.TestAPIKeyResponse{Success: true, Result: result}
}

// PurgeCache drops every cached address.
func (uc *GeocodeUseCase) PurgeCache(ctx context.Context) (int64, error) {
	if uc.cache == nil {
		return 0, nil
	}
	return uc.cache.Purge(ctx, geocodeCachePrefix+"*")
}
