package geocoder

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/photo-watermark/internal/domain"
	apperrors "github.com/photo-watermark/internal/pkg/errors"
	"github.com/photo-watermark/internal/pkg/utils"
	"go.uber.org/zap"
)

var (
	domesticPreference = []domain.ProviderID{
		domain.ProviderAmap,
		domain.ProviderTencent,
		domain.ProviderTianditu,
		domain.ProviderQWeather,
	}
	foreignPreference = []domain.ProviderID{
		domain.ProviderMapbox,
		domain.ProviderMapTiler,
		domain.ProviderGoogle,
	}
)

// Config configures a Resolver.
type Config struct {
	Timeout time.Duration
	// BaseURLs overrides provider hosts, e.g. for a proxy.
	BaseURLs   map[domain.ProviderID]string
	HTTPClient *http.Client
}

// Resolver turns coordinates into a formatted address. It keeps no per-call state.
type Resolver struct {
	transport *httpTransport
	baseURLs  map[domain.ProviderID]string
	logger    *zap.Logger
}

func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	baseURLs := make(map[domain.ProviderID]string, len(DefaultBaseURLs))
	for id, base := range DefaultBaseURLs {
		baseURLs[id] = base
	}
	for id, base := range cfg.BaseURLs {
		if base != "" {
			baseURLs[id] = strings.TrimRight(base, "/")
		}
	}

	return &Resolver{
		transport: newHTTPTransport(cfg.HTTPClient, cfg.Timeout, logger),
		baseURLs:  baseURLs,
		logger:    logger,
	}
}

// ReverseGeocode resolves the request to an address string. An empty string
// means no provider is usable or the provider has no data; errors are reserved
// for transport, parse and provider failures.
func (r *Resolver) ReverseGeocode(ctx context.Context, req domain.GeocodeRequest) (string, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lng) {
		return "", apperrors.ErrInvalidCoordinates
	}

	id := r.SelectProvider(req)
	if id == "" {
		r.logger.Debug("No geocoding provider configured",
			zap.Float64("lat", req.Lat),
			zap.Float64("lng", req.Lng))
		return "", nil
	}

	return r.Lookup(ctx, id, req)
}

// SelectProvider returns the provider to query, or "" when none has a key.
// An explicit provider is returned as is.
func (r *Resolver) SelectProvider(req domain.GeocodeRequest) domain.ProviderID {
	if req.Provider != "" && req.Provider != domain.ProviderAuto {
		return req.Provider
	}

	// Сначала предпочтения пользователя для своей и чужих стран
	domestic := IsDomestic(req.Lat, req.Lng, req.HomeCountries)
	if domestic && req.HasKey(req.DomesticProvider) {
		return req.DomesticProvider
	}
	if !domestic && req.HasKey(req.ForeignProvider) {
		return req.ForeignProvider
	}

	preference := foreignPreference
	if IsInChina(req.Lat, req.Lng) {
		preference = domesticPreference
	}
	for _, id := range preference {
		if req.HasKey(id) {
			return id
		}
	}
	return ""
}

// Lookup queries one provider. Unknown providers and missing keys yield "" with
// no network call.
func (r *Resolver) Lookup(ctx context.Context, id domain.ProviderID, req domain.GeocodeRequest) (string, error) {
	p, ok := providers[id]
	if !ok {
		r.logger.Warn("Unknown geocoding provider", zap.String("provider", string(id)))
		return "", nil
	}
	key := req.KeyFor(id)
	if key == "" {
		return "", nil
	}

	body, err := r.transport.getJSON(ctx, p.buildURL(r.baseURLs[id], req.Lat, req.Lng, key))
	if err != nil {
		return "", err
	}

	addr, err := p.parse(body)
	if err != nil {
		r.logger.Warn("Geocoding provider error",
			zap.String("provider", string(id)),
			zap.Error(err))
		return "", err
	}
	if addr == nil {
		return "", nil
	}

	return format(addr, domain.ParseGranularity(string(req.Granularity)), req.HideProvince), nil
}
