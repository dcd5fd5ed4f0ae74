package domain

import "strings"

// ProviderID - идентификатор сервиса обратного геокодирования
type ProviderID string

const (
	ProviderAuto     ProviderID = "auto"
	ProviderAmap     ProviderID = "amap"
	ProviderTencent  ProviderID = "tencent"
	ProviderTianditu ProviderID = "tianditu"
	ProviderQWeather ProviderID = "qweather"
	ProviderMapbox   ProviderID = "mapbox"
	ProviderMapTiler ProviderID = "maptiler"
	ProviderGoogle   ProviderID = "google"
)

// Providers lists every concrete provider in a stable order.
var Providers = []ProviderID{
	ProviderAmap,
	ProviderTencent,
	ProviderTianditu,
	ProviderQWeather,
	ProviderMapbox,
	ProviderMapTiler,
	ProviderGoogle,
}

// IsValid reports whether id names a concrete provider (auto excluded).
func (id ProviderID) IsValid() bool {
	for _, p := range Providers {
		if p == id {
			return true
		}
	}
	return false
}

// ParseProviderID normalizes user input; empty input means auto.
func ParseProviderID(s string) ProviderID {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProviderAuto
	}
	return ProviderID(s)
}

// Granularity - уровень детализации адреса
type Granularity string

const (
	GranularityCity     Granularity = "city"
	GranularityDistrict Granularity = "district"
	GranularityStreet   Granularity = "street"
)

// ParseGranularity falls back to street for anything unknown.
func ParseGranularity(s string) Granularity {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityCity:
		return GranularityCity
	case GranularityDistrict:
		return GranularityDistrict
	default:
		return GranularityStreet
	}
}

// AddressComponents is the provider-agnostic address. Adapters fill it from
// their own response schema before any formatting runs.
type AddressComponents struct {
	Province     string `json:"province"`
	City         string `json:"city"`
	District     string `json:"district"`
	Street       string `json:"street"`
	StreetNumber string `json:"street_number"`
}

// GeocodeRequest - параметры одного запроса обратного геокодирования.
// APIKeys приходят от внешнего хранилища ключей и никогда не сохраняются.
type GeocodeRequest struct {
	Lat              float64
	Lng              float64
	Granularity      Granularity
	HideProvince     bool
	Provider         ProviderID
	APIKeys          map[ProviderID]string
	HomeCountries    []string
	DomesticProvider ProviderID
	ForeignProvider  ProviderID
}

// KeyFor returns the trimmed key configured for the provider.
func (r GeocodeRequest) KeyFor(id ProviderID) string {
	if r.APIKeys == nil {
		return ""
	}
	return strings.TrimSpace(r.APIKeys[id])
}

// HasKey - настроен ли ключ для сервиса
func (r GeocodeRequest) HasKey(id ProviderID) bool {
	return id != "" && r.KeyFor(id) != ""
}
