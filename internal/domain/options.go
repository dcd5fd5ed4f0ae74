package domain

// LocationMode - как строится строка местоположения
type LocationMode string

const (
	LocationGeocode LocationMode = "geocode"
	LocationCoords  LocationMode = "coords"
	LocationCustom  LocationMode = "custom"
)

// AgeFormat - формат строки возраста
type AgeFormat string

const (
	AgeYears           AgeFormat = "years"
	AgeYearsMonths     AgeFormat = "years-months"
	AgeYearsMonthsDays AgeFormat = "years-months-days"
)

const (
	DefaultDateTimeFormat = "YYYY-MM-DD HH:mm"
	DefaultLocationPrefix = "📍"
	DefaultLang           = "zh"
)

// LineOptions selects and configures the text lines of a watermark.
type LineOptions struct {
	ShowDateTime   bool   `json:"show_date_time"`
	DateTimeFormat string `json:"date_time_format,omitempty" validate:"omitempty,max=64"`

	ShowLocation     bool         `json:"show_location"`
	LocationMode     LocationMode `json:"location_mode,omitempty" validate:"omitempty,oneof=geocode coords custom"`
	CustomLocation   string       `json:"custom_location,omitempty" validate:"omitempty,max=256"`
	LocationPrefix   *string      `json:"location_prefix,omitempty" validate:"omitempty,max=16"`
	GeoProvider      ProviderID   `json:"geo_provider,omitempty"`
	LocationLevel    Granularity  `json:"location_level,omitempty" validate:"omitempty,oneof=city district street"`
	HideProvince     bool         `json:"hide_province,omitempty"`
	HomeCountries    []string     `json:"home_countries,omitempty" validate:"omitempty,dive,len=2"`
	DomesticProvider ProviderID   `json:"domestic_provider,omitempty"`
	ForeignProvider  ProviderID   `json:"foreign_provider,omitempty"`

	ShowChildAge   bool      `json:"show_child_age"`
	ChildBirthday  string    `json:"child_birthday,omitempty"`
	ChildAgeFormat AgeFormat `json:"child_age_format,omitempty" validate:"omitempty,oneof=years years-months years-months-days"`
	ChildAgePrefix string    `json:"child_age_prefix,omitempty" validate:"omitempty,max=64"`
	Lang           string    `json:"lang,omitempty" validate:"omitempty,oneof=zh en"`

	CustomText string `json:"custom_text,omitempty" validate:"omitempty,max=512"`

	// APIKeys are injected by the key store; never accepted from clients.
	APIKeys map[ProviderID]string `json:"-"`
}

// GeocodeRequest builds the resolver request for a point.
func (o LineOptions) GeocodeRequest(lat, lng float64) GeocodeRequest {
	provider := o.GeoProvider
	if provider == "" {
		provider = ProviderAuto
	}
	return GeocodeRequest{
		Lat:              lat,
		Lng:              lng,
		Granularity:      ParseGranularity(string(o.LocationLevel)),
		HideProvince:     o.HideProvince,
		Provider:         provider,
		APIKeys:          o.APIKeys,
		HomeCountries:    o.HomeCountries,
		DomesticProvider: o.DomesticProvider,
		ForeignProvider:  o.ForeignProvider,
	}
}

// WatermarkOptions - всё, что нужно для обработки одного снимка
type WatermarkOptions struct {
	LineOptions
	WatermarkConfig
}
