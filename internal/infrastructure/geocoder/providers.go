package geocoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/photo-watermark/internal/domain"
)

// provider is one reverse-geocoding service. buildURL never performs I/O;
// parse maps the provider's schema onto AddressComponents and returns nil when
// the provider has no data for the point.
type provider interface {
	name() string
	buildURL(base string, lat, lng float64, key string) string
	parse(body []byte) (*parsedAddress, error)
}

type parsedAddress struct {
	components domain.AddressComponents
	// domestic selects the concatenating (Chinese) formatter.
	domestic bool
}

// ProviderError carries the provider's own diagnostic message.
type ProviderError struct {
	Provider domain.ProviderID
	Message  string
}

func (e *ProviderError) Error() string {
	return e.Message
}

var providers = map[domain.ProviderID]provider{
	domain.ProviderAmap:     amapProvider{},
	domain.ProviderTencent:  tencentProvider{},
	domain.ProviderTianditu: tiandituProvider{},
	domain.ProviderQWeather: qweatherProvider{},
	domain.ProviderMapbox:   mapboxProvider{},
	domain.ProviderMapTiler: maptilerProvider{},
	domain.ProviderGoogle:   googleProvider{},
}

// DefaultBaseURLs are the public API hosts.
var DefaultBaseURLs = map[domain.ProviderID]string{
	domain.ProviderAmap:     "https://restapi.amap.com",
	domain.ProviderTencent:  "https://apis.map.qq.com",
	domain.ProviderTianditu: "https://api.tianditu.gov.cn",
	domain.ProviderQWeather: "https://geoapi.qweather.com",
	domain.ProviderMapbox:   "https://api.mapbox.com",
	domain.ProviderMapTiler: "https://api.maptiler.com",
	domain.ProviderGoogle:   "https://maps.googleapis.com",
}

// ProviderName returns the human-readable name of a provider.
func ProviderName(id domain.ProviderID) string {
	if p, ok := providers[id]; ok {
		return p.name()
	}
	return string(id)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// flexString accepts a JSON string, number, or the empty array some providers
// send for missing values.
type flexString struct {
	value   string
	isArray bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '[':
		f.isArray = true
		return nil
	case b[0] == '"':
		return json.Unmarshal(b, &f.value)
	default:
		f.value = string(b)
		return nil
	}
}

func (f flexString) String() string {
	if f.isArray {
		return ""
	}
	return f.value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func hasType(types []string, wanted ...string) bool {
	for _, t := range types {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

// ---- Amap (高德) ----

type amapProvider struct{}

type amapResponse struct {
	Status    string `json:"status"`
	Info      string `json:"info"`
	Regeocode *struct {
		AddressComponent struct {
			Province     flexString      `json:"province"`
			City         flexString      `json:"city"`
			District     flexString      `json:"district"`
			Township     flexString      `json:"township"`
			StreetNumber json.RawMessage `json:"streetNumber"`
		} `json:"addressComponent"`
	} `json:"regeocode"`
}

type amapStreetNumber struct {
	Street flexString `json:"street"`
	Number flexString `json:"number"`
}

func (amapProvider) name() string { return "高德地图" }

func (amapProvider) buildURL(base string, lat, lng float64, key string) string {
	return fmt.Sprintf("%s/v3/geocode/regeo?key=%s&location=%s,%s&extensions=base",
		base, url.QueryEscape(key), num(lng), num(lat))
}

func (amapProvider) parse(body []byte) (*parsedAddress, error) {
	var resp amapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("amap: decode response: %w", err)
	}
	if resp.Status != "1" || resp.Regeocode == nil {
		return nil, &ProviderError{
			Provider: domain.ProviderAmap,
			Message:  "Amap API error: " + firstNonEmpty(resp.Info, "unknown"),
		}
	}

	ac := resp.Regeocode.AddressComponent
	// streetNumber приходит пустым массивом вне зоны покрытия
	var sn amapStreetNumber
	_ = json.Unmarshal(ac.StreetNumber, &sn)

	city := ac.City.String()
	if ac.City.isArray {
		city = ac.Province.String()
	}

	return &parsedAddress{
		domestic: true,
		components: domain.AddressComponents{
			Province:     ac.Province.String(),
			City:         city,
			District:     ac.District.String(),
			Street:       firstNonEmpty(sn.Street.String(), ac.Township.String()),
			StreetNumber: sn.Number.String(),
		},
	}, nil
}

// ---- Tencent LBS (腾讯位置服务) ----

type tencentProvider struct{}

type tencentResponse struct {
	Status  *int   `json:"status"`
	Message string `json:"message"`
	Result  *struct {
		AddressComponent struct {
			Province     string `json:"province"`
			City         string `json:"city"`
			District     string `json:"district"`
			Street       string `json:"street"`
			StreetNumber string `json:"street_number"`
		} `json:"address_component"`
	} `json:"result"`
}

func (tencentProvider) name() string { return "腾讯位置服务" }

func (tencentProvider) buildURL(base string, lat, lng float64, key string) string {
	return fmt.Sprintf("%s/ws/geocoder/v1/?location=%s,%s&key=%s&get_poi=0",
		base, num(lat), num(lng), url.QueryEscape(key))
}

func (tencentProvider) parse(body []byte) (*parsedAddress, error) {
	var resp tencentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("tencent: decode response: %w", err)
	}
	if resp.Status == nil || *resp.Status != 0 || resp.Result == nil {
		return nil, &ProviderError{
			Provider: domain.ProviderTencent,
			Message:  "Tencent LBS error: " + firstNonEmpty(resp.Message, "unknown"),
		}
	}

	ac := resp.Result.AddressComponent
	return &parsedAddress{
		domestic: true,
		components: domain.AddressComponents{
			Province:     ac.Province,
			City:         ac.City,
			District:     ac.District,
			Street:       ac.Street,
			StreetNumber: ac.StreetNumber,
		},
	}, nil
}

// ---- Tianditu (天地图) ----

type tiandituProvider struct{}

type tiandituResponse struct {
	Status flexString `json:"status"`
	Msg    string     `json:"msg"`
	Result struct {
		AddressComponent struct {
			Province     flexString `json:"province"`
			City         flexString `json:"city"`
			County       flexString `json:"county"`
			District     flexString `json:"district"`
			Road         flexString `json:"road"`
			Street       flexString `json:"street"`
			StreetNumber flexString `json:"street_number"`
			Address      flexString `json:"address"`
		} `json:"addressComponent"`
	} `json:"result"`
}

func (tiandituProvider) name() string { return "天地图" }

func (tiandituProvider) buildURL(base string, lat, lng float64, key string) string {
	postStr := fmt.Sprintf(`{"lon":%s,"lat":%s,"ver":1}`, num(lng), num(lat))
	return fmt.Sprintf("%s/geocoder?postStr=%s&type=geocode&tk=%s",
		base, url.QueryEscape(postStr), url.QueryEscape(key))
}

func (tiandituProvider) parse(body []byte) (*parsedAddress, error) {
	var resp tiandituResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("tianditu: decode response: %w", err)
	}
	// status бывает и строкой "0", и числом 0
	if resp.Status.String() != "0" {
		return nil, &ProviderError{
			Provider: domain.ProviderTianditu,
			Message:  "Tianditu error: " + firstNonEmpty(resp.Msg, "unknown"),
		}
	}

	ac := resp.Result.AddressComponent
	return &parsedAddress{
		domestic: true,
		components: domain.AddressComponents{
			Province:     ac.Province.String(),
			City:         ac.City.String(),
			District:     firstNonEmpty(ac.County.String(), ac.District.String()),
			Street:       firstNonEmpty(ac.Road.String(), ac.Street.String()),
			StreetNumber: firstNonEmpty(ac.StreetNumber.String(), ac.Address.String()),
		},
	}, nil
}

// ---- QWeather (和风天气) ----

type qweatherProvider struct{}

type qweatherResponse struct {
	Code     string `json:"code"`
	Location []struct {
		Name string `json:"name"`
		Adm1 string `json:"adm1"`
		Adm2 string `json:"adm2"`
	} `json:"location"`
}

func (qweatherProvider) name() string { return "和风天气" }

func (qweatherProvider) buildURL(base string, lat, lng float64, key string) string {
	return fmt.Sprintf("%s/v2/city/lookup?location=%s,%s&key=%s&number=1",
		base, num(lng), num(lat), url.QueryEscape(key))
}

func (qweatherProvider) parse(body []byte) (*parsedAddress, error) {
	var resp qweatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("qweather: decode response: %w", err)
	}
	if resp.Code != "200" || len(resp.Location) == 0 {
		return nil, &ProviderError{
			Provider: domain.ProviderQWeather,
			Message:  "QWeather error: code=" + firstNonEmpty(resp.Code, "unknown"),
		}
	}

	loc := resp.Location[0]
	// adm1 может нести суффикс ("北京市"), которого нет в adm2 ("北京")
	province := loc.Adm1
	if loc.Adm2 != "" && strings.HasPrefix(loc.Adm1, loc.Adm2) {
		province = loc.Adm2
	}
	city := loc.Adm2
	district := ""
	if loc.Name != "" && loc.Name != city {
		district = loc.Name
	}

	return &parsedAddress{
		domestic: containsCJK(province + city),
		components: domain.AddressComponents{
			Province: province,
			City:     city,
			District: district,
		},
	}, nil
}

// ---- Mapbox ----

type mapboxProvider struct{}

type geoJSONFeature struct {
	PlaceType []string   `json:"place_type"`
	Text      string     `json:"text"`
	Address   flexString `json:"address"`
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

type featureCollection struct {
	Features []geoJSONFeature `json:"features"`
}

func (mapboxProvider) name() string { return "Mapbox" }

func (mapboxProvider) buildURL(base string, lat, lng float64, key string) string {
	return fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s,%s.json?access_token=%s&language=en&types=address,neighborhood,locality,district,place,region",
		base, num(lng), num(lat), url.QueryEscape(key))
}

func (mapboxProvider) parse(body []byte) (*parsedAddress, error) {
	var resp featureCollection
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mapbox: decode response: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	var c domain.AddressComponents
	for _, f := range resp.Features {
		if hasType(f.PlaceType, "address") {
			c.StreetNumber = f.Address.String()
			c.Street = f.Text
		}
		if hasType(f.PlaceType, "district", "neighborhood", "locality") && c.District == "" {
			c.District = f.Text
		}
		if hasType(f.PlaceType, "place") {
			c.City = f.Text
		}
		if hasType(f.PlaceType, "region") {
			c.Province = f.Text
		}
	}

	return &parsedAddress{components: c}, nil
}

// ---- MapTiler ----

type maptilerProvider struct{}

func (maptilerProvider) name() string { return "MapTiler" }

func (maptilerProvider) buildURL(base string, lat, lng float64, key string) string {
	return fmt.Sprintf("%s/geocoding/%s,%s.json?key=%s", base, num(lng), num(lat), url.QueryEscape(key))
}

func (maptilerProvider) parse(body []byte) (*parsedAddress, error) {
	var resp featureCollection
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("maptiler: decode response: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	var c domain.AddressComponents
	for _, f := range resp.Features {
		if hasType(f.PlaceType, "address") {
			c.Street = f.Text
			c.StreetNumber = f.Address.String()
		}
		if hasType(f.PlaceType, "municipality", "municipal_district") && c.District == "" {
			c.District = f.Text
		}
		if hasType(f.PlaceType, "place", "city") && c.City == "" {
			c.City = f.Text
		}
		if hasType(f.PlaceType, "region", "state") && c.Province == "" {
			c.Province = f.Text
		}
	}

	// контекст первого объекта заполняет пробелы
	for _, ctx := range resp.Features[0].Context {
		switch {
		case hasPrefix(ctx.ID, "municipality", "municipal_district"):
			if c.District == "" {
				c.District = ctx.Text
			}
		case hasPrefix(ctx.ID, "place", "city"):
			if c.City == "" {
				c.City = ctx.Text
			}
		case hasPrefix(ctx.ID, "region", "state"):
			if c.Province == "" {
				c.Province = ctx.Text
			}
		}
	}

	return &parsedAddress{components: c}, nil
}

func hasPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// ---- Google Maps ----

type googleProvider struct{}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (googleProvider) name() string { return "Google Maps" }

func (googleProvider) buildURL(base string, lat, lng float64, key string) string {
	return fmt.Sprintf("%s/maps/api/geocode/json?latlng=%s,%s&key=%s&language=en",
		base, num(lat), num(lng), url.QueryEscape(key))
}

func (googleProvider) parse(body []byte) (*parsedAddress, error) {
	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("google: decode response: %w", err)
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, &ProviderError{
			Provider: domain.ProviderGoogle,
			Message:  "Google Geocoding error: " + firstNonEmpty(resp.ErrorMessage, resp.Status, "unknown"),
		}
	}

	var c domain.AddressComponents
	for _, comp := range resp.Results[0].AddressComponents {
		if hasType(comp.Types, "street_number") {
			c.StreetNumber = comp.LongName
		}
		if hasType(comp.Types, "route") {
			c.Street = comp.LongName
		}
		if hasType(comp.Types, "sublocality", "sublocality_level_1") && c.District == "" {
			c.District = comp.LongName
		}
		if hasType(comp.Types, "locality") {
			c.City = comp.LongName
		}
		if hasType(comp.Types, "administrative_area_level_1") {
			c.Province = comp.LongName
		}
	}

	return &parsedAddress{
		components: c,
		domestic:   containsCJK(c.Province, c.City, c.District, c.Street, c.StreetNumber),
	}, nil
}
