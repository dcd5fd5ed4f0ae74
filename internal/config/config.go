package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/photo-watermark/internal/domain"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Geocoder  GeocoderConfig
	Fonts     FontConfig
	Output    OutputConfig
	Worker    WorkerConfig
	Watermark domain.WatermarkOptions
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	WriteTimeout time.Duration
	CORSOrigins  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	GeocodeCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

// GeocoderConfig - настройки сервисов геокодирования. Ключи читаются из окружения
// и передаются в каждый запрос; ядро их не сохраняет.
type GeocoderConfig struct {
	RequestTimeout   time.Duration
	APIKeys          map[domain.ProviderID]string
	BaseURLs         map[domain.ProviderID]string
	HomeCountries    []string
	DomesticProvider domain.ProviderID
	ForeignProvider  domain.ProviderID
}

type FontConfig struct {
	CommandTimeout time.Duration
	ExtraDirs      []string
}

type OutputConfig struct {
	Dir         string
	Concurrency int
}

type WorkerConfig struct {
	Enabled         bool
	ConsumerGroup   string
	MaxRetries      int
	ShutdownTimeout time.Duration
}

// apiKeyEnv maps each provider to the environment variable holding its key.
var apiKeyEnv = map[domain.ProviderID]string{
	domain.ProviderAmap:     "AMAP_KEY",
	domain.ProviderTencent:  "TENCENT_KEY",
	domain.ProviderTianditu: "TIANDITU_KEY",
	domain.ProviderQWeather: "QWEATHER_KEY",
	domain.ProviderMapbox:   "MAPBOX_TOKEN",
	domain.ProviderMapTiler: "MAPTILER_KEY",
	domain.ProviderGoogle:   "GOOGLE_MAPS_KEY",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// .env is optional, the environment alone is enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			WriteTimeout: time.Duration(v.GetInt("API_WRITE_TIMEOUT")) * time.Second,
			CORSOrigins:  v.GetString("CORS_ORIGINS"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			GeocodeCacheTTL: time.Duration(v.GetInt("GEOCODE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Geocoder: GeocoderConfig{
			RequestTimeout:   time.Duration(v.GetInt("GEOCODER_TIMEOUT")) * time.Second,
			APIKeys:          make(map[domain.ProviderID]string),
			BaseURLs:         make(map[domain.ProviderID]string),
			HomeCountries:    parseList(v.GetString("HOME_COUNTRIES")),
			DomesticProvider: domain.ProviderID(strings.ToLower(v.GetString("DOMESTIC_PROVIDER"))),
			ForeignProvider:  domain.ProviderID(strings.ToLower(v.GetString("FOREIGN_PROVIDER"))),
		},
		Fonts: FontConfig{
			CommandTimeout: time.Duration(v.GetInt("FONT_CMD_TIMEOUT")) * time.Second,
			ExtraDirs:      parseList(v.GetString("FONT_DIRS")),
		},
		Output: OutputConfig{
			Dir:         v.GetString("OUTPUT_DIR"),
			Concurrency: v.GetInt("PROCESS_CONCURRENCY"),
		},
		Worker: WorkerConfig{
			Enabled:         v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:   v.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:      v.GetInt("WORKER_MAX_RETRIES"),
			ShutdownTimeout: time.Duration(v.GetInt("WORKER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
	}

	for id, env := range apiKeyEnv {
		if key := strings.TrimSpace(v.GetString(env)); key != "" {
			cfg.Geocoder.APIKeys[id] = key
		}
		// e.g. AMAP_BASE_URL, used by tests and self-hosted proxies
		if base := v.GetString(strings.ToUpper(string(id)) + "_BASE_URL"); base != "" {
			cfg.Geocoder.BaseURLs[id] = strings.TrimRight(base, "/")
		}
	}

	cfg.Watermark = watermarkDefaults(v)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	// синхронная пакетная обработка может идти минутами
	v.SetDefault("API_WRITE_TIMEOUT", 600)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("GEOCODE_CACHE_TTL", 7*24*3600)
	v.SetDefault("GEOCODER_TIMEOUT", 10)
	v.SetDefault("FONT_CMD_TIMEOUT", 15)
	v.SetDefault("OUTPUT_DIR", "./output")
	v.SetDefault("PROCESS_CONCURRENCY", 2)
	v.SetDefault("WORKER_CONSUMER_GROUP", "watermark-workers")
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_SHUTDOWN_TIMEOUT", 120)
	v.SetDefault("WATERMARK_DATE_FORMAT", domain.DefaultDateTimeFormat)
	v.SetDefault("WATERMARK_LANG", domain.DefaultLang)
	v.SetDefault("WATERMARK_SHOW_DATE_TIME", true)
	v.SetDefault("WATERMARK_SHOW_LOCATION", true)
}

// watermarkDefaults - параметры по умолчанию для заданий воркера
func watermarkDefaults(v *viper.Viper) domain.WatermarkOptions {
	opts := domain.WatermarkOptions{
		LineOptions: domain.LineOptions{
			ShowDateTime:   v.GetBool("WATERMARK_SHOW_DATE_TIME"),
			DateTimeFormat: v.GetString("WATERMARK_DATE_FORMAT"),
			ShowLocation:   v.GetBool("WATERMARK_SHOW_LOCATION"),
			LocationLevel:  domain.ParseGranularity(v.GetString("WATERMARK_LOCATION_LEVEL")),
			Lang:           v.GetString("WATERMARK_LANG"),
			CustomText:     v.GetString("WATERMARK_CUSTOM_TEXT"),
		},
		WatermarkConfig: domain.WatermarkConfig{
			FontFamily:   v.GetString("WATERMARK_FONT_FAMILY"),
			Position:     domain.Position(v.GetString("WATERMARK_POSITION")),
			OutputFormat: domain.OutputFormat(v.GetString("WATERMARK_OUTPUT_FORMAT")),
		},
	}
	opts.WatermarkConfig = opts.WatermarkConfig.WithDefaults()
	return opts
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// InjectKeys fills the per-call key table and the regional provider preferences
// from configuration, keeping whatever the caller already set.
func (c *Config) InjectKeys(opts *domain.LineOptions) {
	keys := make(map[domain.ProviderID]string, len(c.Geocoder.APIKeys))
	for id, key := range c.Geocoder.APIKeys {
		keys[id] = key
	}
	opts.APIKeys = keys

	if len(opts.HomeCountries) == 0 {
		opts.HomeCountries = c.Geocoder.HomeCountries
	}
	if opts.DomesticProvider == "" {
		opts.DomesticProvider = c.Geocoder.DomesticProvider
	}
	if opts.ForeignProvider == "" {
		opts.ForeignProvider = c.Geocoder.ForeignProvider
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
