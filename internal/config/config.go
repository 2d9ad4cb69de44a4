package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// AllowedOrigins is fixed; other frontends need a code change.
var AllowedOrigins = []string{"http://127.0.0.1:9000", "http://localhost:9000"}

type HTTPConfig struct {
	Port               int `yaml:"port"`
	MaxUploadMB        int `yaml:"max_upload_mb"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type WeatherConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type STTConfig struct {
	Mode        string `yaml:"mode"` // openai, deepgram, exec, mock
	Command     string `yaml:"command"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"`
	OpenAIKey   string `yaml:"openai_api_key"`
	DeepgramKey string `yaml:"deepgram_api_key"`
}

type TTSConfig struct {
	Mode          string `yaml:"mode"` // openai, elevenlabs, exec, mock
	Command       string `yaml:"command"`
	Voice         string `yaml:"voice"`
	Format        string `yaml:"format"`
	OpenAIKey     string `yaml:"openai_api_key"`
	ElevenLabsKey string `yaml:"elevenlabs_api_key"`
}

type StorageConfig struct {
	ResponsesDir string `yaml:"responses_dir"`
	TempDir      string `yaml:"temp_dir"`
	S3Endpoint   string `yaml:"s3_endpoint"`
	S3AccessKey  string `yaml:"s3_access_key"`
	S3SecretKey  string `yaml:"s3_secret_key"`
	S3Bucket     string `yaml:"s3_bucket"`
	S3Region     string `yaml:"s3_region"`
	S3UseSSL     bool   `yaml:"s3_use_ssl"`
}

type AlertConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

type Config struct {
	LogLevel             string        `yaml:"log_level"`
	EngineTimeoutSeconds int           `yaml:"engine_timeout_seconds"`
	HTTP                 HTTPConfig    `yaml:"http"`
	Weather              WeatherConfig `yaml:"weather"`
	STT                  STTConfig     `yaml:"stt"`
	TTS                  TTSConfig     `yaml:"tts"`
	Storage              StorageConfig `yaml:"storage"`
	Alerts               AlertConfig   `yaml:"alerts"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Port:               8080,
			MaxUploadMB:        25,
			RateLimitPerMinute: 30,
		},
		Weather: WeatherConfig{
			BaseURL:        defaultWeatherURL,
			TimeoutSeconds: 8,
		},
		STT: STTConfig{
			Mode: "openai",
		},
		TTS: TTSConfig{
			Mode:   "openai",
			Format: "mp3",
		},
		Storage: StorageConfig{
			ResponsesDir: "responses",
			TempDir:      ".",
			S3UseSSL:     true,
		},
	}
}

// Load builds the config from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideInt(&cfg.EngineTimeoutSeconds, "ENGINE_TIMEOUT_SECONDS")
	overrideInt(&cfg.HTTP.Port, "PORT")
	overrideInt(&cfg.HTTP.MaxUploadMB, "MAX_UPLOAD_MB")
	overrideInt(&cfg.HTTP.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")

	// either name is accepted, the first one set wins
	overrideFirst(&cfg.Weather.APIKey, "OPENWEATHER_API_KEY", "WEATHER_API_KEY")
	overrideString(&cfg.Weather.BaseURL, "OPENWEATHER_BASE_URL")
	overrideInt(&cfg.Weather.TimeoutSeconds, "WEATHER_TIMEOUT_SECONDS")

	overrideString(&cfg.STT.Mode, "STT_MODE")
	overrideString(&cfg.STT.Command, "STT_COMMAND")
	overrideString(&cfg.STT.Model, "STT_MODEL")
	overrideString(&cfg.STT.Language, "STT_LANGUAGE")
	overrideString(&cfg.STT.OpenAIKey, "OPENAI_API_KEY")
	overrideString(&cfg.STT.DeepgramKey, "DEEPGRAM_API_KEY")

	overrideString(&cfg.TTS.Mode, "TTS_MODE")
	overrideString(&cfg.TTS.Command, "TTS_COMMAND")
	overrideString(&cfg.TTS.Voice, "TTS_VOICE")
	overrideString(&cfg.TTS.Format, "TTS_FORMAT")
	overrideString(&cfg.TTS.OpenAIKey, "OPENAI_API_KEY")
	overrideString(&cfg.TTS.ElevenLabsKey, "ELEVENLABS_API_KEY")

	overrideString(&cfg.Storage.ResponsesDir, "RESPONSES_DIR")
	overrideString(&cfg.Storage.TempDir, "TEMP_DIR")
	overrideString(&cfg.Storage.S3Endpoint, "S3_ENDPOINT")
	overrideString(&cfg.Storage.S3AccessKey, "S3_ACCESS_KEY")
	overrideString(&cfg.Storage.S3SecretKey, "S3_SECRET_KEY")
	overrideString(&cfg.Storage.S3Bucket, "S3_BUCKET")
	overrideString(&cfg.Storage.S3Region, "S3_REGION")
	overrideBool(&cfg.Storage.S3UseSSL, "S3_USE_SSL")

	overrideString(&cfg.Alerts.TelegramToken, "ALERT_TELEGRAM_TOKEN")
	overrideInt64(&cfg.Alerts.TelegramChatID, "ALERT_TELEGRAM_CHAT_ID")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideFirst(target *string, envKeys ...string) {
	for _, key := range envKeys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*target = value
			return
		}
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			*target = parsed
		}
	}
}

func overrideInt64(target *int64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		return errors.New("http.max_upload_mb must be positive")
	}
	if cfg.HTTP.RateLimitPerMinute < 0 {
		return errors.New("http.rate_limit_per_minute must be >= 0")
	}
	if cfg.Weather.BaseURL == "" {
		return errors.New("weather.base_url must not be empty")
	}
	if cfg.Weather.TimeoutSeconds <= 0 {
		return errors.New("weather.timeout_seconds must be positive")
	}
	if cfg.EngineTimeoutSeconds < 0 {
		return errors.New("engine_timeout_seconds must be >= 0")
	}
	switch cfg.STT.Mode {
	case "openai", "deepgram", "exec", "mock":
	default:
		return errors.New("stt.mode must be one of openai|deepgram|exec|mock")
	}
	if cfg.STT.Mode == "exec" && cfg.STT.Command == "" {
		return errors.New("stt.command must be set when mode=exec")
	}
	switch cfg.TTS.Mode {
	case "openai", "elevenlabs", "exec", "mock":
	default:
		return errors.New("tts.mode must be one of openai|elevenlabs|exec|mock")
	}
	if cfg.TTS.Mode == "exec" && cfg.TTS.Command == "" {
		return errors.New("tts.command must be set when mode=exec")
	}
	if strings.Trim(cfg.TTS.Format, ".") == "" {
		return errors.New("tts.format must not be empty")
	}
	if cfg.Storage.ResponsesDir == "" {
		return errors.New("storage.responses_dir must not be empty")
	}
	if cfg.Storage.S3Endpoint != "" && cfg.Storage.S3Bucket == "" {
		return errors.New("storage.s3_bucket must be set when s3_endpoint is set")
	}
	return nil
}

// MirrorEnabled reports whether synthesized responses are copied to S3.
func (c StorageConfig) MirrorEnabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != ""
}

// AlertsEnabled reports whether unexpected failures are pushed to Telegram.
func (c AlertConfig) AlertsEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
