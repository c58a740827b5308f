package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	ShutdownTimeout time.Duration

	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	LogLevel  string
	LogFormat string

	// TTSProvider is "gtts", "auto" or "browser". Only the first two serve audio.
	TTSProvider  string
	TTSCacheDir  string
	TTSTimeout   time.Duration
	GTTSTLD      string
	TLDOverrides map[string]string

	// TTSRateLimit is the number of /api/tts requests one client may make per TTSRateWindow.
	TTSRateLimit  int
	TTSRateWindow time.Duration

	// TranslateProvider is "local", "mymemory" or "hybrid".
	TranslateProvider string
	TranslateTimeout  time.Duration
	VocabPath         string

	AWSRegion    string
	EmailFrom    string
	DigestTo     string
	DigestHourUT int

	ProgressURL string
}

// ttsLanguages are the languages the server-side TTS endpoint can voice.
var ttsLanguages = []string{"fr", "es", "en", "bn"}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	return LoadFrom(v)
}

// LoadFrom reads configuration through v, which may already carry bound
// command-line flags.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		ServerPort:        v.GetString("PORT"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),
		DatabaseType:      strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_TYPE"))),
		DatabasePath:      v.GetString("DB_PATH"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		TTSProvider:       strings.ToLower(strings.TrimSpace(v.GetString("TTS_PROVIDER"))),
		TTSCacheDir:       v.GetString("TTS_CACHE_DIR"),
		TTSTimeout:        v.GetDuration("TTS_TIMEOUT"),
		GTTSTLD:           strings.TrimSpace(v.GetString("GTTS_TLD")),
		TLDOverrides:      make(map[string]string),
		TTSRateLimit:      v.GetInt("TTS_RATE_LIMIT"),
		TTSRateWindow:     v.GetDuration("TTS_RATE_WINDOW"),
		TranslateProvider: strings.ToLower(strings.TrimSpace(v.GetString("TRANSLATE_PROVIDER"))),
		TranslateTimeout:  v.GetDuration("TRANSLATE_TIMEOUT"),
		VocabPath:         v.GetString("VOCAB_PATH"),
		AWSRegion:         v.GetString("AWS_REGION"),
		EmailFrom:         v.GetString("EMAIL_FROM"),
		DigestTo:          v.GetString("DIGEST_TO"),
		DigestHourUT:      v.GetInt("DIGEST_HOUR_UTC"),
		ProgressURL:       v.GetString("PROGRESS_URL"),
	}
	if cfg.GTTSTLD == "" {
		cfg.GTTSTLD = "com"
	}
	for _, lang := range ttsLanguages {
		if tld := strings.TrimSpace(v.GetString("GTTS_TLD_" + strings.ToUpper(lang))); tld != "" {
			cfg.TLDOverrides[lang] = tld
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DB_PATH", "./languagecoach.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("TTS_PROVIDER", "auto")
	v.SetDefault("TTS_CACHE_DIR", "./data/tts_cache")
	v.SetDefault("TTS_TIMEOUT", 10*time.Second)
	v.SetDefault("GTTS_TLD", "com")
	v.SetDefault("TTS_RATE_LIMIT", 60)
	v.SetDefault("TTS_RATE_WINDOW", time.Minute)
	v.SetDefault("TRANSLATE_PROVIDER", "hybrid")
	v.SetDefault("TRANSLATE_TIMEOUT", 8*time.Second)
	v.SetDefault("VOCAB_PATH", "./data/vocabulary.json")
	v.SetDefault("DIGEST_HOUR_UTC", 18)
	v.SetDefault("PROGRESS_URL", "http://localhost:8080")
}

func (c *Config) validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_TYPE: %s", c.DatabaseType)
	}
	if c.TTSRateLimit <= 0 {
		return fmt.Errorf("TTS_RATE_LIMIT must be positive, got %d", c.TTSRateLimit)
	}
	if c.DigestHourUT < 0 || c.DigestHourUT > 23 {
		return fmt.Errorf("DIGEST_HOUR_UTC must be between 0 and 23, got %d", c.DigestHourUT)
	}
	return nil
}

// TLDFor returns the Google TTS top-level domain used for a language code.
func (c *Config) TLDFor(lang string) string {
	if tld, ok := c.TLDOverrides[lang]; ok {
		return tld
	}
	return c.GTTSTLD
}

// ServerTTSEnabled reports whether the server generates audio itself.
func (c *Config) ServerTTSEnabled() bool {
	return c.TTSProvider == "gtts" || c.TTSProvider == "auto"
}

// DigestEnabled reports whether the daily email digest has somewhere to go.
func (c *Config) DigestEnabled() bool {
	return c.EmailFrom != "" && c.DigestTo != ""
}
