package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrStorageProviderUnknown = errors.New("webedit config: storage provider is invalid")
var ErrStorageDriverUnknown = errors.New("webedit config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("webedit config: storage dsn is required for the bun provider")

// ErrSessionRedisURLRequired reports a redis session provider without a URL.
var ErrSessionRedisURLRequired = errors.New("webedit config: redis url is required for the redis session provider")
var ErrSessionProviderUnknown = errors.New("webedit config: session provider is invalid")
var ErrLoggingProviderUnknown = errors.New("webedit config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("webedit config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("webedit config: logging format is invalid")

// ErrMediaPrefixRequired guards the link repair rewriter against an empty media prefix.
var ErrMediaPrefixRequired = errors.New("webedit config: media prefix is required")
var ErrLinkPrefixRequired = errors.New("webedit config: link prefix is required")
var ErrServerURLInvalid = errors.New("webedit config: server url is invalid")
var ErrValidatorsTTLInvalid = errors.New("webedit config: validators ttl must be zero or positive")

// Config aggregates the save path switches and adapter bindings.
type Config struct {
	Enabled       bool          `yaml:"enabled"`
	DefaultLocale string        `yaml:"default_locale"`
	WebEdit       WebEditConfig `yaml:"webedit"`
	Storage       StorageConfig `yaml:"storage"`
	Cache         CacheConfig   `yaml:"cache"`
	Session       SessionConfig `yaml:"session"`
	Logging       LoggingConfig `yaml:"logging"`
	HTTP          HTTPConfig    `yaml:"http"`
}

// WebEditConfig captures inline editing behaviour.
type WebEditConfig struct {
	// ValidationEnabled is the global switch for integer and number syntax checks.
	ValidationEnabled  bool          `yaml:"validation_enabled"`
	EditingDisabled    bool          `yaml:"editing_disabled"`
	MediaPrefix        string        `yaml:"media_prefix"`
	LinkPrefix         string        `yaml:"link_prefix"`
	ServerURL          string        `yaml:"server_url"`
	LayoutFieldID      uuid.UUID     `yaml:"layout_field_id"`
	StandardValuesName string        `yaml:"standard_values_name"`
	PipelineName       string        `yaml:"pipeline_name"`
	ValidatorsTTL      time.Duration `yaml:"validators_ttl"`
	CompareModeParam   string        `yaml:"compare_mode_param"`
}

// StorageConfig selects the item store.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// SessionConfig selects the store behind session held field values and validators.
type SessionConfig struct {
	Provider  string `yaml:"provider"`
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// HTTPConfig configures the editor endpoints.
type HTTPConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
}

// DefaultConfig returns defaults that boot an in-memory editor.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLocale: "en",
		WebEdit: WebEditConfig{
			ValidationEnabled:  true,
			MediaPrefix:        "~/media/",
			LinkPrefix:         "~/link.aspx?",
			StandardValuesName: "__Standard Values",
			PipelineName:       "saveUI",
			ValidatorsTTL:      20 * time.Minute,
			CompareModeParam:   "sc_ce",
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Session: SessionConfig{
			Provider:  "memory",
			KeyPrefix: "webedit:",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			BasePath: "/webedit",
		},
	}
}

// Load reads a YAML document on top of DefaultConfig. Keys absent from the
// document keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("webedit config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("webedit config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.WebEdit.MediaPrefix) == "" {
		return ErrMediaPrefixRequired
	}
	if strings.TrimSpace(cfg.WebEdit.LinkPrefix) == "" {
		return ErrLinkPrefixRequired
	}
	if serverURL := strings.TrimSpace(cfg.WebEdit.ServerURL); serverURL != "" {
		if !govalidator.IsURL(serverURL) || !strings.Contains(serverURL, "://") {
			return fmt.Errorf("%w: %s", ErrServerURLInvalid, serverURL)
		}
	}
	if cfg.WebEdit.ValidatorsTTL < 0 {
		return ErrValidatorsTTLInvalid
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", "memory":
	case "bun":
		switch driver := normalize(cfg.Storage.Driver); driver {
		case "", "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	switch provider := normalize(cfg.Session.Provider); provider {
	case "", "memory":
	case "redis":
		if strings.TrimSpace(cfg.Session.RedisURL) == "" {
			return ErrSessionRedisURLRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrSessionProviderUnknown, provider)
	}

	provider := normalize(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
