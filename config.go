package webedit

import "github.com/goliatone/go-webedit/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired      = runtimeconfig.ErrStorageDSNRequired
	ErrSessionProviderUnknown  = runtimeconfig.ErrSessionProviderUnknown
	ErrSessionRedisURLRequired = runtimeconfig.ErrSessionRedisURLRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrMediaPrefixRequired     = runtimeconfig.ErrMediaPrefixRequired
	ErrLinkPrefixRequired      = runtimeconfig.ErrLinkPrefixRequired
	ErrServerURLInvalid        = runtimeconfig.ErrServerURLInvalid
	ErrValidatorsTTLInvalid    = runtimeconfig.ErrValidatorsTTLInvalid
)

type (
	Config        = runtimeconfig.Config
	WebEditConfig = runtimeconfig.WebEditConfig
	StorageConfig = runtimeconfig.StorageConfig
	CacheConfig   = runtimeconfig.CacheConfig
	SessionConfig = runtimeconfig.SessionConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	HTTPConfig    = runtimeconfig.HTTPConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
