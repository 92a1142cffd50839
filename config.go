package notes

import "github.com/goliatone/go-notes/internal/runtimeconfig"

var (
	ErrContentRootRequired      = runtimeconfig.ErrContentRootRequired
	ErrPortInvalid              = runtimeconfig.ErrPortInvalid
	ErrSourceModeInvalid        = runtimeconfig.ErrSourceModeInvalid
	ErrSourceAPIBaseURLMissing  = runtimeconfig.ErrSourceAPIBaseURLMissing
	ErrMarkdownEngineInvalid    = runtimeconfig.ErrMarkdownEngineInvalid
	ErrAdminDataRootRequired    = runtimeconfig.ErrAdminDataRootRequired
	ErrSessionTTLInvalid        = runtimeconfig.ErrSessionTTLInvalid
	ErrOperationLogLimitInvalid = runtimeconfig.ErrOperationLogLimitInvalid
	ErrOperationsStoreUnknown   = runtimeconfig.ErrOperationsStoreUnknown
	ErrOperationsDSNRequired    = runtimeconfig.ErrOperationsDSNRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrEnvValueInvalid          = runtimeconfig.ErrEnvValueInvalid
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	ContentConfig  = runtimeconfig.ContentConfig
	SourceConfig   = runtimeconfig.SourceConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	AdminConfig    = runtimeconfig.AdminConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	MetricsConfig  = runtimeconfig.MetricsConfig
	LoadOptions    = runtimeconfig.LoadOptions
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig layers a YAML file, a dotenv file and the environment over
// DefaultConfig and validates the result.
func LoadConfig(opts LoadOptions) (Config, error) {
	return runtimeconfig.Load(opts)
}
