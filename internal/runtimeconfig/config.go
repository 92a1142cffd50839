package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrContentRootRequired      = errors.New("notes config: content root is required")
	ErrPortInvalid              = errors.New("notes config: port must be between 1 and 65535")
	ErrSourceModeInvalid        = errors.New("notes config: source mode must be local or api")
	ErrSourceAPIBaseURLMissing  = errors.New("notes config: api source requires a base URL")
	ErrMarkdownEngineInvalid    = errors.New("notes config: markdown engine is invalid")
	ErrAdminDataRootRequired    = errors.New("notes config: admin data root is required when admin is enabled")
	ErrSessionTTLInvalid        = errors.New("notes config: admin session ttl must be positive")
	ErrOperationLogLimitInvalid = errors.New("notes config: operation log limit must be zero or positive")
	ErrOperationsStoreUnknown   = errors.New("notes config: operations store is invalid")
	ErrOperationsDSNRequired    = errors.New("notes config: operations store requires a DSN")
	ErrLoggingProviderUnknown   = errors.New("notes config: logging provider is invalid")
	ErrLoggingLevelInvalid      = errors.New("notes config: logging level is invalid")
	ErrLoggingFormatInvalid     = errors.New("notes config: logging format is invalid")
)

// Config aggregates every runtime option of the notes service and CLIs.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Content  ContentConfig  `yaml:"content"`
	Source   SourceConfig   `yaml:"source"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ContentConfig locates posts.json and the posts/ directory.
type ContentConfig struct {
	Root          string        `yaml:"root"`
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// SourceConfig picks the post source strategy.
type SourceConfig struct {
	Mode       string `yaml:"mode"`
	APIBaseURL string `yaml:"api_base_url"`
	EditsPath  string `yaml:"edits_path"`
}

// MarkdownConfig selects the render engine.
type MarkdownConfig struct {
	Engine     string   `yaml:"engine"`
	Extensions []string `yaml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps"`
}

// AdminConfig covers authentication, sessions and the operation log.
type AdminConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	DataRoot          string        `yaml:"data_root"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	CookieName        string        `yaml:"cookie_name"`
	CookieSecure      bool          `yaml:"cookie_secure"`
	OperationLogLimit int           `yaml:"operation_log_limit"`
	OperationsStore   string        `yaml:"operations_store"`
	OperationsDSN     string        `yaml:"operations_dsn"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig mirrors the defaults of the environment variables.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8787,
			BasePath:        "/api",
			ShutdownTimeout: 10 * time.Second,
		},
		Content: ContentConfig{
			Root:          "public/content",
			Watch:         true,
			WatchDebounce: 100 * time.Millisecond,
		},
		Source: SourceConfig{
			Mode:      "local",
			EditsPath: ".runtime/local-edits.json",
		},
		Markdown: MarkdownConfig{
			Engine: "builtin",
		},
		Admin: AdminConfig{
			Enabled:           true,
			Username:          "admin",
			DataRoot:          ".runtime/admin",
			SessionTTL:        8 * time.Hour,
			SweepInterval:     time.Minute,
			CookieName:        "notes_admin_session",
			OperationLogLimit: 200,
			OperationsStore:   "file",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Root) == "" {
		return ErrContentRootRequired
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrPortInvalid, cfg.Server.Port)
	}

	switch mode := normalize(cfg.Source.Mode); mode {
	case "", "local":
	case "api":
		if strings.TrimSpace(cfg.Source.APIBaseURL) == "" {
			return ErrSourceAPIBaseURLMissing
		}
	default:
		return fmt.Errorf("%w: %s", ErrSourceModeInvalid, mode)
	}

	switch engine := normalize(cfg.Markdown.Engine); engine {
	case "", "builtin", "goldmark":
	default:
		return fmt.Errorf("%w: %s", ErrMarkdownEngineInvalid, engine)
	}

	if cfg.Admin.Enabled {
		if strings.TrimSpace(cfg.Admin.DataRoot) == "" {
			return ErrAdminDataRootRequired
		}
		if cfg.Admin.SessionTTL <= 0 {
			return ErrSessionTTLInvalid
		}
		if cfg.Admin.OperationLogLimit < 0 {
			return ErrOperationLogLimitInvalid
		}
		switch store := normalize(cfg.Admin.OperationsStore); store {
		case "", "file":
		case "sqlite", "sqlite3", "postgres", "postgresql":
			if strings.TrimSpace(cfg.Admin.OperationsDSN) == "" {
				return fmt.Errorf("%w: %s", ErrOperationsDSNRequired, store)
			}
		default:
			return fmt.Errorf("%w: %s", ErrOperationsStoreUnknown, store)
		}
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
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
	case "", "none", "gologger":
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
