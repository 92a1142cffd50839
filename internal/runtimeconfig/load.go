package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrEnvValueInvalid reports an environment override that cannot be parsed.
var ErrEnvValueInvalid = errors.New("notes config: invalid environment value")

// LoadOptions lists the optional inputs layered over DefaultConfig.
type LoadOptions struct {
	// ConfigFile is a YAML document; missing keys keep their defaults.
	ConfigFile string
	// EnvFile is a dotenv file. Variables already set in the process win.
	EnvFile string
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load builds a validated Config: defaults, then the YAML file, then the
// environment (after loading the dotenv file).
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(opts.ConfigFile); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if path := strings.TrimSpace(opts.EnvFile); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("notes config: load env file %s: %w", path, err)
		}
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("notes config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("notes config: parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables on cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if cfg == nil || lookup == nil {
		return nil
	}
	env := envReader{lookup: lookup}

	env.integer("API_PORT", &cfg.Server.Port)
	env.str("CONTENT_ROOT", &cfg.Content.Root)
	env.str("POST_SOURCE", &cfg.Source.Mode)
	env.str("POST_API_BASE_URL", &cfg.Source.APIBaseURL)
	env.str("LOCAL_EDITS_PATH", &cfg.Source.EditsPath)
	env.str("MARKDOWN_ENGINE", &cfg.Markdown.Engine)

	env.str("ADMIN_DATA_ROOT", &cfg.Admin.DataRoot)
	env.integer("ADMIN_OPERATION_LOG_LIMIT", &cfg.Admin.OperationLogLimit)
	env.str("ADMIN_USERNAME", &cfg.Admin.Username)
	env.raw("ADMIN_PASSWORD", &cfg.Admin.Password)
	env.str("ADMIN_SESSION_COOKIE", &cfg.Admin.CookieName)
	env.millis("ADMIN_SESSION_TTL_MS", &cfg.Admin.SessionTTL)
	env.exactTrue("ADMIN_COOKIE_SECURE", &cfg.Admin.CookieSecure)
	env.str("OPERATIONS_STORE", &cfg.Admin.OperationsStore)
	env.str("OPERATIONS_DSN", &cfg.Admin.OperationsDSN)

	env.str("LOG_LEVEL", &cfg.Logging.Level)
	env.str("LOG_FORMAT", &cfg.Logging.Format)
	env.boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)

	return errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) value(key string) (string, bool) {
	value, ok := e.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (e *envReader) fail(key, value string) {
	e.errs = append(e.errs, fmt.Errorf("%w: %s=%q", ErrEnvValueInvalid, key, value))
}

func (e *envReader) str(key string, target *string) {
	if value, ok := e.value(key); ok {
		*target = strings.TrimSpace(value)
	}
}

// raw keeps surrounding whitespace; passwords are compared verbatim.
func (e *envReader) raw(key string, target *string) {
	if value, ok := e.lookup(key); ok {
		*target = value
	}
}

func (e *envReader) integer(key string, target *int) {
	value, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		e.fail(key, value)
		return
	}
	*target = parsed
}

func (e *envReader) millis(key string, target *time.Duration) {
	value, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || parsed <= 0 {
		e.fail(key, value)
		return
	}
	*target = time.Duration(parsed) * time.Millisecond
}

func (e *envReader) boolean(key string, target *bool) {
	value, ok := e.value(key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		e.fail(key, value)
		return
	}
	*target = parsed
}

// exactTrue treats only the literal "true" as enabled.
func (e *envReader) exactTrue(key string, target *bool) {
	if value, ok := e.value(key); ok {
		*target = strings.TrimSpace(value) == "true"
	}
}
