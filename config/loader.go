package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Loader reads configuration through its own viper instance.
type Loader struct {
	v      *viper.Viper
	logger *slog.Logger
}

type LoaderOption func(*Loader)

// WithFile reads exactly path instead of searching for config.yaml.
func WithFile(path string) LoaderOption {
	return func(l *Loader) { l.v.SetConfigFile(path) }
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(opts ...LoaderOption) *Loader {
	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("health_check.interval", "2s")
	v.SetDefault("health_check.path", "/health")
	v.SetDefault("circuit_breaker.threshold", 5)
	v.SetDefault("circuit_breaker.reset_timeout", "30s")
	v.SetDefault("debug.header", "X-Debug")
	v.SetDefault("debug.headers_only", false)
	v.SetDefault("debug.max_body_bytes", 64<<10)
	v.SetDefault("metrics.namespace", "origin_proxy")
	v.SetDefault("metrics.path", "/metrics")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l := &Loader{v: v, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, decodes and validates the configuration. A missing config
// file is not an error; defaults and environment variables apply.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			l.logger.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		l.logger.Warn("config file not found, using defaults and environment variables")
	} else {
		l.logger.Info("loaded config file", slog.String("file", l.v.ConfigFileUsed()))
	}

	return l.decode()
}

// Watch reloads the file whenever it changes and passes every valid result
// to onChange. Invalid revisions are logged and skipped. Load must have
// succeeded in finding a file first.
func (l *Loader) Watch(onChange func(*Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.logger.Info("config file changed", slog.String("file", e.Name), slog.String("op", e.Op.String()))

		cfg, err := l.decode()
		if err != nil {
			l.logger.Error("ignoring invalid configuration", slog.String("error", err.Error()))
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load reads the configuration from ./config/config.yaml or ./config.yaml.
func Load() (*Config, error) {
	return NewLoader().Load()
}
