package config

import (
	"time"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
	Path     string `mapstructure:"path"`
}

func (h HealthCheckConfig) IntervalDuration() time.Duration {
	return parseDuration(h.Interval)
}

type CircuitBreakerConfig struct {
	Threshold    int    `mapstructure:"threshold"`
	ResetTimeout string `mapstructure:"reset_timeout"`
}

func (c CircuitBreakerConfig) ResetTimeoutDuration() time.Duration {
	return parseDuration(c.ResetTimeout)
}

// DebugConfig controls per-request tracing. A request is traced when it
// carries Header with a true boolean value.
type DebugConfig struct {
	Header       string `mapstructure:"header"`
	HeadersOnly  bool   `mapstructure:"headers_only"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

type HostConfig struct {
	URL    string `mapstructure:"url"`
	Weight int    `mapstructure:"weight"`
}

// OriginConfig is one named pool of upstream hosts.
type OriginConfig struct {
	Name         string       `mapstructure:"name"`
	Strategy     string       `mapstructure:"strategy"`
	VirtualNodes int          `mapstructure:"virtual_nodes"`
	Timeout      string       `mapstructure:"timeout"`
	Hosts        []HostConfig `mapstructure:"hosts"`
}

// TimeoutDuration returns zero when no timeout is configured.
func (o OriginConfig) TimeoutDuration() time.Duration {
	if o.Timeout == "" {
		return 0
	}
	return parseDuration(o.Timeout)
}

// RouteConfig sends every request below Prefix to Origin.
type RouteConfig struct {
	Prefix string `mapstructure:"prefix"`
	Origin string `mapstructure:"origin"`
}

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	HealthCheck    HealthCheckConfig    `mapstructure:"health_check"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Debug          DebugConfig          `mapstructure:"debug"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	Origins        []OriginConfig       `mapstructure:"origins"`
	Routes         []RouteConfig        `mapstructure:"routes"`
}

// Origin returns the origin called name.
func (c *Config) Origin(name string) (OriginConfig, bool) {
	for _, o := range c.Origins {
		if o.Name == name {
			return o, true
		}
	}
	return OriginConfig{}, false
}

// DanglingRoutes returns the routes whose origin is not configured.
func (c *Config) DanglingRoutes() []RouteConfig {
	var dangling []RouteConfig
	for _, r := range c.Routes {
		if _, ok := c.Origin(r.Origin); !ok {
			dangling = append(dangling, r)
		}
	}
	return dangling
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
