package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/origin-proxy/internal/httpserver"
	"github.com/angeloszaimis/origin-proxy/internal/strategy"
)

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Logging),
		validation.Field(&c.HealthCheck),
		validation.Field(&c.CircuitBreaker),
		validation.Field(&c.Debug),
		validation.Field(&c.Metrics),
		validation.Field(&c.Origins, validation.Required),
		validation.Field(&c.Routes),
	)
	if err != nil {
		return err
	}

	return c.validateReferences()
}

// validateReferences checks unique origin names and route prefixes. Routes
// naming an unknown origin stay valid; they answer 503 at runtime.
func (c *Config) validateReferences() error {
	names := make(map[string]struct{}, len(c.Origins))
	for _, o := range c.Origins {
		if _, dup := names[o.Name]; dup {
			return validation.Errors{"Origins": validation.NewError("validation_duplicate_origin", fmt.Sprintf("duplicate origin %q", o.Name))}
		}
		names[o.Name] = struct{}{}
	}

	prefixes := make(map[string]struct{}, len(c.Routes))
	for _, r := range c.Routes {
		if _, dup := prefixes[r.Prefix]; dup {
			return validation.Errors{"Routes": validation.NewError("validation_duplicate_prefix", fmt.Sprintf("duplicate route prefix %q", r.Prefix))}
		}
		prefixes[r.Prefix] = struct{}{}

		if r.Prefix == c.Metrics.Path {
			return validation.Errors{"Routes": validation.NewError("validation_reserved_prefix", fmt.Sprintf("prefix %q is the metrics path", r.Prefix))}
		}
	}

	return nil
}

func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&s.Address,
			validation.Required,
			validation.By(httpserver.ValidateAddress),
		),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
	)
}

func (h HealthCheckConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Interval, validation.Required, validation.By(validateDuration)),
		validation.Field(&h.Path, validation.Required, validation.By(validatePath)),
	)
}

func (c CircuitBreakerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Threshold, validation.Required, validation.Min(1)),
		validation.Field(&c.ResetTimeout, validation.Required, validation.By(validateDuration)),
	)
}

func (d DebugConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Header, validation.Required, validation.Match(headerName)),
		validation.Field(&d.MaxBodyBytes, validation.Min(int64(0))),
	)
}

func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Namespace, validation.Required, validation.Match(metricName)),
		validation.Field(&m.Path, validation.Required, validation.By(validatePath)),
	)
}

func (o OriginConfig) Validate() error {
	strategies := make([]interface{}, 0, len(strategy.Names))
	for _, n := range strategy.Names {
		strategies = append(strategies, n)
	}

	return validation.ValidateStruct(&o,
		validation.Field(&o.Name, validation.Required, validation.Match(originName)),
		validation.Field(&o.Strategy, validation.In(strategies...)),
		validation.Field(&o.VirtualNodes, validation.Min(0)),
		validation.Field(&o.Timeout, validation.By(validateDuration)),
		validation.Field(&o.Hosts, validation.Required),
	)
}

func (h HostConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.URL, validation.Required, validation.By(validateHostURL)),
		validation.Field(&h.Weight, validation.Min(0)),
	)
}

func (r RouteConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prefix, validation.Required, validation.By(validatePath)),
		validation.Field(&r.Origin, validation.Required),
	)
}

// validateDuration accepts the empty string; pair it with Required where a
// value is mandatory.
func validateDuration(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if s == "" {
		return nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}
	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be positive")
	}

	return nil
}

func validatePath(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if s != "" && !strings.HasPrefix(s, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}
	return nil
}

func validateHostURL(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	u, err := url.Parse(s)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
