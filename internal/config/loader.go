package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// lookupFunc resolves one environment variable, like os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return load(os.LookupEnv)
}

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}

	err := eachField(reflect.ValueOf(cfg).Elem(), func(f reflect.StructField, v reflect.Value) error {
		b, ok := bindingFor(f)
		if !ok {
			return nil
		}
		raw, err := b.resolve(lookup)
		if err != nil || raw == "" {
			return err
		}
		if err := decode(v, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", b.keys[0], raw, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// eachField calls fn for every settable leaf field of the struct v,
// descending into nested config structs.
func eachField(v reflect.Value, fn func(reflect.StructField, reflect.Value) error) error {
	t := v.Type()
	for i := range t.NumField() {
		f, fv := t.Field(i), v.Field(i)
		switch {
		case !fv.CanSet():
		case f.Type.Kind() == reflect.Struct:
			if err := eachField(fv, fn); err != nil {
				return err
			}
		default:
			if err := fn(f, fv); err != nil {
				return err
			}
		}
	}
	return nil
}

// binding is the env, envAlt, default and required tags of one field.
type binding struct {
	keys     []string
	fallback string
	required bool
}

func bindingFor(f reflect.StructField) (binding, bool) {
	key := f.Tag.Get("env")
	if key == "" {
		return binding{}, false
	}
	b := binding{
		keys:     []string{key},
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	if alt := f.Tag.Get("envAlt"); alt != "" {
		b.keys = append(b.keys, alt)
	}
	return b, true
}

// resolve returns the first non-empty variable among b.keys, or the
// default. An empty result leaves the field at its zero value.
func (b binding) resolve(lookup lookupFunc) (string, error) {
	for _, key := range b.keys {
		if v, ok := lookup(key); ok && v != "" {
			return v, nil
		}
	}
	if b.required {
		return "", fmt.Errorf("required environment variable %s is not set", b.keys[0])
	}
	return b.fallback, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// decode parses raw into dst according to dst's type.
func decode(dst reflect.Value, raw string) error {
	if dst.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)
	case reflect.Slice:
		if dst.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", dst.Type().Elem().Kind())
		}
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", dst.Kind())
	}
	return nil
}

// splitList splits a comma-separated value and drops empty items.
func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// problems collects validation failures so they are reported together.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New("validation failed:\n  - " + strings.Join(p, "\n  - "))
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var p problems

	s := c.Server
	p.check(s.Port > 0 && s.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", s.Port)
	p.check(s.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(s.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	// Source names are matched case-insensitively by the source registry.
	d := c.Data
	switch {
	case d.Source == "":
		p.check(false, "DATA_SOURCE is required")
	case strings.EqualFold(d.Source, "postgres"):
		p.check(d.URL != "", "DATA_URL (or DATABASE_URL) is required when DATA_SOURCE is postgres")
	default:
		p.check(d.Path != "", "DATA_PATH is required when DATA_SOURCE is %s", d.Source)
	}
	p.check(d.LoadTimeout > 0, "DATA_LOAD_TIMEOUT must be positive")

	p.check(c.Render.MaxConcurrent > 0, "RENDER_MAX_CONCURRENT must be positive")
	p.check(c.Render.MaxWait > 0, "RENDER_MAX_WAIT must be positive")

	if r := c.Rate; r.Enabled {
		p.check(r.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(r.ChartLimit > 0, "RATE_LIMIT_CHARTS must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")

	p.check(oneOf(c.Logging.Level, logLevels), "LOG_LEVEL (%q) must be one of: %s",
		c.Logging.Level, strings.Join(logLevels, ", "))
	p.check(oneOf(c.Logging.Format, logFormats), "LOG_FORMAT (%q) must be one of: %s",
		c.Logging.Format, strings.Join(logFormats, ", "))

	return p.err()
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// String returns a safe string representation of the config for logging.
// The data URL and API keys are masked.
func (c *Config) String() string {
	url := ""
	if c.Data.URL != "" {
		url = "[MASKED]"
	}
	return fmt.Sprintf("Config{Server: {Host: %q, Port: %d}, "+
		"Data: {Source: %q, Path: %q, URL: %s, Table: %q}, "+
		"Render: {MaxConcurrent: %d, MaxWait: %s}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d}, "+
		"Security: {APIKeys: %d configured}, "+
		"Logging: {Level: %q, Format: %q}}",
		c.Server.Host, c.Server.Port,
		c.Data.Source, c.Data.Path, url, c.Data.Table,
		c.Render.MaxConcurrent, c.Render.MaxWait,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format)
}
