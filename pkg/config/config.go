// Package config loads the runtime configuration of an NRouter server from
// files, environment variables and defaults through viper.
package config

import (
	"compress/gzip"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Suhaibinator/NRouter/pkg/common"
	"github.com/Suhaibinator/NRouter/pkg/middleware"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the runtime configuration of a server.
type Config struct {
	Address     string        `mapstructure:"address"`
	LogLevel    zapcore.Level `mapstructure:"log_level"`
	MaxBodySize int64         `mapstructure:"max_body_size"`

	// ShutdownTimeout bounds how long a server waits for in-flight requests
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Gzip     GzipConfig     `mapstructure:"gzip"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	CORS     CORSConfig     `mapstructure:"cors"`
	IP       IPConfig       `mapstructure:"ip"`
}

// GzipConfig controls the response encoder.
type GzipConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Level   int  `mapstructure:"level"`
}

// ThrottleConfig controls request pacing. A zero Rate disables it.
type ThrottleConfig struct {
	Rate    int           `mapstructure:"rate"`
	Per     time.Duration `mapstructure:"per"`
	MaxKeys int           `mapstructure:"max_keys"`
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Segment   string `mapstructure:"segment"`
}

// IPConfig controls client IP extraction, which also keys throttling.
// Proxy headers are only honoured with TrustProxy, since clients can set them.
type IPConfig struct {
	Source       middleware.IPSourceType `mapstructure:"source"`
	CustomHeader string                  `mapstructure:"custom_header"`
	TrustProxy   bool                    `mapstructure:"trust_proxy"`
}

// CORSConfig lists the values of the CORS response headers. Empty Origins disables CORS.
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
	Methods []string `mapstructure:"methods"`
	Headers []string `mapstructure:"headers"`
}

// SetDefaults registers the default value of every key on v. Keys need a
// default for AutomaticEnv to reach them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("address", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_body_size", 1<<20)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("gzip.enabled", true)
	v.SetDefault("gzip.level", gzip.DefaultCompression)

	v.SetDefault("throttle.rate", 0)
	v.SetDefault("throttle.per", time.Second)
	v.SetDefault("throttle.max_keys", middleware.DefaultMaxKeys)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "nrouter")
	v.SetDefault("metrics.subsystem", "")
	v.SetDefault("metrics.segment", "metrics")

	v.SetDefault("cors.origins", []string{})
	v.SetDefault("cors.methods", []string{})
	v.SetDefault("cors.headers", []string{})

	v.SetDefault("ip.source", string(middleware.IPSourceRemoteAddr))
	v.SetDefault("ip.custom_header", "")
	v.SetDefault("ip.trust_proxy", false)
}

// NewViper creates a viper instance with defaults that also reads
// environment variables such as PREFIX_GZIP_LEVEL.
func NewViper(envPrefix string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DecodeHook converts durations, comma separated lists and log levels
// from their string form.
func DecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper, opts ...viper.DecoderConfigOption) (Config, error) {
	var c Config
	opts = append([]viper.DecoderConfigOption{DecodeHook()}, opts...)
	if err := v.Unmarshal(&c, opts...); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Address == "":
		return errors.New("address must not be empty")
	case c.MaxBodySize < 0:
		return fmt.Errorf("max_body_size must not be negative, got %d", c.MaxBodySize)
	case c.Gzip.Level < gzip.HuffmanOnly || c.Gzip.Level > gzip.BestCompression:
		return fmt.Errorf("gzip.level must be between %d and %d, got %d", gzip.HuffmanOnly, gzip.BestCompression, c.Gzip.Level)
	case c.Throttle.Rate < 0:
		return fmt.Errorf("throttle.rate must not be negative, got %d", c.Throttle.Rate)
	case c.Throttle.MaxKeys < 0:
		return fmt.Errorf("throttle.max_keys must not be negative, got %d", c.Throttle.MaxKeys)
	case c.Metrics.Enabled && strings.Trim(c.Metrics.Segment, "/") == "":
		return errors.New("metrics.segment must not be empty when metrics are enabled")
	}
	return c.IP.validate()
}

func (c IPConfig) validate() error {
	switch c.Source {
	case middleware.IPSourceRemoteAddr, middleware.IPSourceXForwardedFor, middleware.IPSourceXRealIP:
	case middleware.IPSourceCustomHeader:
		if c.CustomHeader == "" {
			return errors.New("ip.custom_header must be set when ip.source is custom_header")
		}
	default:
		return fmt.Errorf("unknown ip.source %q", c.Source)
	}
	return nil
}

// NewLogger creates a production zap logger at level.
func NewLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// Middlewares builds the root middleware described by c, in the order they
// should be attached: tracing, client IP, throttling, CORS, logging and,
// last in the After phase, gzip so that other After units see the plain body.
func (c Config) Middlewares(logger *zap.Logger) []common.Phased {
	phased := []common.Phased{
		common.Pre(middleware.TraceMiddleware()),
		common.Pre(middleware.ClientIPMiddleware(&middleware.IPConfig{
			Source:       c.IP.Source,
			CustomHeader: c.IP.CustomHeader,
			TrustProxy:   c.IP.TrustProxy,
		})),
	}

	if c.Throttle.Rate > 0 {
		throttler := middleware.NewThrottler(middleware.ThrottleConfig{
			Rate:    c.Throttle.Rate,
			Per:     c.Throttle.Per,
			MaxKeys: c.Throttle.MaxKeys,
		}, logger)
		phased = append(phased, common.Pre(throttler))
	}

	if len(c.CORS.Origins) > 0 {
		phased = append(phased, common.Pre(middleware.CORS(c.CORS.Origins, c.CORS.Methods, c.CORS.Headers)))
	}

	phased = append(phased, middleware.Logging(logger)...)

	if c.Gzip.Enabled {
		phased = append(phased, common.Post(&middleware.GzipEncoder{Level: c.Gzip.Level, Logger: logger}))
	}
	return phased
}
