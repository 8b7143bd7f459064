package authkit

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/stockwise/authkit/transport"
)

// Config defines a public type used by authkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Server  ServerConfig
	Routes  RoutesConfig
	Refresh RefreshConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SERVER CONFIG
====================================
*/

// ServerConfig defines a public type used by authkit APIs.
//
// ServerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ServerConfig struct {
	BaseURL   string        `env:"AUTHKIT_BASE_URL"`
	Timeout   time.Duration `env:"AUTHKIT_HTTP_TIMEOUT"`
	UserAgent string        `env:"AUTHKIT_USER_AGENT"`
	Endpoints transport.Endpoints
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig defines a public type used by authkit APIs.
//
// RoutesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoutesConfig struct {
	// AppPrefix is the route prefix under which module routes live,
	// e.g. "/app" for "/app/inventario".
	AppPrefix string `env:"AUTHKIT_APP_PREFIX"`
	// LoginRoute is where the navigator is sent after logout or
	// terminal refresh failure.
	LoginRoute string `env:"AUTHKIT_LOGIN_ROUTE"`
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by authkit APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// ExpirySkew is subtracted from the access credential's expiry when
	// deciding whether to refresh before a call. Zero disables the
	// proactive path; the reactive retry still applies.
	ExpirySkew time.Duration `env:"AUTHKIT_REFRESH_SKEW"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by authkit APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	ProfileKey    string        `env:"AUTHKIT_PROFILE_KEY"`
	CredentialKey string        `env:"AUTHKIT_CREDENTIAL_KEY"`
	RedisTTL      time.Duration `env:"AUTHKIT_REDIS_TTL"`
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by authkit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `env:"AUTHKIT_AUDIT_ENABLED"`
	BufferSize int  `env:"AUTHKIT_AUDIT_BUFFER"`
	DropIfFull bool `env:"AUTHKIT_AUDIT_DROP_IF_FULL"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by authkit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `env:"AUTHKIT_METRICS_ENABLED"`
	EnableLatencyHistograms bool `env:"AUTHKIT_METRICS_LATENCY"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Timeout:   15 * time.Second,
			UserAgent: "authkit",
			Endpoints: transport.DefaultEndpoints(),
		},
		Routes: RoutesConfig{
			AppPrefix:  "/app",
			LoginRoute: "/login",
		},
		Refresh: RefreshConfig{
			ExpirySkew: 30 * time.Second,
		},
		Storage: StorageConfig{
			ProfileKey:    "authkit:profile",
			CredentialKey: "authkit:credentials",
			RedisTTL:      7 * 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// No reference-typed fields today; the copy keeps callers from
	// mutating the manager's view after Build.
	return cfg
}

// ConfigFromEnv returns the default configuration overridden by
// AUTHKIT_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := defaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation fails.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return errors.New("Server BaseURL must be set")
	}
	if c.Server.Timeout <= 0 {
		return errors.New("Server Timeout must be > 0")
	}

	if !strings.HasPrefix(c.Routes.AppPrefix, "/") {
		return errors.New("Routes AppPrefix must start with /")
	}
	if !strings.HasPrefix(c.Routes.LoginRoute, "/") {
		return errors.New("Routes LoginRoute must start with /")
	}

	if c.Refresh.ExpirySkew < 0 {
		return errors.New("Refresh ExpirySkew must be >= 0")
	}

	if c.Storage.ProfileKey == "" {
		return errors.New("Storage ProfileKey must be set")
	}
	if c.Storage.CredentialKey == "" {
		return errors.New("Storage CredentialKey must be set")
	}
	if c.Storage.ProfileKey == c.Storage.CredentialKey {
		return errors.New("Storage ProfileKey and CredentialKey must differ")
	}
	if c.Storage.RedisTTL < 0 {
		return errors.New("Storage RedisTTL must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
