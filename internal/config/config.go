// Package config loads CLI and service configuration with viper.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
	"github.com/spf13/viper"
)

// Areas lists every backend area in a stable order.
var Areas = []string{
	constants.AreaAuth,
	constants.AreaUsers,
	constants.AreaDashboard,
	constants.AreaAdmin,
}

// EndpointConfig configures one backend area.
type EndpointConfig struct {
	BaseURL string            `json:"base_url"          mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration     `json:"timeout,omitempty" mapstructure:"timeout"  yaml:"timeout,omitempty"`
	Headers map[string]string `json:"headers,omitempty" mapstructure:"headers"  yaml:"headers,omitempty"`
}

// Config is the resolved configuration.
type Config struct {
	// BaseURL fills in any area without its own base URL.
	BaseURL         string                    `json:"base_url,omitempty"  mapstructure:"base_url"         yaml:"base_url,omitempty"`
	Timeout         time.Duration             `json:"timeout"             mapstructure:"timeout"          yaml:"timeout"`
	LoginRoute      string                    `json:"login_route"         mapstructure:"login_route"      yaml:"login_route"`
	CredentialsFile string                    `json:"credentials_file"    mapstructure:"credentials_file" yaml:"credentials_file"`
	LogLevel        string                    `json:"log_level"           mapstructure:"log_level"        yaml:"log_level"`
	Debug           bool                      `json:"debug"               mapstructure:"debug"            yaml:"debug"`
	UserAgent       string                    `json:"user_agent"          mapstructure:"user_agent"       yaml:"user_agent"`
	RetryMax        int                       `json:"retry_max"           mapstructure:"retry_max"        yaml:"retry_max"`
	Endpoints       map[string]EndpointConfig `json:"endpoints,omitempty" mapstructure:"endpoints"        yaml:"endpoints,omitempty"`
}

// Dir returns the CLI state directory, $HOME/.apictl.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("login_route", constants.DefaultLoginRoute)
	v.SetDefault("log_level", constants.DefaultLogLevel)
	v.SetDefault("debug", false)
	v.SetDefault("user_agent", constants.DefaultUserAgent)
	v.SetDefault("retry_max", constants.DefaultRetryMax)

	if dir, err := Dir(); err == nil {
		v.SetDefault("credentials_file", filepath.Join(dir, constants.CredentialsFileName))
	}
}

// Setup points v at the config file and environment. cfgFile overrides the
// default $HOME/.apictl/config.yml. A missing default file is not an error.
func Setup(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, area := range Areas {
		key := "endpoints." + area + ".base_url"

		err := v.BindEnv(key)
		if err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}

		v.AddConfigPath(dir)
		v.SetConfigType("yml")
		v.SetConfigName(constants.ConfigFileName)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

// Load decodes v into a Config and fills in derived endpoint values.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	err := v.Unmarshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Endpoints == nil {
		cfg.Endpoints = make(map[string]EndpointConfig)
	}

	if cfg.BaseURL != "" {
		base := strings.TrimRight(cfg.BaseURL, "/")

		for _, area := range Areas {
			endpoint := cfg.Endpoints[area]
			if endpoint.BaseURL == "" {
				endpoint.BaseURL = base
				cfg.Endpoints[area] = endpoint
			}
		}
	}

	return cfg, nil
}

// Validate checks that at least one endpoint is configured and that every
// configured endpoint is usable.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s: %w", c.Timeout, constants.ErrInvalidTimeout)
	}

	if len(c.Endpoints) == 0 {
		return constants.ErrNoEndpointsConfigured
	}

	for _, area := range slices.Sorted(maps.Keys(c.Endpoints)) {
		endpoint := c.Endpoints[area]

		if strings.TrimSpace(endpoint.BaseURL) == "" {
			return fmt.Errorf("endpoint %q: %w", area, constants.ErrEndpointURLRequired)
		}

		if endpoint.Timeout < 0 {
			return fmt.Errorf("endpoint %q timeout %s: %w", area, endpoint.Timeout, constants.ErrInvalidTimeout)
		}
	}

	return nil
}

// Endpoint returns the client endpoint for area with the global timeout
// applied when the area has none.
func (c *Config) Endpoint(area string) (apiclient.Endpoint, error) {
	configured, ok := c.Endpoints[area]
	if !ok || configured.BaseURL == "" {
		return apiclient.Endpoint{}, fmt.Errorf("%q: %w", area, constants.ErrEndpointNotConfigured)
	}

	timeout := configured.Timeout
	if timeout <= 0 {
		timeout = c.Timeout
	}

	endpoint := apiclient.NewEndpoint(configured.BaseURL, timeout)
	// viper lowercases keys, so canonicalize before overriding defaults.
	for key, value := range configured.Headers {
		endpoint.Headers[http.CanonicalHeaderKey(key)] = value
	}

	return endpoint, nil
}

// HasEndpoint reports whether area has a base URL.
func (c *Config) HasEndpoint(area string) bool {
	return c.Endpoints[area].BaseURL != ""
}
