package core

import (
	"fmt"
	"net/url"
	"strings"
)

type Config struct {
	ServiceName string `koanf:"service_name" mapstructure:"service_name"`
	// RedirectHubURL is the provider-registered callback hub. The provider
	// only accepts a single fixed callback URL, so every deployment routes
	// callbacks through the hub, which bounces the browser back to the
	// server and client passed as query parameters.
	RedirectHubURL string `koanf:"redirect_hub_url" mapstructure:"redirect_hub_url"`
	// ServerBaseURL is this deployment's externally reachable base URL,
	// forwarded to the hub so the callback can find its way home.
	ServerBaseURL string `koanf:"server_base_url" mapstructure:"server_base_url"`
	// SettingsPath is appended to the caller-supplied client URL to build
	// the post-callback redirect target.
	SettingsPath string `koanf:"settings_path" mapstructure:"settings_path"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:  "social-link",
		SettingsPath: "/settings/twitter",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.RedirectHubURL) == "" {
		return fmt.Errorf("core: redirect_hub_url is required")
	}
	if _, err := url.Parse(c.RedirectHubURL); err != nil {
		return fmt.Errorf("core: redirect_hub_url is invalid: %w", err)
	}
	if strings.TrimSpace(c.ServerBaseURL) == "" {
		return fmt.Errorf("core: server_base_url is required")
	}
	if _, err := url.Parse(c.ServerBaseURL); err != nil {
		return fmt.Errorf("core: server_base_url is invalid: %w", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(c.SettingsPath), "/") {
		return fmt.Errorf("core: settings_path must start with /")
	}
	return nil
}
