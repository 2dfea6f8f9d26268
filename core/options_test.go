package core

import (
	"context"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing service name", mutate: func(c *Config) { c.ServiceName = "" }, wantErr: true},
		{name: "missing hub url", mutate: func(c *Config) { c.RedirectHubURL = "" }, wantErr: true},
		{name: "missing server base", mutate: func(c *Config) { c.ServerBaseURL = "" }, wantErr: true},
		{name: "relative settings path", mutate: func(c *Config) { c.SettingsPath = "settings" }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGoOptionsResolverLayerPrecedence(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{
		RedirectHubURL: "https://hub.from-config.example.com",
		ServerBaseURL:  "https://server.from-config.example.com",
	}
	runtime := Config{
		ServerBaseURL: "https://server.from-runtime.example.com",
	}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ServiceName != "social-link" {
		t.Fatalf("service name = %q", resolved.ServiceName)
	}
	if resolved.RedirectHubURL != "https://hub.from-config.example.com" {
		t.Fatalf("hub url = %q", resolved.RedirectHubURL)
	}
	if resolved.ServerBaseURL != "https://server.from-runtime.example.com" {
		t.Fatalf("server base = %q", resolved.ServerBaseURL)
	}
	if resolved.SettingsPath != "/settings/twitter" {
		t.Fatalf("settings path = %q", resolved.SettingsPath)
	}
}

func TestGoOptionsResolverRejectsIncompleteConfig(t *testing.T) {
	if _, err := (GoOptionsResolver{}).Resolve(DefaultConfig(), Config{}, Config{}); err == nil {
		t.Fatal("expected validation failure without hub and server urls")
	}
}

func TestCfgxConfigProviderLoadsRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"redirect_hub_url": "https://hub.example.com",
		"server_base_url":  "https://server.example.com",
	}})

	loaded, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RedirectHubURL != "https://hub.example.com" {
		t.Fatalf("hub url = %q", loaded.RedirectHubURL)
	}
	if loaded.ServiceName != "social-link" {
		t.Fatalf("defaults not applied, service name = %q", loaded.ServiceName)
	}
}
