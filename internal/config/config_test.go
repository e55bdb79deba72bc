package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	configViper := NewViper()
	configViper.Set("auth.signing_secret", "secret")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.Auth.CookieName != "token" {
		t.Fatalf("unexpected cookie name %q", cfg.Auth.CookieName)
	}
	if cfg.Auth.TokenTTL != 30*24*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Driver != DatabaseDriverSQLite {
		t.Fatalf("unexpected driver %q", cfg.Database.Driver)
	}
	if cfg.Media.Provider != MediaProviderLocal || cfg.Media.MaxImageBytes != 2<<20 {
		t.Fatalf("unexpected media config %+v", cfg.Media)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidConfiguration(t *testing.T) {
	testCases := []struct {
		name      string
		overrides map[string]any
		wantError string
	}{
		{
			name:      "missing-secret",
			overrides: map[string]any{},
			wantError: "auth.signing_secret",
		},
		{
			name:      "postgres-without-dsn",
			overrides: map[string]any{"auth.signing_secret": "s", "database.driver": "postgres"},
			wantError: "database.dsn",
		},
		{
			name:      "unknown-driver",
			overrides: map[string]any{"auth.signing_secret": "s", "database.driver": "mongo"},
			wantError: "database.driver",
		},
		{
			name:      "s3-without-bucket",
			overrides: map[string]any{"auth.signing_secret": "s", "media.provider": "s3"},
			wantError: "media.s3.bucket",
		},
		{
			name:      "unknown-media-provider",
			overrides: map[string]any{"auth.signing_secret": "s", "media.provider": "cloudinary"},
			wantError: "media.provider",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewViper()
			for key, value := range testCase.overrides {
				configViper.Set(key, value)
			}
			_, err := Load(configViper)
			if err == nil {
				t.Fatalf("expected error mentioning %s", testCase.wantError)
			}
			if !strings.Contains(err.Error(), testCase.wantError) {
				t.Fatalf("expected error mentioning %s, got %v", testCase.wantError, err)
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BOARDS_AUTH_SIGNING_SECRET", "from-env")
	t.Setenv("BOARDS_HTTP_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.Auth.SigningSecret != "from-env" {
		t.Fatalf("expected secret from env, got %q", cfg.Auth.SigningSecret)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}
