package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the dotenv loader at a file that does not exist.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("BIKEYARD_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNormalizeStoreDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "bike-yard.myshopify.com", expected: "bike-yard.myshopify.com"},
		{input: "https://bike-yard.myshopify.com/", expected: "bike-yard.myshopify.com"},
		{input: " http://shop.example.com// ", expected: "shop.example.com"},
	}

	for _, tt := range tests {
		if got := normalizeStoreDomain(tt.input); got != tt.expected {
			t.Errorf("normalizeStoreDomain(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadWithCatalogFileSkipsShopify(t *testing.T) {
	isolate(t)
	t.Setenv("BIKEYARD_CATALOG_FILE", "/srv/catalog.yaml")
	t.Setenv("BIKEYARD_SHOPIFY_PAGE_SIZE", "1000")
	t.Setenv("BIKEYARD_ALLOWED_CIDRS", "10.0.0.0/8, '192.168.1.4'")

	cfg := Load()

	if !cfg.UsesCatalogFile() {
		t.Error("UsesCatalogFile() = false, want true")
	}
	if cfg.ShopifyStoreDomain != "" || cfg.ShopifyAccessToken != "" {
		t.Error("Shopify credentials should stay empty when a catalog file is used")
	}
	if cfg.ShopifyPageSize != 250 {
		t.Errorf("ShopifyPageSize = %d, want clamped to 250", cfg.ShopifyPageSize)
	}
	if cfg.RedisEnabled() {
		t.Error("Redis should be disabled without BIKEYARD_REDIS_ADDR")
	}
	if cfg.ReloadInterval != 0 {
		t.Errorf("ReloadInterval = %v, want 0 (manual reload only)", cfg.ReloadInterval)
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[1] != "192.168.1.4" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
}

func TestLoadRequiresShopifyCredentials(t *testing.T) {
	isolate(t)
	t.Setenv("BIKEYARD_CATALOG_FILE", "")
	t.Setenv("BIKEYARD_SHOPIFY_STORE_DOMAIN", "")
	t.Setenv("BIKEYARD_SHOPIFY_ACCESS_TOKEN", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic without Shopify credentials")
		}
	}()
	_ = Load()
}

func TestLoadReadsDotenvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "BIKEYARD_SHOPIFY_STORE_DOMAIN=https://bike-yard.myshopify.com/\nBIKEYARD_SHOPIFY_ACCESS_TOKEN=secret-token\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("BIKEYARD_ENV_FILE", envFile)
	t.Setenv("BIKEYARD_CATALOG_FILE", "")
	// Registered so t.Setenv restores them after godotenv sets them.
	t.Setenv("BIKEYARD_SHOPIFY_STORE_DOMAIN", "")
	t.Setenv("BIKEYARD_SHOPIFY_ACCESS_TOKEN", "")
	if err := os.Unsetenv("BIKEYARD_SHOPIFY_STORE_DOMAIN"); err != nil {
		t.Fatal(err)
	}
	if err := os.Unsetenv("BIKEYARD_SHOPIFY_ACCESS_TOKEN"); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.ShopifyStoreDomain != "bike-yard.myshopify.com" {
		t.Errorf("ShopifyStoreDomain = %q", cfg.ShopifyStoreDomain)
	}
	if cfg.ShopifyAccessToken != "secret-token" {
		t.Errorf("ShopifyAccessToken = %q", cfg.ShopifyAccessToken)
	}

	red := cfg.Redacted()
	if red.ShopifyAccessToken == "secret-token" {
		t.Error("Redacted() should hide the access token")
	}
	if cfg.ShopifyAccessToken != "secret-token" {
		t.Error("Redacted() must not modify the original config")
	}
}
