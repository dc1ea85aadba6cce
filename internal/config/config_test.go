package config

import (
	"os"
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when not set", "TEST_KEY_UNSET", "default", "", "default"},
		{"returns env value when set", "TEST_KEY_SET", "default", "custom", "custom"},
		{"returns empty string env over default", "TEST_KEY_EMPTY", "default", "", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{"returns default when not set", "TEST_INT_UNSET", 100, "", 100},
		{"parses valid int", "TEST_INT_VALID", 100, "42", 42},
		{"returns default on invalid int", "TEST_INT_INVALID", 100, "not-a-number", 100},
		{"parses negative int", "TEST_INT_NEG", 100, "-5", -5},
		{"parses zero", "TEST_INT_ZERO", 100, "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		want         bool
	}{
		{"returns default when not set", "TEST_BOOL_UNSET", true, "", true},
		{"parses true", "TEST_BOOL_TRUE", false, "true", true},
		{"parses false", "TEST_BOOL_FALSE", true, "false", false},
		{"parses 1 as true", "TEST_BOOL_ONE", false, "1", true},
		{"parses 0 as false", "TEST_BOOL_ZERO", true, "0", false},
		{"returns default on invalid bool", "TEST_BOOL_INVALID", true, "yes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Set DEBUG to true to avoid production validation
	os.Setenv("DEBUG", "true")
	defer os.Unsetenv("DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Check default values
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if !cfg.Debug {
		t.Error("Debug should be true when DEBUG=true")
	}
	if cfg.StorageBackend != "sqlite" {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, "sqlite")
	}
	if cfg.ManifestPath != "./contests.yaml" {
		t.Errorf("ManifestPath = %q, want ./contests.yaml", cfg.ManifestPath)
	}
	if cfg.BucketName != "arena" {
		t.Errorf("BucketName = %q, want arena", cfg.BucketName)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envVars := map[string]string{
		"DEBUG":            "true",
		"PORT":             "9000",
		"STORAGE_BACKEND":  "postgres",
		"DATABASE_URL":     "postgres://u:p@db:5432/arena",
		"BUCKET_ENDPOINT":  "minio:9000",
		"CONTEST_MANIFEST": "/etc/arena/contests.yaml",
	}

	for k, v := range envVars {
		os.Setenv(k, v)
		defer os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.StorageBackend != "postgres" {
		t.Errorf("StorageBackend = %q, want postgres", cfg.StorageBackend)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/arena" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.BucketEndpoint != "minio:9000" {
		t.Errorf("BucketEndpoint = %q, want minio:9000", cfg.BucketEndpoint)
	}
	if cfg.ManifestPath != "/etc/arena/contests.yaml" {
		t.Errorf("ManifestPath = %q", cfg.ManifestPath)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	os.Setenv("DEBUG", "true")
	os.Setenv("STORAGE_BACKEND", "oracle")
	defer os.Unsetenv("DEBUG")
	defer os.Unsetenv("STORAGE_BACKEND")

	if _, err := Load(); err == nil {
		t.Error("Load() should error on unknown storage backend")
	}
}

func TestLoad_ProductionValidation(t *testing.T) {
	os.Unsetenv("DEBUG")
	os.Unsetenv("BUCKET_ACCESS_KEY")

	if _, err := Load(); err == nil {
		t.Error("Load() should error in production without BUCKET_ACCESS_KEY")
	}
}

func TestLoad_ProductionWithCredentials(t *testing.T) {
	os.Unsetenv("DEBUG")
	os.Setenv("BUCKET_ACCESS_KEY", "arena-access")
	os.Setenv("BUCKET_SECRET_KEY", "arena-secret")
	os.Setenv("TOKENS_PATH", "/etc/arena/tokens.yaml")
	defer os.Unsetenv("BUCKET_ACCESS_KEY")
	defer os.Unsetenv("BUCKET_SECRET_KEY")
	defer os.Unsetenv("TOKENS_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BucketAccessKey != "arena-access" {
		t.Errorf("BucketAccessKey = %q, want arena-access", cfg.BucketAccessKey)
	}
}

func TestLoad_ProductionWithArtifactsDir(t *testing.T) {
	os.Unsetenv("DEBUG")
	os.Setenv("ARTIFACTS_DIR", "/var/lib/arena/artifacts")
	os.Setenv("TOKENS_PATH", "/etc/arena/tokens.yaml")
	defer os.Unsetenv("ARTIFACTS_DIR")
	defer os.Unsetenv("TOKENS_PATH")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ArtifactsDir != "/var/lib/arena/artifacts" {
		t.Errorf("ArtifactsDir = %q", cfg.ArtifactsDir)
	}
}
