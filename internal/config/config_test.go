package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal float64
		expected   float64
	}{
		{"parses float", "TEST_FLOAT_1", "0.25", 0.10, 0.25},
		{"uses default for empty", "TEST_FLOAT_2", "", 0.10, 0.10},
		{"uses default for non-numeric", "TEST_FLOAT_3", "abc", 0.10, 0.10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsFloatOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestLoad_MissingCredentialsDoNotFail(t *testing.T) {
	for _, key := range []string{
		"SCRAPECREATORS_API_KEY", "YOUTUBE_API_KEY", "GEMINI_API_KEY",
		"SUPABASE_URL", "SUPABASE_ANON_KEY",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port == "" {
		t.Error("expected default port to be set")
	}
	if cfg.PriceURLAnalysis != 0.10 {
		t.Errorf("expected default price 0.10, got %v", cfg.PriceURLAnalysis)
	}
	if cfg.YouTubeAPIKey != "" {
		t.Errorf("expected empty YouTube key, got %q", cfg.YouTubeAPIKey)
	}
}
