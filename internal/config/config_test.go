package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	// Clear env to test defaults
	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"HealthPort", cfg.HealthPort, 8081},
		{"LogLevel", cfg.LogLevel, "info"},
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"LLMProvider", cfg.LLMProvider, "openai"},
		{"LLMModel", cfg.LLMModel, "gpt-4o-mini"},
		{"PDFProvider", cfg.PDFProvider, "wkhtmltopdf"},
		{"CacheTTL", cfg.CacheTTL, 3600},
		{"DefaultLanguage", cfg.DefaultLanguage, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "stub")
	t.Setenv("GCS_BUCKET_NAME", "prep-sheets-test")

	cfg := Load()
	if cfg.LLMProvider != "stub" {
		t.Errorf("expected LLMProvider=stub, got %s", cfg.LLMProvider)
	}
	if cfg.GCSBucket != "prep-sheets-test" {
		t.Errorf("expected GCSBucket=prep-sheets-test, got %s", cfg.GCSBucket)
	}
}
