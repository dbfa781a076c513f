package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "5000" {
		t.Fatalf("expected default port 5000, got %q", cfg.HTTPPort)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %v", cfg.JWTTTL)
	}
	if cfg.LLMModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", cfg.LLMModel)
	}
	if !cfg.ChatRequireAuth {
		t.Fatalf("expected chat auth enabled by default")
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CHAT_REQUIRE_AUTH", "false")
	t.Setenv("LLM_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.ChatRequireAuth {
		t.Fatalf("expected chat auth disabled")
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.LLMTimeout)
	}
}

func TestLoadClientConfig_Defaults(t *testing.T) {
	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("load client config: %v", err)
	}
	if cfg.APIURL != "http://localhost:5000" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
}
