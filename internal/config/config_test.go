package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.QdrantCollection != "finsolve_chatbot" {
		t.Fatalf("QdrantCollection = %q", cfg.QdrantCollection)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 100 {
		t.Fatalf("chunking defaults = %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("RAGTopK = %d", cfg.RAGTopK)
	}
	if cfg.ProviderTimeout != 120*time.Second {
		t.Fatalf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if len(cfg.AdminRoles) != 1 || cfg.AdminRoles[0] != "c_level" {
		t.Fatalf("AdminRoles = %v", cfg.AdminRoles)
	}
	if cfg.AuditEnabled {
		t.Fatalf("audit enabled by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("ADMIN_ROLES", "c_level,ops")
	t.Setenv("PROVIDER_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if len(cfg.AdminRoles) != 2 || cfg.AdminRoles[1] != "ops" {
		t.Fatalf("AdminRoles = %v", cfg.AdminRoles)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Fatalf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
}

func TestLoadRejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error")
	}
}
