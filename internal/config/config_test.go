package config

import "testing"

func TestLoadIncludesRetrievalDefaults(t *testing.T) {
	t.Setenv("RETRIEVAL_DENSE_K", "")
	t.Setenv("RETRIEVAL_KEEP_SEMANTIC", "")
	t.Setenv("RETRIEVAL_EXHAUSTIVE_CEILING", "")
	t.Setenv("DUP_THRESHOLD_SEMANTIC", "")

	cfg := Load()
	if cfg.RetrievalDenseK != 30 {
		t.Fatalf("expected default dense k 30, got %d", cfg.RetrievalDenseK)
	}
	if cfg.RetrievalKeepSemantic != 12 {
		t.Fatalf("expected default keep semantic 12, got %d", cfg.RetrievalKeepSemantic)
	}
	if cfg.RetrievalExhaustiveCeiling != 100 {
		t.Fatalf("expected default exhaustive ceiling 100, got %d", cfg.RetrievalExhaustiveCeiling)
	}
	if cfg.DupThresholdSemantic != 0.82 {
		t.Fatalf("expected default dup threshold 0.82, got %v", cfg.DupThresholdSemantic)
	}
}

func TestLoadParsesRetrievalOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_DENSE_K", "50")
	t.Setenv("RETRIEVAL_KEEP_SEMANTIC", "8")
	t.Setenv("DUP_THRESHOLD_EXHAUSTIVE", "0.95")
	t.Setenv("GENERATE_TIMEOUT_SECONDS", "30")

	cfg := Load()
	if cfg.RetrievalDenseK != 50 {
		t.Fatalf("expected dense k 50, got %d", cfg.RetrievalDenseK)
	}
	if cfg.RetrievalKeepSemantic != 8 {
		t.Fatalf("expected keep semantic 8, got %d", cfg.RetrievalKeepSemantic)
	}
	if cfg.DupThresholdExhaustive != 0.95 {
		t.Fatalf("expected dup threshold 0.95, got %v", cfg.DupThresholdExhaustive)
	}
	if cfg.GenerateTimeoutSeconds != 30 {
		t.Fatalf("expected generate timeout 30, got %d", cfg.GenerateTimeoutSeconds)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("RETRIEVAL_SPARSE_K", "not-a-number")
	t.Setenv("RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.RetrievalSparseK != 30 {
		t.Fatalf("expected fallback sparse k 30, got %d", cfg.RetrievalSparseK)
	}
	if cfg.RateLimitRPS != 10 {
		t.Fatalf("expected fallback rate limit 10, got %v", cfg.RateLimitRPS)
	}
}
