package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_DefaultsByEnv(t *testing.T) {
	t.Run("prod disables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProd)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=false in prod by default")
		}
	})

	t.Run("dev enables swagger by default", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDev)
		t.Setenv("UPTRACE_ENABLED", "false")
		t.Setenv("SWAGGER_ENABLED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SwaggerEnabled {
			t.Fatalf("expected SwaggerEnabled=true in dev by default")
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "league-engine-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "league-engine-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_StorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("memory by default", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageMemory {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
		if !cfg.SeedDemoData {
			t.Fatalf("expected demo seed outside prod")
		}
	})

	t.Run("postgres requires db url", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STORAGE_DRIVER=postgres without DB_URL")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_TournamentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SCORING_SCHEMES_FILE", "")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DEFAULT_SANCTION_DURATION", "")
		t.Setenv("YELLOW_CARD_THRESHOLD", "")
		t.Setenv("WALKOVER_GOALS", "")
		t.Setenv("QUALIFIERS_PER_GROUP", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DefaultSanctionDuration != 1 || cfg.YellowCardThreshold != 2 {
			t.Fatalf("unexpected discipline defaults: %d/%d", cfg.DefaultSanctionDuration, cfg.YellowCardThreshold)
		}
		if cfg.QualifiersPerGroup != 2 {
			t.Fatalf("unexpected qualifiers per group: %d", cfg.QualifiersPerGroup)
		}
		if cfg.Catalog.For("youth").Win != 2 {
			t.Fatalf("expected built-in youth scheme")
		}
		if cfg.Catalog.For("senior").WalkoverGoals != 3 {
			t.Fatalf("unexpected default walkover goals: %d", cfg.Catalog.For("senior").WalkoverGoals)
		}
	})

	t.Run("walkover goals applied to built-in catalog", func(t *testing.T) {
		t.Setenv("WALKOVER_GOALS", "5")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.Catalog.For("youth").WalkoverGoals != 5 || cfg.Catalog.Default.WalkoverGoals != 5 {
			t.Fatalf("expected walkover goals 5 across the catalog")
		}
	})

	t.Run("zero sanction duration rejected", func(t *testing.T) {
		t.Setenv("DEFAULT_SANCTION_DURATION", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for DEFAULT_SANCTION_DURATION=0")
		}
	})
}

func TestLoad_ScoringSchemesFile(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("SCORING_SCHEMES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing SCORING_SCHEMES_FILE")
		}
	})

	t.Run("file overrides catalog", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schemes.yaml")
		raw := "default:\n  win: 3\n  draw: 1\ntiers:\n  U12:\n    win: 2\n    draw: 1\n    conduct_bonus: 1\n"
		if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
			t.Fatalf("write schemes file: %v", err)
		}
		t.Setenv("SCORING_SCHEMES_FILE", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		scheme := cfg.Catalog.For("u12")
		if scheme.Win != 2 || scheme.ConductBonus != 1 || scheme.WalkoverGoals != 3 {
			t.Fatalf("unexpected u12 scheme: %+v", scheme)
		}
		if cfg.Catalog.For("youth").Win != 3 {
			t.Fatalf("expected file catalog to replace built-in tiers")
		}
	})
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty document uses default scheme", raw: "tiers: {}\n"},
		{name: "win below draw", raw: "default:\n  win: 1\n  draw: 2\n", wantErr: true},
		{name: "unknown key", raw: "default:\n  wins: 3\n", wantErr: true},
		{name: "duplicate normalized tier", raw: "tiers:\n  Youth:\n    win: 2\n  youth:\n    win: 2\n", wantErr: true},
		{name: "negative bonus", raw: "tiers:\n  youth:\n    win: 2\n    protocol_bonus: -1\n", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			catalog, err := ParseCatalog([]byte(tc.raw), 3)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got catalog %+v", catalog)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse catalog: %v", err)
			}
			if catalog.Default.Win != 3 {
				t.Fatalf("unexpected default scheme: %+v", catalog.Default)
			}
		})
	}
}

func TestLoad_WebhookConfig(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("enabled requires url", func(t *testing.T) {
		t.Setenv("WEBHOOK_ENABLED", "true")
		t.Setenv("WEBHOOK_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when WEBHOOK_ENABLED=true without WEBHOOK_URL")
		}
	})

	t.Run("enabled with values", func(t *testing.T) {
		t.Setenv("WEBHOOK_ENABLED", "true")
		t.Setenv("WEBHOOK_URL", "https://hooks.example.com/league")
		t.Setenv("WEBHOOK_TOPICS", "match.finalized, suspension.created")
		t.Setenv("WEBHOOK_CIRCUIT_FAILURE_COUNT", "3")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.WebhookTopics) != 2 || cfg.WebhookTopics[1] != "suspension.created" {
			t.Fatalf("unexpected webhook topics: %+v", cfg.WebhookTopics)
		}
		if cfg.WebhookCircuitFailureCount != 3 {
			t.Fatalf("unexpected circuit failure count: %d", cfg.WebhookCircuitFailureCount)
		}
		if cfg.WebhookTimeout != 3*time.Second {
			t.Fatalf("unexpected webhook timeout: %s", cfg.WebhookTimeout)
		}
	})
}

func TestLoad_RateLimitAndLogLevel(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("rate limit disabled with zero rps", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_RPS", "0")
		t.Setenv("RATE_LIMIT_BURST", "0")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RateLimitRPS != 0 {
			t.Fatalf("unexpected rps: %v", cfg.RateLimitRPS)
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("APP_LOG_LEVEL", "verbose")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for APP_LOG_LEVEL=verbose")
		}
	})

	t.Run("warn log level", func(t *testing.T) {
		t.Setenv("APP_LOG_LEVEL", "WARN")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.LogLevel.String() != "warn" {
			t.Fatalf("unexpected log level: %s", cfg.LogLevel.String())
		}
	})
}
